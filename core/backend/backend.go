package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/relabs-tech/curriculo/core"
	"github.com/relabs-tech/curriculo/core/csql"
	"github.com/relabs-tech/curriculo/core/logger"
	"github.com/relabs-tech/curriculo/core/schema"
)

// Backend is the generic rest backend
type Backend struct {
	db        *csql.DB
	router    *mux.Router
	resources []core.Resource
}

// Builder is a builder helper for the Backend
type Builder struct {
	// DB is a postgres database. This is mandatory.
	DB *csql.DB
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// UpdateSchema creates the resource tables if they do not exist
	// yet. This is optional, a service can also rely on the initdb
	// tool having run before.
	UpdateSchema bool
}

// New realizes the actual backend. It optionally creates the sql tables
// (if they do not exist) and adds the actual routes to the router
func New(bb *Builder) (*Backend, error) {
	if bb.DB == nil {
		return nil, fmt.Errorf("DB is missing")
	}
	if bb.Router == nil {
		return nil, fmt.Errorf("Router is missing")
	}

	if bb.UpdateSchema {
		if err := schema.Create(bb.DB); err != nil {
			return nil, fmt.Errorf("cannot update schema: %w", err)
		}
	}

	b := &Backend{
		db:        bb.DB,
		router:    bb.Router,
		resources: core.Resources(),
	}

	b.handleCORS()
	b.handleRoutes(b.router)
	return b, nil
}

// MustNew realizes the actual backend like New, but panics on error
func MustNew(bb *Builder) *Backend {
	b, err := New(bb)
	if err != nil {
		panic(err)
	}
	return b
}

// handleRoutes adds the health route and all resource routes
func (b *Backend) handleRoutes(router *mux.Router) {
	nillog := logger.FromContext(nil)
	nillog.Debugln("backend: handle routes")

	router.Handle("/", handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "api": "curriculo"})
	}))).Methods(http.MethodOptions, http.MethodGet)

	for _, rc := range b.resources {
		b.createCollectionResource(router, rc)
	}
}

// returns $1,...,$n
func parameterString(n int) string {
	result := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			result += ","
		}
		result += "$" + strconv.Itoa(i+1)
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, object interface{}) {
	jsonData, _ := json.MarshalWithOption(object, json.DisableHTMLEscape())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
