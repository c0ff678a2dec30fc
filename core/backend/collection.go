// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/relabs-tech/curriculo/core"
	"github.com/relabs-tech/curriculo/core/csql"
	"github.com/relabs-tech/curriculo/core/logger"
)

// dates are stored as plain calendar dates, no time of day
const dateFormat = "2006-01-02"

func (b *Backend) createCollectionResource(router *mux.Router, rc core.Resource) {
	schema := b.db.Schema
	resource := rc.Name

	nillog := logger.FromContext(nil)
	nillog.Debugln("create collection:", resource)

	table := fmt.Sprintf("%s.\"%s\"", schema, resource)
	columns := append([]string{"id"}, rc.FieldNames()...)

	listRoute := "/" + core.Plural(resource)
	itemRoute := listRoute + "/{id}"

	nillog.Debugln("  handle collection routes:", listRoute, "GET,POST")
	nillog.Debugln("  handle collection routes:", itemRoute, "GET,PUT,DELETE")

	readQuery := "SELECT " + strings.Join(columns, ", ") + " FROM " + table + " "
	listQuery := readQuery + "ORDER BY id;"
	readOneQuery := readQuery + "WHERE id = $1;"
	deleteQuery := "DELETE FROM " + table + " WHERE id = $1;"
	sqlReturnObject := " RETURNING " + strings.Join(columns, ", ")

	listFilterQuery := ""
	if len(rc.ForeignKey) > 0 {
		listFilterQuery = readQuery + "WHERE " + rc.ForeignKey + " = $1 ORDER BY id;"
	}

	createScanValuesAndObject := func() ([]interface{}, map[string]interface{}) {
		values := make([]interface{}, len(columns))
		object := map[string]interface{}{}
		values[0] = new(int)
		object["id"] = values[0]
		for i, f := range rc.Fields {
			switch f.Type {
			case core.FieldTypeInteger:
				values[i+1] = &sql.NullInt64{}
			case core.FieldTypeDate:
				values[i+1] = &sql.NullTime{}
			default:
				values[i+1] = &sql.NullString{}
			}
			object[f.Name] = values[i+1]
		}
		return values, object
	}

	// replace the sql null wrappers with plain values, so the object
	// marshals the way clients expect: value or null
	flattenObject := func(object map[string]interface{}) {
		for _, f := range rc.Fields {
			switch v := object[f.Name].(type) {
			case *sql.NullString:
				if v.Valid {
					object[f.Name] = v.String
				} else {
					object[f.Name] = nil
				}
			case *sql.NullInt64:
				if v.Valid {
					object[f.Name] = v.Int64
				} else {
					object[f.Name] = nil
				}
			case *sql.NullTime:
				if v.Valid {
					object[f.Name] = v.Time.Format(dateFormat)
				} else {
					object[f.Name] = nil
				}
			}
		}
	}

	// the allow-list at work: keep only configured fields that are
	// present in the body, in configuration order. A JSON null is
	// present and binds NULL. Anything else in the body, including
	// "id", is silently ignored.
	filterBody := func(body map[string]interface{}) ([]string, []interface{}) {
		var insertColumns []string
		var queryParameters []interface{}
		for _, f := range rc.Fields {
			if value, ok := body[f.Name]; ok {
				insertColumns = append(insertColumns, f.Name)
				queryParameters = append(queryParameters, value)
			}
		}
		return insertColumns, queryParameters
	}

	listRows := func(w http.ResponseWriter, r *http.Request, rows *sql.Rows) {
		rlog := logger.FromContext(r.Context())
		defer rows.Close()
		response := []interface{}{}
		for rows.Next() {
			values, object := createScanValuesAndObject()
			if err := rows.Scan(values...); err != nil {
				rlog.WithError(err).Errorln("cannot scan", resource)
				writeError(w, http.StatusInternalServerError, "cannot list "+resource)
				return
			}
			flattenObject(object)
			response = append(response, object)
		}
		if err := rows.Err(); err != nil {
			rlog.WithError(err).Errorln("cannot list", resource)
			writeError(w, http.StatusInternalServerError, "cannot list "+resource)
			return
		}
		writeJSON(w, http.StatusOK, response)
	}

	list := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		var (
			rows *sql.Rows
			err  error
		)
		if filter := r.URL.Query().Get(rc.ForeignKey); len(rc.ForeignKey) > 0 && len(filter) > 0 {
			rows, err = b.db.Query(listFilterQuery, filter)
		} else {
			rows, err = b.db.Query(listQuery)
		}
		if err != nil {
			rlog.WithError(err).Errorln("cannot list", resource)
			writeError(w, http.StatusInternalServerError, "cannot list "+resource)
			return
		}
		listRows(w, r, rows)
	}

	read := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		values, object := createScanValuesAndObject()
		err := b.db.QueryRow(readOneQuery, mux.Vars(r)["id"]).Scan(values...)
		if err == csql.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			rlog.WithError(err).Errorln("cannot read", resource)
			writeError(w, http.StatusInternalServerError, "cannot read "+resource)
			return
		}
		flattenObject(object)
		writeJSON(w, http.StatusOK, object)
	}

	create := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		body := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		insertColumns, queryParameters := filterBody(body)
		if len(insertColumns) == 0 {
			writeError(w, http.StatusBadRequest, "no fields")
			return
		}
		insertQuery := "INSERT INTO " + table + " (" + strings.Join(insertColumns, ", ") + ")" +
			" VALUES(" + parameterString(len(insertColumns)) + ")" + sqlReturnObject + ";"

		values, object := createScanValuesAndObject()
		if err := b.db.QueryRow(insertQuery, queryParameters...).Scan(values...); err != nil {
			rlog.WithError(err).Errorln("cannot create", resource)
			writeError(w, http.StatusInternalServerError, "cannot create "+resource)
			return
		}
		flattenObject(object)
		writeJSON(w, http.StatusCreated, object)
	}

	update := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		body := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		updateColumns, queryParameters := filterBody(body)
		if len(updateColumns) == 0 {
			writeError(w, http.StatusBadRequest, "no fields")
			return
		}
		sets := make([]string, len(updateColumns))
		for i, column := range updateColumns {
			sets[i] = column + " = $" + strconv.Itoa(i+1)
		}
		queryParameters = append(queryParameters, mux.Vars(r)["id"])
		updateQuery := "UPDATE " + table + " SET " + strings.Join(sets, ", ") +
			" WHERE id = $" + strconv.Itoa(len(queryParameters)) + sqlReturnObject + ";"

		values, object := createScanValuesAndObject()
		err := b.db.QueryRow(updateQuery, queryParameters...).Scan(values...)
		if err == csql.ErrNoRows {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			rlog.WithError(err).Errorln("cannot update", resource)
			writeError(w, http.StatusInternalServerError, "cannot update "+resource)
			return
		}
		flattenObject(object)
		writeJSON(w, http.StatusOK, object)
	}

	deleteOne := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		result, err := b.db.Exec(deleteQuery, mux.Vars(r)["id"])
		if err != nil {
			rlog.WithError(err).Errorln("cannot delete", resource)
			writeError(w, http.StatusInternalServerError, "cannot delete "+resource)
			return
		}
		count, err := result.RowsAffected()
		if err != nil {
			rlog.WithError(err).Errorln("cannot delete", resource)
			writeError(w, http.StatusInternalServerError, "cannot delete "+resource)
			return
		}
		if count == 0 {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}

	// LIST
	router.Handle(listRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		list(w, r)
	}))).Methods(http.MethodOptions, http.MethodGet)

	// READ
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		read(w, r)
	}))).Methods(http.MethodOptions, http.MethodGet)

	// CREATE
	router.Handle(listRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		create(w, r)
	}))).Methods(http.MethodOptions, http.MethodPost)

	// UPDATE
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		update(w, r)
	}))).Methods(http.MethodOptions, http.MethodPut)

	// DELETE
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		deleteOne(w, r)
	}))).Methods(http.MethodOptions, http.MethodDelete)

	if len(rc.ForeignKey) == 0 {
		return
	}

	// CHILDREN SHORTCUT
	// e.g. /people/{person_id}/skills lists the skills of one person.
	// An unknown person yields an empty list, not a 404.
	parent := strings.TrimSuffix(rc.ForeignKey, "_id")
	childrenRoute := "/" + core.Plural(parent) + "/{" + rc.ForeignKey + "}" + listRoute
	nillog.Debugln("  handle children route:", childrenRoute, "GET")

	listChildren := func(w http.ResponseWriter, r *http.Request) {
		rlog := logger.FromContext(r.Context())
		rows, err := b.db.Query(listFilterQuery, mux.Vars(r)[rc.ForeignKey])
		if err != nil {
			rlog.WithError(err).Errorln("cannot list", resource)
			writeError(w, http.StatusInternalServerError, "cannot list "+resource)
			return
		}
		listRows(w, r, rows)
	}

	router.Handle(childrenRoute, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Infoln("called route for", r.URL, r.Method)
		listChildren(w, r)
	}))).Methods(http.MethodOptions, http.MethodGet)
}
