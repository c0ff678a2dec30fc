package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/curriculo/core/backend"
	"github.com/relabs-tech/curriculo/core/csql"
	"github.com/relabs-tech/curriculo/core/logger"
)

// Service holds the configuration for this service
//
// use DATABASE_URL="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type Service struct {
	DatabaseURL string `env:"DATABASE_URL,required" description:"the connection string for the Postgres DB"`
	Schema      string `env:"CURRICULO_SCHEMA,optional" description:"the database schema, defaults to public"`
	Port        string `env:"CURRICULO_PORT,default=3000" description:"the port to listen on"`
}

func main() {
	logger.InitLogger(logrus.InfoLevel)
	rlog := logger.Default()

	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		rlog.WithError(err).Fatalln("cannot read configuration")
	}

	db := csql.OpenWithSchema(service.DatabaseURL, "", service.Schema)
	defer db.Close()

	router := mux.NewRouter()
	logger.AddRequestID(router)
	backend.MustNew(&backend.Builder{
		DB:           db,
		Router:       router,
		UpdateSchema: true,
	})

	rlog.Infoln("listen on port :" + service.Port)
	if err := http.ListenAndServe(":"+service.Port, router); err != nil {
		rlog.WithError(err).Fatalln("server stopped")
	}
}
