package main

import (
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/curriculo/core/csql"
	"github.com/relabs-tech/curriculo/core/logger"
	"github.com/relabs-tech/curriculo/core/schema"
)

// Tool holds the configuration for one initdb run.
//
// The tool creates the résumé tables if necessary, then replaces all
// data with the example seed. Any failure rolls the seeding back and
// exits non-zero.
type Tool struct {
	DatabaseURL string `env:"DATABASE_URL,required" description:"the connection string for the Postgres DB"`
	Schema      string `env:"CURRICULO_SCHEMA,optional" description:"the database schema, defaults to public"`
}

func main() {
	logger.InitLogger(logrus.InfoLevel)
	rlog := logger.Default()

	tool := &Tool{}
	if err := envdecode.Decode(tool); err != nil {
		rlog.WithError(err).Fatalln("cannot read configuration")
	}

	db := csql.OpenWithSchema(tool.DatabaseURL, "", tool.Schema)
	defer db.Close()

	if err := schema.Create(db); err != nil {
		rlog.WithError(err).Fatalln("cannot create tables")
	}
	if err := schema.Seed(db); err != nil {
		rlog.WithError(err).Fatalln("cannot seed database")
	}
	rlog.Infoln("database created and seeded")
}
