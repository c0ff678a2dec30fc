// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package schema creates and seeds the résumé tables.

Create and Seed are deliberately separate: Create is idempotent and safe to
run against a production database, Seed wipes all data and repopulates the
tables with the two example résumés inside a single transaction.
*/
package schema

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/curriculo/core"
	"github.com/relabs-tech/curriculo/core/csql"
	"github.com/relabs-tech/curriculo/core/logger"
)

// Create creates the five resource tables if they do not exist yet,
// in configuration order. Person comes first, the child tables declare
// a cascade-delete foreign key on it.
func Create(db *csql.DB) error {
	for _, rc := range core.Resources() {
		query := createQuery(db.Schema, rc)
		logger.Default().Debugln("create table:", rc.Name)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("cannot create table %s: %w", rc.Name, err)
		}
	}
	return nil
}

// createQuery builds the CREATE TABLE statement for one resource. All
// identifiers come from the compile-time configuration, never from input.
func createQuery(schema string, rc core.Resource) string {
	createColumns := []string{"id SERIAL PRIMARY KEY"}
	for _, f := range rc.Fields {
		createColumns = append(createColumns, columnSQL(schema, rc, f))
	}
	return fmt.Sprintf("CREATE table IF NOT EXISTS %s.\"%s\" (%s);",
		schema, rc.Name, strings.Join(createColumns, ", "))
}

func columnSQL(schema string, rc core.Resource, f core.Field) string {
	column := f.Name + " " + sqlType(f.Type)
	if f.NotNull {
		column += " NOT NULL"
	}
	if f.Name == rc.ForeignKey {
		parent := strings.TrimSuffix(rc.ForeignKey, "_id")
		column += fmt.Sprintf(" REFERENCES %s.\"%s\"(id) ON DELETE CASCADE", schema, parent)
	}
	return column
}

func sqlType(t core.FieldType) string {
	switch t {
	case core.FieldTypeInteger:
		return "INTEGER"
	case core.FieldTypeDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Seed replaces all data with the two example résumés. The deletes and
// inserts run in one transaction: either the database ends up fully
// seeded or it is left untouched.
func Seed(db *csql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// children first, person last
	resources := core.Resources()
	for i := len(resources) - 1; i >= 0; i-- {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s.\"%s\";", db.Schema, resources[i].Name)); err != nil {
			return fmt.Errorf("cannot clear table %s: %w", resources[i].Name, err)
		}
	}

	insertPerson := fmt.Sprintf(`INSERT INTO %s."person" (name, title, summary, email, phone, city, state, website)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id;`, db.Schema)

	var anaID, carlosID int
	err = tx.QueryRow(insertPerson,
		"Ana Silva", "Dev Front-End", "Gosta de criar interfaces simples e claras.",
		"ana@exemplo.com", "(81) 99999-1111", "Recife", "PE", "https://ana.dev").Scan(&anaID)
	if err != nil {
		return fmt.Errorf("cannot seed person: %w", err)
	}
	err = tx.QueryRow(insertPerson,
		"Carlos Borba", "Dev Front-End", "Desenvolvedor web freelancer. Direito (FACET) e SI (UNICAP).",
		"carlos@exemplo.com", "(81) 99999-2222", "Aliança", "PE", "https://carlos.dev").Scan(&carlosID)
	if err != nil {
		return fmt.Errorf("cannot seed person: %w", err)
	}

	type insert struct {
		query      string
		parameters []interface{}
	}
	inserts := []insert{
		{`INSERT INTO %s."education" (person_id, school, course, start_year, end_year) VALUES ($1,$2,$3,$4,$5);`,
			[]interface{}{anaID, "UNICAP", "Sistemas para Internet", 2024, 2026}},
		{`INSERT INTO %s."education" (person_id, school, course, start_year, end_year) VALUES ($1,$2,$3,$4,$5);`,
			[]interface{}{carlosID, "FACET", "Direito", 2012, 2016}},
		{`INSERT INTO %s."education" (person_id, school, course, start_year, end_year) VALUES ($1,$2,$3,$4,$5);`,
			[]interface{}{carlosID, "UNICAP", "Sistemas para Internet", 2024, 2026}},
		{`INSERT INTO %s."experience" (person_id, company, role, start_date, end_date, description) VALUES ($1,$2,$3,$4,$5,$6);`,
			[]interface{}{anaID, "Prefeitura Recife", "Estagiária Front-End", "2024-01-01", nil, "Suporte em front-end."}},
		{`INSERT INTO %s."experience" (person_id, company, role, start_date, end_date, description) VALUES ($1,$2,$3,$4,$5,$6);`,
			[]interface{}{carlosID, "Prefeitura da Aliança", "Assessor Técnico", "2019-01-01", nil, "Atuação em gestão e inovação."}},
		{`INSERT INTO %s."project" (person_id, name, url, description) VALUES ($1,$2,$3,$4);`,
			[]interface{}{anaID, "Healnet", "https://healnet-ipw.vercel.app/", "Site para conexão com médicos."}},
		{`INSERT INTO %s."project" (person_id, name, url, description) VALUES ($1,$2,$3,$4);`,
			[]interface{}{carlosID, "Portfolio", "https://portfolio.exemplo.com", "Portfolio pessoal com Next.js"}},
		{`INSERT INTO %s."skill" (person_id, name, level) VALUES ($1,$2,$3);`,
			[]interface{}{anaID, "React", "Intermediário"}},
		{`INSERT INTO %s."skill" (person_id, name, level) VALUES ($1,$2,$3);`,
			[]interface{}{anaID, "CSS", "Intermediário"}},
		{`INSERT INTO %s."skill" (person_id, name, level) VALUES ($1,$2,$3);`,
			[]interface{}{carlosID, "JavaScript", "Intermediário"}},
		{`INSERT INTO %s."skill" (person_id, name, level) VALUES ($1,$2,$3);`,
			[]interface{}{carlosID, "Next.js", "Intermediário"}},
	}
	for _, ins := range inserts {
		if _, err := tx.Exec(fmt.Sprintf(ins.query, db.Schema), ins.parameters...); err != nil {
			return fmt.Errorf("cannot seed: %w", err)
		}
	}

	return tx.Commit()
}
