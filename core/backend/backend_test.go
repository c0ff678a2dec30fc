package backend

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"

	"github.com/relabs-tech/curriculo/core/client"
	"github.com/relabs-tech/curriculo/core/csql"
)

// TestService holds the configuration for this test
//
// use POSTGRES="host=localhost port=5432 user=postgres dbname=postgres sslmode=disable"
// and POSTGRES_PASSWORD="docker"
type TestService struct {
	Postgres         string `env:"POSTGRES,required" description:"the connection string for the Postgres DB without password"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,optional" description:"password to the Postgres DB"`
	backend          *Backend
	client           client.Client
}

var testService TestService

func TestMain(m *testing.M) {
	if err := envdecode.Decode(&testService); err != nil {
		panic(err)
	}

	db := csql.OpenWithSchema(testService.Postgres, testService.PostgresPassword, "_backend_unit_test_")
	defer db.Close()
	db.ClearSchema()

	router := mux.NewRouter()
	testService.backend = MustNew(&Builder{
		DB:           db,
		Router:       router,
		UpdateSchema: true,
	})
	testService.client = client.NewWithRouter(router)

	code := m.Run()
	os.Exit(code)
}

// Person is the test representation of the person resource. Pointers
// because every field except name is nullable.
type Person struct {
	ID      int     `json:"id"`
	Name    *string `json:"name"`
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Website *string `json:"website"`
}

type Education struct {
	ID        int     `json:"id"`
	PersonID  int     `json:"person_id"`
	School    *string `json:"school"`
	Course    *string `json:"course"`
	StartYear *int    `json:"start_year"`
	EndYear   *int    `json:"end_year"`
}

type Experience struct {
	ID          int     `json:"id"`
	PersonID    int     `json:"person_id"`
	Company     *string `json:"company"`
	Role        *string `json:"role"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description *string `json:"description"`
}

type Project struct {
	ID          int     `json:"id"`
	PersonID    int     `json:"person_id"`
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
}

type Skill struct {
	ID       int     `json:"id"`
	PersonID int     `json:"person_id"`
	Name     *string `json:"name"`
	Level    *string `json:"level"`
}

func mustCreatePerson(t *testing.T, name string) Person {
	t.Helper()
	var person Person
	_, err := testService.client.RawPost("/people", map[string]interface{}{"name": name}, &person)
	if err != nil {
		t.Fatal(err)
	}
	return person
}

func TestHealth(t *testing.T) {
	response := map[string]interface{}{}
	_, err := testService.client.RawGet("/", &response)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, response["ok"])
	assert.Equal(t, "curriculo", response["api"])
}

func TestPersonCreateReadRoundtrip(t *testing.T) {
	var created Person
	_, err := testService.client.RawPost("/people",
		map[string]interface{}{"name": "Ana Silva", "title": "Dev"}, &created)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Fatal("no id was generated")
	}
	assert.Equal(t, "Ana Silva", *created.Name)
	assert.Equal(t, "Dev", *created.Title)
	// all other fields come back as explicit nulls
	assert.Nil(t, created.Summary)
	assert.Nil(t, created.Email)
	assert.Nil(t, created.Phone)
	assert.Nil(t, created.City)
	assert.Nil(t, created.State)
	assert.Nil(t, created.Website)

	var read Person
	if _, err := testService.client.RawGet("/people/"+itoa(created.ID), &read); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, created, read)
}

func TestPersonCreateWithoutFields(t *testing.T) {
	var before []Person
	if _, err := testService.client.RawGet("/people", &before); err != nil {
		t.Fatal(err)
	}

	status, err := testService.client.RawPost("/people",
		map[string]interface{}{"bogus": "value"}, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	var after []Person
	if _, err := testService.client.RawGet("/people", &after); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, len(before), len(after))
}

func TestPersonCreateIgnoresIdentifier(t *testing.T) {
	var created Person
	_, err := testService.client.RawPost("/people",
		map[string]interface{}{"id": 424242, "name": "Has Id", "color": "purple"}, &created)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, 424242, created.ID)
	assert.Equal(t, "Has Id", *created.Name)
}

func TestPersonUpdatePartial(t *testing.T) {
	var created Person
	_, err := testService.client.RawPost("/people", map[string]interface{}{
		"name":  "Carlos Borba",
		"title": "Dev Front-End",
		"email": "carlos@exemplo.com",
		"city":  "Aliança",
	}, &created)
	if err != nil {
		t.Fatal(err)
	}

	var updated Person
	_, err = testService.client.RawPut("/people/"+itoa(created.ID),
		map[string]interface{}{"title": "Assessor Técnico"}, &updated)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "Assessor Técnico", *updated.Title)
	// everything else is untouched
	assert.Equal(t, *created.Name, *updated.Name)
	assert.Equal(t, *created.Email, *updated.Email)
	assert.Equal(t, *created.City, *updated.City)
	assert.Nil(t, updated.Website)
}

func TestPersonUpdateToNull(t *testing.T) {
	var created Person
	_, err := testService.client.RawPost("/people",
		map[string]interface{}{"name": "Nullable", "title": "Dev"}, &created)
	if err != nil {
		t.Fatal(err)
	}

	var updated Person
	_, err = testService.client.RawPut("/people/"+itoa(created.ID),
		map[string]interface{}{"title": nil}, &updated)
	if err != nil {
		t.Fatal(err)
	}
	assert.Nil(t, updated.Title)
	assert.Equal(t, "Nullable", *updated.Name)
}

func TestPersonUpdateWithoutFields(t *testing.T) {
	created := mustCreatePerson(t, t.Name())
	status, err := testService.client.RawPut("/people/"+itoa(created.ID),
		map[string]interface{}{"bogus": "value"}, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPersonUpdateNotFound(t *testing.T) {
	status, err := testService.client.RawPut("/people/987654",
		map[string]interface{}{"name": "Nobody"}, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPersonReadNotFound(t *testing.T) {
	status, err := testService.client.RawGet("/people/987654", nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPersonDelete(t *testing.T) {
	created := mustCreatePerson(t, t.Name())

	if _, err := testService.client.RawDelete("/people/" + itoa(created.ID)); err != nil {
		t.Fatal(err)
	}

	status, err := testService.client.RawGet("/people/"+itoa(created.ID), nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	// deleting again reports not found, not success
	status, err = testService.client.RawDelete("/people/" + itoa(created.ID))
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEducationRequiresPerson(t *testing.T) {
	// no person_id: the database rejects the row, the service reports
	// a storage failure and nothing else
	status, err := testService.client.RawPost("/educations",
		map[string]interface{}{"school": "UNICAP", "course": "SI"}, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)

	// dangling person_id fails the same way
	status, err = testService.client.RawPost("/educations",
		map[string]interface{}{"person_id": 987654, "school": "UNICAP", "course": "SI"}, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestSkillListFilter(t *testing.T) {
	ana := mustCreatePerson(t, "Ana")
	carlos := mustCreatePerson(t, "Carlos")

	for _, skill := range []map[string]interface{}{
		{"person_id": ana.ID, "name": "React", "level": "Intermediário"},
		{"person_id": ana.ID, "name": "CSS"},
		{"person_id": carlos.ID, "name": "JavaScript"},
	} {
		if _, err := testService.client.RawPost("/skills", skill, nil); err != nil {
			t.Fatal(err)
		}
	}

	var skills []Skill
	if _, err := testService.client.RawGet("/skills?person_id="+itoa(ana.ID), &skills); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, skills, 2)
	for _, skill := range skills {
		assert.Equal(t, ana.ID, skill.PersonID)
	}
}

func TestChildrenShortcut(t *testing.T) {
	person := mustCreatePerson(t, t.Name())

	// a person without education yields an empty list, not a 404
	var educations []Education
	if _, err := testService.client.RawGet("/people/"+itoa(person.ID)+"/educations", &educations); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, educations, 0)

	// same for a person that does not even exist
	if _, err := testService.client.RawGet("/people/987654/educations", &educations); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, educations, 0)

	for _, course := range []string{"Direito", "Sistemas para Internet"} {
		_, err := testService.client.RawPost("/educations", map[string]interface{}{
			"person_id": person.ID, "school": "UNICAP", "course": course,
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := testService.client.RawGet("/people/"+itoa(person.ID)+"/educations", &educations); err != nil {
		t.Fatal(err)
	}
	if assert.Len(t, educations, 2) {
		// ascending by id
		assert.Less(t, educations[0].ID, educations[1].ID)
		assert.Equal(t, "Direito", *educations[0].Course)
	}
}

func TestPersonDeleteCascades(t *testing.T) {
	person := mustCreatePerson(t, t.Name())

	for _, name := range []string{"React", "CSS"} {
		_, err := testService.client.RawPost("/skills",
			map[string]interface{}{"person_id": person.ID, "name": name}, nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	_, err := testService.client.RawPost("/projects",
		map[string]interface{}{"person_id": person.ID, "name": "Healnet"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := testService.client.RawDelete("/people/" + itoa(person.ID)); err != nil {
		t.Fatal(err)
	}

	var skills []Skill
	if _, err := testService.client.RawGet("/skills?person_id="+itoa(person.ID), &skills); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, skills, 0)

	var projects []Project
	if _, err := testService.client.RawGet("/projects?person_id="+itoa(person.ID), &projects); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, projects, 0)
}

func TestExperienceDates(t *testing.T) {
	person := mustCreatePerson(t, t.Name())

	var experience Experience
	_, err := testService.client.RawPost("/experiences", map[string]interface{}{
		"person_id":  person.ID,
		"company":    "Prefeitura Recife",
		"role":       "Estagiária Front-End",
		"start_date": "2024-01-01",
		"end_date":   nil,
	}, &experience)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "2024-01-01", *experience.StartDate)
	// null end date means the experience is ongoing
	assert.Nil(t, experience.EndDate)
}

func TestEducationYears(t *testing.T) {
	person := mustCreatePerson(t, t.Name())

	var education Education
	_, err := testService.client.RawPost("/educations", map[string]interface{}{
		"person_id":  person.ID,
		"school":     "FACET",
		"course":     "Direito",
		"start_year": 2012,
		"end_year":   2016,
	}, &education)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2012, *education.StartYear)
	assert.Equal(t, 2016, *education.EndYear)

	var read Education
	if _, err := testService.client.RawGet("/educations/"+itoa(education.ID), &read); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, education, read)
}
