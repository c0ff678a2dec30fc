package core

// FieldType is the SQL storage type of a resource field
type FieldType string

// all supported field types
const (
	FieldTypeText    FieldType = "text"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDate    FieldType = "date"
)

// Field describes one writable column of a resource.
//
// Fields form the allow-list for create and update operations: any
// key in a request body that is not a configured field is silently
// ignored. This is the only write access control in the system, it
// keeps clients away from the id column and from columns they should
// not know about.
type Field struct {
	Name    string
	Type    FieldType
	NotNull bool
}

// Resource describes one entity table and the routes generated for it.
//
// Name is the singular table name, routes use the plural form. When
// ForeignKey is set, the list route accepts a query parameter of that
// name to filter the collection, and the parent resource gets a
// children shortcut route. The foreign key always references the
// person table with cascade delete.
type Resource struct {
	Name       string
	Fields     []Field
	ForeignKey string
}

// FieldNames returns the names of all writable columns, in configuration order
func (r Resource) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Resources returns the configuration of the five résumé resources.
//
// The person resource comes first. The order matters: child tables
// declare foreign keys on person, hence person must be created first.
func Resources() []Resource {
	return []Resource{
		{
			Name: "person",
			Fields: []Field{
				{Name: "name", Type: FieldTypeText, NotNull: true},
				{Name: "title", Type: FieldTypeText},
				{Name: "summary", Type: FieldTypeText},
				{Name: "email", Type: FieldTypeText},
				{Name: "phone", Type: FieldTypeText},
				{Name: "city", Type: FieldTypeText},
				{Name: "state", Type: FieldTypeText},
				{Name: "website", Type: FieldTypeText},
			},
		},
		{
			Name:       "education",
			ForeignKey: "person_id",
			Fields: []Field{
				{Name: "person_id", Type: FieldTypeInteger, NotNull: true},
				{Name: "school", Type: FieldTypeText, NotNull: true},
				{Name: "course", Type: FieldTypeText, NotNull: true},
				{Name: "start_year", Type: FieldTypeInteger},
				{Name: "end_year", Type: FieldTypeInteger},
			},
		},
		{
			Name:       "experience",
			ForeignKey: "person_id",
			Fields: []Field{
				{Name: "person_id", Type: FieldTypeInteger, NotNull: true},
				{Name: "company", Type: FieldTypeText, NotNull: true},
				{Name: "role", Type: FieldTypeText, NotNull: true},
				{Name: "start_date", Type: FieldTypeDate},
				{Name: "end_date", Type: FieldTypeDate},
				{Name: "description", Type: FieldTypeText},
			},
		},
		{
			Name:       "project",
			ForeignKey: "person_id",
			Fields: []Field{
				{Name: "person_id", Type: FieldTypeInteger, NotNull: true},
				{Name: "name", Type: FieldTypeText, NotNull: true},
				{Name: "url", Type: FieldTypeText},
				{Name: "description", Type: FieldTypeText},
			},
		},
		{
			Name:       "skill",
			ForeignKey: "person_id",
			Fields: []Field{
				{Name: "person_id", Type: FieldTypeInteger, NotNull: true},
				{Name: "name", Type: FieldTypeText, NotNull: true},
				{Name: "level", Type: FieldTypeText},
			},
		},
	}
}
