/*
Package backend generates a uniform REST interface for the résumé resources.

The backend is driven entirely by the resource configuration in the core
package. For every configured resource it installs the five collection routes
on a mux router, here shown for skill:

	GET    /skills          - list the collection, optionally ?person_id=42
	GET    /skills/{id}     - read a single skill
	POST   /skills          - create a new skill
	PUT    /skills/{id}     - update an existing skill
	DELETE /skills/{id}     - delete a skill

Child resources additionally get a shortcut below their parent:

	GET /people/{person_id}/skills

All SQL is built from the compile-time configuration, request input is only
ever bound as query parameters. Request bodies are JSON objects, keys outside
the configured field allow-list are ignored.
*/
package backend
