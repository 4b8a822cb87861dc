package challenges

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apichallenges/contract-tests/codec"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := loadDefaultCatalog(t)
	assert.Equal(t, CatalogVersion, c.Version)
	assert.Len(t, c.Scenarios(), 40)
	assert.Equal(t, 3, c.DisabledCount())

	var groups []string
	for _, g := range c.Groups {
		groups = append(groups, g.Name)
	}
	assert.Equal(t, []string{"challenges", "todos", "content negotiation", "heartbeat", "secret note", "secret token"}, groups)
}

func TestDefaultCatalogMergesDefaultHeaders(t *testing.T) {
	for _, s := range loadDefaultCatalog(t).Scenarios() {
		assert.Equal(t, "{{session.challengerId}}", s.Headers["X-Challenger"], s.ID().String())
	}
}

func TestDefaultCatalogListing(t *testing.T) {
	var buf bytes.Buffer
	loadDefaultCatalog(t).Describe(&buf)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "catalog", buf.Bytes())
}

func TestLoadScenarioFields(t *testing.T) {
	c, err := Load([]byte(`
version: 1
defaultHeaders:
  X-Challenger: "{{session.challengerId}}"
  Accept: application/json
groups:
  - name: todos
    scenarios:
      - name: create
        method: post
        path: /todos
        headers:
          accept: application/xml
        body:
          format: xml
          todo: {title: t, doneStatus: true}
        expect:
          status: 201
          contentType: application/xml
        capture:
          created: id
      - name: get
        method: GET
        path: /todos/{{created}}
        headers:
          X-Challenger: ""
        expect:
          status: 200
          bodyHas: [todos.0.id]
`))
	require.NoError(t, err)
	scenarios := c.Scenarios()
	require.Len(t, scenarios, 2)

	create := scenarios[0]
	assert.Equal(t, "POST", create.Method)
	assert.Equal(t, map[string]string{"X-Challenger": "{{session.challengerId}}", "accept": "application/xml"}, create.Headers)
	assert.Equal(t, codec.XML, create.Body.Format)
	require.NotNil(t, create.Body.Todo)
	assert.Equal(t, "t", create.Body.Todo.Title)
	assert.True(t, create.Body.Todo.DoneStatus)
	assert.Equal(t, map[string]string{"created": "id"}, create.Capture)
	assert.Empty(t, create.References())
	assert.False(t, create.Independent())

	get := scenarios[1]
	assert.Equal(t, []string{"created"}, get.References())
	assert.Equal(t, "", get.Headers["X-Challenger"])
	assert.Equal(t, []string{"todos.0.id"}, get.Expect.BodyHas)
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	for _, tc := range []struct {
		name    string
		doc     string
		message string
	}{
		{"wrong version", `
version: 2
groups: [{name: g, scenarios: [{name: s, method: GET, path: /, expect: {status: 200}}]}]`,
			"unsupported catalog version 2"},
		{"unknown field", `
version: 1
groups: [{name: g, scenarios: [{name: s, method: GET, path: /, expect: {status: 200}, retries: 3}]}]`,
			"retries"},
		{"no groups", `version: 1`, "no groups"},
		{"missing name", `
version: 1
groups: [{name: g, scenarios: [{method: GET, path: /, expect: {status: 200}}]}]`,
			"has no name"},
		{"duplicate scenario", `
version: 1
groups: [{name: g, scenarios: [
  {name: s, method: GET, path: /, expect: {status: 200}},
  {name: s, method: GET, path: /, expect: {status: 200}}]}]`,
			`duplicate scenario "g/s"`},
		{"missing method and status", `
version: 1
groups: [{name: g, scenarios: [{name: s, path: /}]}]`,
			"method is required"},
		{"bad path", `
version: 1
groups: [{name: g, scenarios: [{name: s, method: GET, path: todos, expect: {status: 200}}]}]`,
			"path must start with /"},
		{"two payloads", `
version: 1
groups: [{name: g, scenarios: [{name: s, method: POST, path: /todos, expect: {status: 201},
  body: {format: json, raw: "{}", todo: {title: t}}}]}]`,
			"exactly one of todo, note or raw"},
		{"unknown body format", `
version: 1
groups: [{name: g, scenarios: [{name: s, method: POST, path: /todos, expect: {status: 201},
  body: {format: yaml, raw: "a: b"}}]}]`,
			`unknown body format "yaml"`},
		{"unknown session value", `
version: 1
groups: [{name: g, scenarios: [{name: s, method: GET, path: "/{{session.password}}", expect: {status: 200}}]}]`,
			`unknown template expression "session.password"`},
		{"reference before capture", `
version: 1
groups: [{name: g, scenarios: [
  {name: get, method: GET, path: "/todos/{{id}}", expect: {status: 200}},
  {name: create, method: POST, path: /todos, expect: {status: 201}, body: {todo: {title: t}}, capture: {id: id}}]}]`,
			`"id" is not captured by an earlier scenario`},
		{"captured twice", `
version: 1
groups: [{name: g, scenarios: [
  {name: a, method: POST, path: /todos, expect: {status: 201}, body: {todo: {title: t}}, capture: {id: id}},
  {name: b, method: POST, path: /todos, expect: {status: 201}, body: {todo: {title: t}}, capture: {id: id}}]}]`,
			`"id" is already captured by g/a`},
		{"lookup shadows capture", `
version: 1
groups: [{name: g, scenarios: [
  {name: a, method: POST, path: /todos, expect: {status: 201}, body: {todo: {title: t}}, capture: {id: id}},
  {name: b, method: GET, path: "/todos/{{id}}", expect: {status: 200}, lookup: {id: {path: /todos, field: todos.0.id}}}]}]`,
			`lookup "id" has the same name as a captured value`},
		{"lookup without field", `
version: 1
groups: [{name: g, scenarios: [
  {name: b, method: GET, path: "/todos/{{id}}", expect: {status: 200}, lookup: {id: {path: /todos}}}]}]`,
			`needs a path starting with / and a field`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestLoadAcceptsOwnLookupReference(t *testing.T) {
	c, err := Load([]byte(`
version: 1
groups: [{name: g, scenarios: [
  {name: b, method: GET, path: "/todos/{{id}}", expect: {status: 200}, lookup: {id: {path: /todos, field: todos.0.id}}}]}]`))
	require.NoError(t, err)
	s := c.Scenarios()[0]
	assert.Equal(t, LookupSpec{Path: "/todos", Field: "todos.0.id"}, s.Lookup["id"])
	assert.False(t, s.Independent())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalog, 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Scenarios(), len(loadDefaultCatalog(t).Scenarios()))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubsetKeepsOrderAndDropsEmptyGroups(t *testing.T) {
	c := loadDefaultCatalog(t).Subset(func(s *Scenario) bool { return s.Method == "DELETE" })

	var ids []string
	for _, s := range c.Scenarios() {
		ids = append(ids, s.ID().String())
	}
	assert.Equal(t, []string{
		"todos/delete created todo",
		"todos/delete listed todo",
		"heartbeat/delete heartbeat is not allowed",
	}, ids)
	assert.Len(t, c.Groups, 2)
}
