package challenges

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/servicedef"

	"gopkg.in/yaml.v3"
)

// CatalogVersion is the only catalog document version this harness understands.
const CatalogVersion = 1

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the ordered list of scenarios that make up the contract.
type Catalog struct {
	Version int
	Groups  []Group
}

type Group struct {
	Name      string
	Scenarios []*Scenario
}

// Scenarios returns every scenario in catalog order.
func (c *Catalog) Scenarios() []*Scenario {
	var ret []*Scenario
	for _, g := range c.Groups {
		ret = append(ret, g.Scenarios...)
	}
	return ret
}

func (c *Catalog) DisabledCount() int {
	n := 0
	for _, s := range c.Scenarios() {
		if s.Disabled != "" {
			n++
		}
	}
	return n
}

// Subset returns a catalog with only the scenarios for which keep returns true, in the same
// order. Groups left empty are dropped.
func (c *Catalog) Subset(keep func(*Scenario) bool) *Catalog {
	ret := &Catalog{Version: c.Version}
	for _, g := range c.Groups {
		var scenarios []*Scenario
		for _, s := range g.Scenarios {
			if keep(s) {
				scenarios = append(scenarios, s)
			}
		}
		if len(scenarios) > 0 {
			ret.Groups = append(ret.Groups, Group{Name: g.Name, Scenarios: scenarios})
		}
	}
	return ret
}

type catalogDocument struct {
	Version        int               `yaml:"version"`
	DefaultHeaders map[string]string `yaml:"defaultHeaders"`
	Groups         []groupDocument   `yaml:"groups"`
}

type groupDocument struct {
	Name      string             `yaml:"name"`
	Scenarios []scenarioDocument `yaml:"scenarios"`
}

type scenarioDocument struct {
	Name      string                    `yaml:"name"`
	Method    string                    `yaml:"method"`
	Path      string                    `yaml:"path"`
	Headers   map[string]string         `yaml:"headers"`
	BasicAuth *credentialsDocument      `yaml:"basicAuth"`
	Body      *bodyDocument             `yaml:"body"`
	Expect    expectDocument            `yaml:"expect"`
	Capture   map[string]string         `yaml:"capture"`
	Lookup    map[string]lookupDocument `yaml:"lookup"`
	Disabled  string                    `yaml:"disabled"`
}

type credentialsDocument struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type bodyDocument struct {
	Format string           `yaml:"format"`
	Todo   *servicedef.Todo `yaml:"todo"`
	Note   *servicedef.Note `yaml:"note"`
	Raw    *string          `yaml:"raw"`
}

type expectDocument struct {
	Status       int      `yaml:"status"`
	ContentType  string   `yaml:"contentType"`
	BodyContains string   `yaml:"bodyContains"`
	BodyHas      []string `yaml:"bodyHas"`
}

type lookupDocument struct {
	Path  string `yaml:"path"`
	Field string `yaml:"field"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return Load(defaultCatalog)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates a catalog document. All validation problems are reported together.
func Load(data []byte) (*Catalog, error) {
	var doc catalogDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if doc.Version != CatalogVersion {
		return nil, fmt.Errorf("unsupported catalog version %d (expected %d)", doc.Version, CatalogVersion)
	}

	v := &catalogValidator{ids: make(map[string]bool), produced: make(map[string]string)}
	for name, value := range doc.DefaultHeaders {
		v.checkTemplate("default header "+name, value, nil)
	}

	c := &Catalog{Version: doc.Version}
	for _, gd := range doc.Groups {
		if strings.TrimSpace(gd.Name) == "" {
			v.addf("a group has no name")
			continue
		}
		group := Group{Name: gd.Name}
		for _, sd := range gd.Scenarios {
			group.Scenarios = append(group.Scenarios, v.scenario(gd.Name, sd, doc.DefaultHeaders))
		}
		c.Groups = append(c.Groups, group)
	}
	if len(c.Groups) == 0 {
		v.addf("catalog has no groups")
	}
	if err := errors.Join(v.errs...); err != nil {
		return nil, err
	}
	return c, nil
}

type catalogValidator struct {
	ids      map[string]bool
	produced map[string]string // discovered name -> id of the scenario that captures it
	errs     []error
}

func (v *catalogValidator) addf(format string, args ...interface{}) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *catalogValidator) scenario(group string, sd scenarioDocument, defaults map[string]string) *Scenario {
	s := &Scenario{
		Group:    group,
		Name:     sd.Name,
		Method:   strings.ToUpper(strings.TrimSpace(sd.Method)),
		Path:     sd.Path,
		Headers:  mergeHeaders(defaults, sd.Headers),
		Capture:  sd.Capture,
		Disabled: sd.Disabled,
		Expect: Expectation{
			Status:       sd.Expect.Status,
			ContentType:  sd.Expect.ContentType,
			BodyContains: sd.Expect.BodyContains,
			BodyHas:      sd.Expect.BodyHas,
		},
	}
	id := s.ID().String()

	if strings.TrimSpace(sd.Name) == "" {
		v.addf("a scenario in group %q has no name", group)
	} else if v.ids[id] {
		v.addf("duplicate scenario %q", id)
	}
	v.ids[id] = true
	if s.Method == "" {
		v.addf("%s: method is required", id)
	}
	if !strings.HasPrefix(s.Path, "/") {
		v.addf("%s: path must start with /", id)
	}
	if s.Expect.Status < 100 || s.Expect.Status > 599 {
		v.addf("%s: expect.status must be an HTTP status code", id)
	}
	if sd.BasicAuth != nil {
		s.BasicAuth = &Credentials{Username: sd.BasicAuth.Username, Password: sd.BasicAuth.Password}
	}
	if sd.Body != nil {
		s.Body = v.body(id, sd.Body)
	}

	if len(sd.Lookup) > 0 {
		s.Lookup = make(map[string]LookupSpec, len(sd.Lookup))
	}
	for _, name := range sortedKeys(sd.Lookup) {
		ld := sd.Lookup[name]
		if !discoveredNamePattern.MatchString(name) {
			v.addf("%s: invalid lookup name %q", id, name)
		}
		if _, ok := v.produced[name]; ok {
			v.addf("%s: lookup %q has the same name as a captured value", id, name)
		}
		if !strings.HasPrefix(ld.Path, "/") || ld.Field == "" {
			v.addf("%s: lookup %q needs a path starting with / and a field", id, name)
		}
		s.Lookup[name] = LookupSpec{Path: ld.Path, Field: ld.Field}
	}

	for _, text := range s.templateFields() {
		v.checkTemplate(id, text, s.Lookup)
	}

	for _, name := range sortedKeys(s.Capture) {
		if !discoveredNamePattern.MatchString(name) {
			v.addf("%s: invalid capture name %q", id, name)
		}
		if producer, ok := v.produced[name]; ok {
			v.addf("%s: %q is already captured by %s", id, name, producer)
		}
		if s.Capture[name] == "" {
			v.addf("%s: capture %q needs a path", id, name)
		}
		v.produced[name] = id
	}
	return s
}

func (v *catalogValidator) checkTemplate(id, text string, lookups map[string]LookupSpec) {
	refs, err := parseTemplate(text)
	if err != nil {
		v.addf("%s: %s", id, err)
		return
	}
	for _, r := range refs {
		if knownSessionRef(r) {
			continue
		}
		if _, ok := lookups[r]; ok {
			continue
		}
		if _, ok := v.produced[r]; !ok {
			v.addf("%s: %q is not captured by an earlier scenario", id, r)
		}
	}
}

func (v *catalogValidator) body(id string, bd *bodyDocument) *BodySpec {
	format, err := codec.ParseFormat(bd.Format)
	if err != nil {
		v.addf("%s: %s", id, err)
	}
	payloads := 0
	for _, set := range []bool{bd.Todo != nil, bd.Note != nil, bd.Raw != nil} {
		if set {
			payloads++
		}
	}
	if payloads != 1 {
		v.addf("%s: body needs exactly one of todo, note or raw", id)
	}
	return &BodySpec{Format: format, Todo: bd.Todo, Note: bd.Note, Raw: bd.Raw}
}

// mergeHeaders applies scenario headers over the defaults, matching names case-insensitively.
// A scenario header keeps its own spelling; an empty value suppresses the header.
func mergeHeaders(defaults, own map[string]string) map[string]string {
	ret := make(map[string]string, len(defaults)+len(own))
	for name, value := range defaults {
		ret[name] = value
	}
	for name, value := range own {
		for existing := range ret {
			if strings.EqualFold(existing, name) {
				delete(ret, existing)
			}
		}
		ret[name] = value
	}
	return ret
}
