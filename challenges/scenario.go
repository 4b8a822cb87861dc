package challenges

import (
	"sort"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/framework"
	"github.com/apichallenges/contract-tests/servicedef"
)

// Scenario is one conformance check: the shape of a request and the outcome it must produce.
// Scenarios are not modified after the catalog is loaded.
type Scenario struct {
	Group  string
	Name   string
	Method string

	// Path is relative to the sandbox base URL and may contain {{...}} references.
	Path string

	// Headers are sent in name order. Values may contain {{...}} references. An empty value
	// means the header is not sent.
	Headers map[string]string

	BasicAuth *Credentials
	Body      *BodySpec
	Expect    Expectation

	// Predicate is an additional check on the response body, for scenarios defined in code.
	Predicate *BodyPredicate

	// Capture maps a discovered name to a path in the JSON response body. Values are stored only
	// when the scenario passed.
	Capture map[string]string

	// Lookup maps a discovered name to a listing request that is made just before this scenario.
	Lookup map[string]LookupSpec

	// Disabled is the reason the scenario's expected outcome is unverified. Disabled scenarios
	// are skipped unless the run includes them explicitly.
	Disabled string
}

// BodySpec describes a request body. Exactly one of Todo, Note or Raw is set.
type BodySpec struct {
	Format codec.Format
	Todo   *servicedef.Todo
	Note   *servicedef.Note

	// Raw is sent as-is after {{...}} substitution, so that malformed bodies can be expressed.
	Raw *string
}

// format is the declared format, defaulting to JSON for typed payloads.
func (b *BodySpec) format() codec.Format {
	if b.Format == codec.None && b.Raw == nil {
		return codec.JSON
	}
	return b.Format
}

type Expectation struct {
	Status int

	// ContentType, if set, is the media type the response must declare.
	ContentType string

	// BodyContains, if set, must be a substring of the response body.
	BodyContains string

	// BodyHas lists JSON paths that must exist in the response body.
	BodyHas []string
}

// LookupSpec finds a value by listing: a GET of Path whose JSON body must contain Field.
type LookupSpec struct {
	Path  string
	Field string
}

// BodyPredicate is a named check on a raw response body.
type BodyPredicate struct {
	Description string
	Check       func(body []byte) (bool, error)
}

func (s *Scenario) ID() framework.TestID {
	return framework.TestID{Path: []string{s.Group, s.Name}}
}

// References returns the sorted discovered names this scenario reads, excluding session and
// account values.
func (s *Scenario) References() []string {
	seen := make(map[string]bool)
	add := func(text string) {
		refs, _ := parseTemplate(text)
		for _, r := range refs {
			if !knownSessionRef(r) {
				seen[r] = true
			}
		}
	}
	for _, text := range s.templateFields() {
		add(text)
	}
	ret := make([]string, 0, len(seen))
	for name := range seen {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Independent reports whether the scenario neither reads nor produces discovered values,
// so that its verdict does not depend on where it runs in the catalog.
func (s *Scenario) Independent() bool {
	return len(s.References()) == 0 && len(s.Capture) == 0 && len(s.Lookup) == 0
}

func (s *Scenario) templateFields() []string {
	fields := []string{s.Path}
	for _, name := range sortedKeys(s.Headers) {
		fields = append(fields, s.Headers[name])
	}
	if s.BasicAuth != nil {
		fields = append(fields, s.BasicAuth.Username, s.BasicAuth.Password)
	}
	if s.Body != nil && s.Body.Raw != nil {
		fields = append(fields, *s.Body.Raw)
	}
	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
