package challenges

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/transport"
)

// Verdict is the outcome of one scenario execution.
type Verdict struct {
	ScenarioName   string
	Passed         bool
	ActualStatus   int
	ExpectedStatus int
	Detail         string
}

// Verify compares resp with the outcome s expects. Status, content type and every body
// predicate must hold; the first mismatch is reported in the Detail. It never panics.
func Verify(s *Scenario, resp *transport.Response) Verdict {
	v := Verdict{
		ScenarioName:   s.ID().String(),
		ActualStatus:   resp.Status,
		ExpectedStatus: s.Expect.Status,
	}
	if err := check(s, resp); err != nil {
		v.Detail = err.Error()
		return v
	}
	v.Passed = true
	return v
}

func failedVerdict(s *Scenario, err error) Verdict {
	return Verdict{
		ScenarioName:   s.ID().String(),
		ExpectedStatus: s.Expect.Status,
		Detail:         err.Error(),
	}
}

func check(s *Scenario, resp *transport.Response) error {
	if resp.Status != s.Expect.Status {
		return &AssertionMismatch{
			Field:    "status",
			Expected: strconv.Itoa(s.Expect.Status),
			Actual:   strconv.Itoa(resp.Status),
		}
	}
	if want := s.Expect.ContentType; want != "" {
		got := resp.ContentType()
		if !sameMediaType(want, got) {
			if got == "" {
				got = "no Content-Type"
			}
			return &AssertionMismatch{Field: "content-type", Expected: want, Actual: got}
		}
	}
	for _, p := range s.predicates() {
		if err := evaluate(p, resp.Body); err != nil {
			return err
		}
	}
	return nil
}

func sameMediaType(want, got string) bool {
	parsed, _, err := mime.ParseMediaType(got)
	if err != nil {
		return false
	}
	return strings.EqualFold(want, parsed)
}

func evaluate(p BodyPredicate, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("body predicate %q panicked: %v", p.Description, r)
		}
	}()
	ok, checkErr := p.Check(body)
	if checkErr != nil {
		return fmt.Errorf("body predicate %q failed: %w", p.Description, checkErr)
	}
	if !ok {
		return &AssertionMismatch{Field: "body", Expected: p.Description, Actual: summarize(body)}
	}
	return nil
}

const maxBodySummary = 200

func summarize(body []byte) string {
	if len(body) == 0 {
		return "empty body"
	}
	s := string(body)
	if len(s) > maxBodySummary {
		s = s[:maxBodySummary] + "..."
	}
	return strconv.Quote(s)
}

func (s *Scenario) predicates() []BodyPredicate {
	var ret []BodyPredicate
	if s.Expect.BodyContains != "" {
		ret = append(ret, BodyContains(s.Expect.BodyContains))
	}
	for _, path := range s.Expect.BodyHas {
		ret = append(ret, BodyHas(path))
	}
	if s.Predicate != nil {
		ret = append(ret, *s.Predicate)
	}
	return ret
}

func BodyContains(substring string) BodyPredicate {
	return BodyPredicate{
		Description: fmt.Sprintf("body contains %q", substring),
		Check: func(body []byte) (bool, error) {
			return strings.Contains(string(body), substring), nil
		},
	}
}

// BodyHas requires the body to be JSON with a value at path.
func BodyHas(path string) BodyPredicate {
	return BodyPredicate{
		Description: fmt.Sprintf("JSON body has %q", path),
		Check: func(body []byte) (bool, error) {
			if !codec.ValidJSON(body) {
				return false, fmt.Errorf("body is not valid JSON: %s", summarize(body))
			}
			_, found := LookupPath(body, path)
			return found, nil
		},
	}
}
