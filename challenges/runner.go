package challenges

import (
	"context"
	"fmt"
	"net/http"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/framework"
	"github.com/apichallenges/contract-tests/transport"
)

const disabledSkipPrefix = "unverified: "

// Runner executes a catalog in order against one session. It is not safe for concurrent use;
// scenarios depend on the server-side effects of earlier ones.
type Runner struct {
	Builder         *Builder
	Sender          transport.Sender
	IncludeDisabled bool
}

// Run executes every scenario of catalog in order and returns one Verdict per scenario that
// was attempted. Scenarios excluded by the filter or disabled are reported as skipped by c.
func (r *Runner) Run(ctx context.Context, c *framework.Context, session *Session, catalog *Catalog) []Verdict {
	var verdicts []Verdict
	discovered := make(Discovered)
	for _, g := range catalog.Groups {
		c.Group(g.Name, func(gc *framework.Context) {
			for _, s := range g.Scenarios {
				s := s
				gc.Run(s.Name, func(sc *framework.Context) {
					if s.Disabled != "" && !r.IncludeDisabled {
						sc.SkipWithReason(disabledSkipPrefix + s.Disabled)
					}
					v := r.runScenario(ctx, sc, s, session, discovered)
					verdicts = append(verdicts, v)
					if !v.Passed {
						sc.Errorf("%s", v.Detail)
					}
				})
			}
		})
	}
	return verdicts
}

func (r *Runner) runScenario(
	ctx context.Context,
	c *framework.Context,
	s *Scenario,
	session *Session,
	discovered Discovered,
) Verdict {
	sender := transport.WithLogger(r.Sender, c.DebugLogger())

	scope := discovered
	if len(s.Lookup) > 0 {
		scope = make(Discovered, len(discovered)+len(s.Lookup))
		for k, v := range discovered {
			scope[k] = v
		}
		for _, name := range sortedKeys(s.Lookup) {
			value, err := r.lookup(ctx, sender, s, s.Lookup[name], session, discovered)
			if err != nil {
				c.Debug("lookup of %q failed: %s", name, err)
				continue
			}
			c.Debug("lookup of %q found %s", name, value)
			scope[name] = value
		}
	}

	req, err := r.Builder.Build(s, session, scope)
	if err != nil {
		return failedVerdict(s, err)
	}
	resp, err := sender.Send(ctx, req)
	if err != nil {
		return failedVerdict(s, &TransportError{Err: err})
	}

	v := Verify(s, resp)
	if !v.Passed {
		return v
	}
	for _, name := range sortedKeys(s.Capture) {
		path := s.Capture[name]
		value, ok := LookupPath(resp.Body, path)
		str, usable := scalarString(value)
		if !ok || !usable {
			v.Passed = false
			v.Detail = fmt.Sprintf("response has no usable value at %q to capture as %q", path, name)
			return v
		}
		c.Debug("captured %q = %s", name, str)
		discovered[name] = str
	}
	return v
}

// lookup issues a fresh JSON listing request using the scenario's own headers apart from Accept
// and Content-Type, and returns the value of the lookup field.
func (r *Runner) lookup(
	ctx context.Context,
	sender transport.Sender,
	s *Scenario,
	ls LookupSpec,
	session *Session,
	discovered Discovered,
) (string, error) {
	listing := &Scenario{
		Group:   s.Group,
		Name:    s.Name,
		Method:  http.MethodGet,
		Path:    ls.Path,
		Headers: mergeHeaders(s.Headers, map[string]string{"Accept": codec.MediaTypeJSON, headerContentType: ""}),
	}
	req, err := r.Builder.Build(listing, session, discovered)
	if err != nil {
		return "", err
	}
	resp, err := sender.Send(ctx, req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.Status != http.StatusOK {
		return "", fmt.Errorf("listing %s returned HTTP %d", ls.Path, resp.Status)
	}
	value, ok := LookupPath(resp.Body, ls.Field)
	str, usable := scalarString(value)
	if !ok || !usable {
		return "", fmt.Errorf("listing %s has no usable value at %q", ls.Path, ls.Field)
	}
	return str, nil
}
