package challenges

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	refChallengerID    = "session.challengerId"
	refAuthToken       = "session.authToken"
	refAccountUsername = "account.username"
	refAccountPassword = "account.password"
)

var discoveredNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type templateScope struct {
	session    *Session
	account    Credentials
	discovered Discovered
}

// parseTemplate splits s into its {{expression}} references. It fails on an unterminated
// expression or one that is neither a session/account value nor a valid discovered name.
func parseTemplate(s string) ([]string, error) {
	var refs []string
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			return refs, nil
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			return nil, fmt.Errorf("unterminated template expression in %q", s)
		}
		expr := strings.TrimSpace(rest[start+2 : start+end])
		if !knownSessionRef(expr) && !discoveredNamePattern.MatchString(expr) {
			return nil, fmt.Errorf("unknown template expression %q", expr)
		}
		refs = append(refs, expr)
		rest = rest[start+end+2:]
	}
}

func knownSessionRef(expr string) bool {
	switch expr {
	case refChallengerID, refAuthToken, refAccountUsername, refAccountPassword:
		return true
	}
	return false
}

// expand substitutes every {{expression}} in s. Substituted values are never re-scanned.
func (t templateScope) expand(s string) (string, error) {
	var b strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			return "", &BuildError{Reason: UnresolvedReference, Ref: rest[start:],
				Err: fmt.Errorf("unterminated template expression")}
		}
		value, err := t.resolve(strings.TrimSpace(rest[start+2 : start+end]))
		if err != nil {
			return "", err
		}
		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[start+end+2:]
	}
}

func (t templateScope) resolve(expr string) (string, error) {
	var value string
	switch expr {
	case refChallengerID:
		if t.session != nil {
			value = t.session.ChallengerID
		}
	case refAuthToken:
		if t.session != nil {
			value = t.session.AuthToken
		}
	case refAccountUsername:
		return t.account.Username, nil
	case refAccountPassword:
		return t.account.Password, nil
	default:
		v, ok := t.discovered[expr]
		if !ok {
			return "", &BuildError{Reason: UnresolvedReference, Ref: expr}
		}
		return v, nil
	}
	if value == "" {
		return "", &BuildError{Reason: UnsetSessionValue, Ref: expr}
	}
	return value, nil
}
