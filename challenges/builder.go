package challenges

import (
	"strings"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/transport"
)

const headerContentType = "Content-Type"

// Builder turns scenarios into concrete requests. It performs no I/O.
type Builder struct {
	BaseURL     string
	Credentials Credentials
}

// Build resolves every reference in s and encodes its body. Failures are *BuildError.
func (b *Builder) Build(s *Scenario, session *Session, discovered Discovered) (*transport.Request, error) {
	scope := templateScope{session: session, account: b.account(), discovered: discovered}

	path, err := scope.expand(s.Path)
	if err != nil {
		return nil, err
	}
	req := &transport.Request{
		Method: s.Method,
		URL:    strings.TrimSuffix(b.BaseURL, "/") + path,
	}

	declaredContentType := false
	for _, name := range sortedKeys(s.Headers) {
		value, err := scope.expand(s.Headers[name])
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(name, headerContentType) {
			declaredContentType = true
		}
		if value == "" {
			continue
		}
		req.Headers = append(req.Headers, transport.Header{Name: name, Value: value})
	}

	if s.BasicAuth != nil {
		username, err := scope.expand(s.BasicAuth.Username)
		if err != nil {
			return nil, err
		}
		password, err := scope.expand(s.BasicAuth.Password)
		if err != nil {
			return nil, err
		}
		req.BasicAuth = &transport.BasicAuth{Username: username, Password: password}
	}

	if s.Body != nil {
		body, err := encodeBody(s.Body, scope)
		if err != nil {
			return nil, err
		}
		req.Body = body
		if format := s.Body.format(); !declaredContentType && format != codec.None {
			req.Headers = append(req.Headers, transport.Header{Name: headerContentType, Value: format.MediaType()})
		}
	}
	return req, nil
}

func (b *Builder) account() Credentials {
	if b.Credentials == (Credentials{}) {
		return DefaultCredentials
	}
	return b.Credentials
}

func encodeBody(body *BodySpec, scope templateScope) ([]byte, error) {
	switch {
	case body.Raw != nil:
		raw, err := scope.expand(*body.Raw)
		if err != nil {
			return nil, err
		}
		return []byte(raw), nil
	case body.Todo != nil:
		return encodeTyped(body.Todo, body.format())
	case body.Note != nil:
		return encodeTyped(body.Note, body.format())
	}
	return []byte{}, nil
}

func encodeTyped(v any, format codec.Format) ([]byte, error) {
	data, err := codec.Encode(v, format)
	if err != nil {
		return nil, &BuildError{Reason: InvalidBody, Err: err}
	}
	return data, nil
}
