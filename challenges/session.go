package challenges

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/apichallenges/contract-tests/servicedef"
	"github.com/apichallenges/contract-tests/transport"
)

// Session identifies one challenger's isolated state in the sandbox. It is created once per run
// and only the token is ever replaced afterwards.
type Session struct {
	ChallengerID string
	AuthToken    string
}

type Credentials struct {
	Username string
	Password string
}

// DefaultCredentials is the account the sandbox accepts for the token exchange.
var DefaultCredentials = Credentials{Username: "admin", Password: "password"}

// Bootstrapper acquires a Session with two requests: one that creates the challenger and one
// that exchanges basic credentials for the secret token.
type Bootstrapper struct {
	BaseURL     string
	Sender      transport.Sender
	Credentials Credentials
	TokenPrefix string
}

const (
	stepCreateChallenger = "create challenger"
	stepCreateToken      = "create secret token"
)

// Bootstrap returns a new Session or a *BootstrapError.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (*Session, error) {
	resp, err := b.send(ctx, stepCreateChallenger, &transport.Request{
		Method: http.MethodPost,
		URL:    b.url(servicedef.PathChallenger),
	})
	if err != nil {
		return nil, err
	}
	id, ok := resp.Headers.Get(servicedef.HeaderChallenger)
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return nil, &BootstrapError{
			Reason: MissingSessionHeader,
			Step:   stepCreateChallenger,
			Err:    fmt.Errorf("response has no %s header", servicedef.HeaderChallenger),
		}
	}

	session := &Session{ChallengerID: id}
	if err := b.RefreshToken(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RefreshToken replaces the session's auth token with a newly issued one.
func (b *Bootstrapper) RefreshToken(ctx context.Context, session *Session) error {
	creds := b.Credentials
	if creds == (Credentials{}) {
		creds = DefaultCredentials
	}
	resp, err := b.send(ctx, stepCreateToken, &transport.Request{
		Method:    http.MethodPost,
		URL:       b.url(servicedef.PathSecretToken),
		Headers:   transport.Headers{{Name: servicedef.HeaderChallenger, Value: session.ChallengerID}},
		BasicAuth: &transport.BasicAuth{Username: creds.Username, Password: creds.Password},
	})
	if err != nil {
		return err
	}
	token, err := parseToken(resp.Headers.Values(servicedef.HeaderAuthToken), b.TokenPrefix)
	if err != nil {
		return &BootstrapError{Reason: MalformedTokenHeader, Step: stepCreateToken, Err: err}
	}
	session.AuthToken = token
	return nil
}

func (b *Bootstrapper) send(ctx context.Context, step string, req *transport.Request) (*transport.Response, error) {
	resp, err := b.Sender.Send(ctx, req)
	if err != nil {
		return nil, &BootstrapError{Reason: BootstrapTransport, Step: step, Err: err}
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &BootstrapError{
			Reason: UnexpectedStatus,
			Step:   step,
			Err:    fmt.Errorf("HTTP status %d", resp.Status),
		}
	}
	return resp, nil
}

func (b *Bootstrapper) url(path string) string {
	return strings.TrimSuffix(b.BaseURL, "/") + path
}

func parseToken(values []string, prefix string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("response has no %s header", servicedef.HeaderAuthToken)
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return "", errors.New("response has conflicting token headers")
		}
	}
	value := strings.TrimSpace(values[0])
	if !strings.HasPrefix(value, prefix) {
		return "", fmt.Errorf("token header does not start with %q", prefix)
	}
	token := value[len(prefix):]
	if token == "" {
		return "", errors.New("token header is empty")
	}
	if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		return "", errors.New("token contains whitespace")
	}
	return token, nil
}
