package transport

import (
	"context"
	"strings"

	"github.com/apichallenges/contract-tests/framework"

	"github.com/alessio/shellescape"
)

const maxLoggedBody = 2000

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CurlCommand renders req as a curl command line that reproduces it from a shell.
func CurlCommand(req *Request) string {
	var b commandBuilder
	b.add("curl", "-i", "-X", req.Method)
	for _, h := range req.Headers {
		b.add("-H", h.Name+": "+h.Value)
	}
	if req.BasicAuth != nil {
		b.add("-u", req.BasicAuth.Username+":"+req.BasicAuth.Password)
	}
	if req.Body != nil {
		b.add("--data-binary", string(req.Body))
	}
	b.add(req.URL)
	return b.String()
}

type loggingSender struct {
	next   Sender
	logger framework.Logger
}

// WithLogger returns a Sender that logs each request and its outcome.
func WithLogger(next Sender, logger framework.Logger) Sender {
	if logger == nil {
		return next
	}
	return loggingSender{next: next, logger: logger}
}

func (s loggingSender) Send(ctx context.Context, req *Request) (*Response, error) {
	s.logger.Printf(">> %s", CurlCommand(req))
	resp, err := s.next.Send(ctx, req)
	if err != nil {
		s.logger.Printf("<< request failed: %s", err)
		return nil, err
	}
	s.logger.Printf("<< HTTP %d", resp.Status)
	for _, h := range resp.Headers {
		s.logger.Printf("<<   %s: %s", h.Name, h.Value)
	}
	if len(resp.Body) > 0 {
		body := string(resp.Body)
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody] + "..."
		}
		s.logger.Printf("<< body: %s", body)
	}
	return resp, nil
}
