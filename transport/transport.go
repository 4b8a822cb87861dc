// Package transport sends concrete requests to the sandbox and returns what came back.
package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// Header is one response or request header line.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Names may repeat.
type Headers []Header

// Get returns the first value whose name matches case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value, true
		}
	}
	return "", false
}

// Values returns every value whose name matches case-insensitively, in order.
func (h Headers) Values(name string) []string {
	var ret []string
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			ret = append(ret, hdr.Value)
		}
	}
	return ret
}

// Has reports whether any header has the given name.
func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// FromHTTPHeader converts a net/http header map. net/http does not keep the order of distinct
// names, so names are sorted; the order of values for the same name is kept.
func FromHTTPHeader(header http.Header) Headers {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	var ret Headers
	for _, name := range names {
		for _, value := range header[name] {
			ret = append(ret, Header{Name: name, Value: value})
		}
	}
	return ret
}

type BasicAuth struct {
	Username string
	Password string
}

// Request is a fully resolved request. A nil Body means no body is sent.
type Request struct {
	Method    string
	URL       string
	Headers   Headers
	BasicAuth *BasicAuth
	Body      []byte
}

type Response struct {
	Status  int
	Headers Headers
	Body    []byte
}

// ContentType returns the Content-Type header, or "" if there is none.
func (r *Response) ContentType() string {
	v, _ := r.Headers.Get("Content-Type")
	return v
}

// Sender is anything that can execute a Request.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Options configures an HTTPTransport.
type Options struct {
	// Timeout bounds each request, including reading the body. Zero means 15 seconds.
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero or less means unlimited.
	RequestsPerSecond float64
}

// HTTPTransport is a Sender based on net/http. It does not follow redirects, so that the
// status the sandbox returned is the status that is verified.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPTransport(opts Options) *HTTPTransport {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	if opts.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		hreq.Header.Add(h.Name, h.Value)
	}
	if req.BasicAuth != nil {
		hreq.SetBasicAuth(req.BasicAuth.Username, req.BasicAuth.Password)
	}

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:  resp.StatusCode,
		Headers: FromHTTPHeader(resp.Header),
		Body:    data,
	}, nil
}
