package challenges

import (
	"fmt"
)

type BootstrapReason string

const (
	MissingSessionHeader BootstrapReason = "missing_session_header"
	MalformedTokenHeader BootstrapReason = "malformed_token_header"
	UnexpectedStatus     BootstrapReason = "unexpected_status"
	BootstrapTransport   BootstrapReason = "transport"
)

// BootstrapError means no session could be established. It is the only error that stops a run.
type BootstrapError struct {
	Reason BootstrapReason
	Step   string
	Err    error
}

func (e *BootstrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bootstrap failed at %s (%s): %s", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("bootstrap failed at %s (%s)", e.Step, e.Reason)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

type BuildReason string

const (
	UnresolvedReference BuildReason = "unresolved_reference"
	UnsetSessionValue   BuildReason = "unset_session_value"
	InvalidBody         BuildReason = "invalid_body"
)

// BuildError means a scenario could not be turned into a concrete request.
type BuildError struct {
	Reason BuildReason
	Ref    string
	Err    error
}

func (e *BuildError) Error() string {
	switch {
	case e.Ref != "" && e.Err != nil:
		return fmt.Sprintf("cannot build request (%s %q): %s", e.Reason, e.Ref, e.Err)
	case e.Ref != "":
		return fmt.Sprintf("cannot build request (%s %q)", e.Reason, e.Ref)
	case e.Err != nil:
		return fmt.Sprintf("cannot build request (%s): %s", e.Reason, e.Err)
	default:
		return fmt.Sprintf("cannot build request (%s)", e.Reason)
	}
}

func (e *BuildError) Unwrap() error { return e.Err }

// TransportError wraps a failure to get any response at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// AssertionMismatch is the normal outcome of a failing scenario.
type AssertionMismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (e *AssertionMismatch) Error() string {
	return fmt.Sprintf("%s mismatch: expected %s, got %s", e.Field, e.Expected, e.Actual)
}
