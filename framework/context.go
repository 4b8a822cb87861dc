package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the scope of one group or scenario in a contract test run. It implements the
// same basic failure methods as Go's *testing.T, so assert and require can be used with it.
type Context struct {
	env         *environment
	id          TestID
	leaf        bool
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run creates the root Context and runs action in it. The returned Results contain one entry
// per scenario that was started with Context.Run.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		if !c.leaf && !c.failed {
			return
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped, SkipReason: c.skipReason}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

// ID returns the path of this Context within the run.
func (c *Context) ID() TestID {
	return c.id
}

// Group runs action in a named child Context that groups scenarios. Groups are not subject
// to the filter and are not reported as tests of their own, unless they panic.
func (c *Context) Group(name string, action func(*Context)) {
	c1 := &Context{
		id:  c.id.Plus(name),
		env: c.env,
	}
	c1.run(action)
}

// Run runs action as a single scenario. It is skipped without running if the run's filter
// excludes its ID.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		const reason = "excluded by filter parameters"
		result := TestResult{TestID: id, Skipped: true, SkipReason: reason}
		c.env.results.Tests = append(c.env.results.Tests, result)
		c.env.testLogger.TestSkipped(id, reason)
		return
	}
	c1 := &Context{
		id:   id,
		env:  c.env,
		leaf: true,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf records a failure without stopping the scenario.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow stops the scenario immediately. The failure must already have been recorded.
func (c *Context) FailNow() {
	panic(c)
}

// Failed reports whether a failure has been recorded.
func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to this scenario's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
