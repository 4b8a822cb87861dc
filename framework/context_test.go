package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "started "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	if failed {
		r.events = append(r.events, "failed "+id.String())
	} else {
		r.events = append(r.events, "passed "+id.String())
	}
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skipped "+id.String()+" ("+reason+")")
}

func TestRunRecordsOnlyScenarios(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Group("todos", func(c *Context) {
			c.Run("get todos", func(c *Context) {})
			c.Run("create todo", func(c *Context) {
				c.Errorf("expected status %d, got %d", 201, 400)
			})
		})
	})

	require.Len(t, results.Tests, 2)
	assert.Equal(t, "todos/get todos", results.Tests[0].TestID.String())
	assert.Equal(t, "todos/create todo", results.Tests[1].TestID.String())
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "todos/create todo", results.Failures[0].TestID.String())
	assert.False(t, results.OK())

	assert.Equal(t, []string{
		"started todos/get todos",
		"passed todos/get todos",
		"started todos/create todo",
		"error todos/create todo: expected status 201, got 400",
		"failed todos/create todo",
	}, logger.events)
}

func TestRequireFailureStopsScenario(t *testing.T) {
	reached := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("stops", func(c *Context) {
			require.NoError(c, errors.New("boom"))
			reached = true
		})
		c.Run("continues", func(c *Context) {})
	})

	assert.False(t, reached)
	require.Len(t, results.Tests, 2)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "stops", results.Failures[0].TestID.String())
}

func TestUnexpectedPanicIsRecorded(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("oops")
		})
	})

	require.Len(t, results.Failures, 1)
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
}

func TestSkipWithReason(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("unverified", func(c *Context) {
			c.SkipWithReason("not verified against the live sandbox")
			t.Error("should not get here")
		})
	})

	assert.True(t, results.OK())
	require.Len(t, results.Tests, 1)
	assert.True(t, results.Tests[0].Skipped)
	assert.Equal(t, "not verified against the live sandbox", results.Tests[0].SkipReason)
	assert.Contains(t, logger.events, "skipped unverified (not verified against the live sandbox)")
}

func TestFilterSkipsScenarioWithoutRunningIt(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^secret note/"))

	var ran []string
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Group("todos", func(c *Context) {
			c.Run("get todos", func(c *Context) { ran = append(ran, c.ID().String()) })
		})
		c.Group("secret note", func(c *Context) {
			c.Run("get note", func(c *Context) { ran = append(ran, c.ID().String()) })
		})
	})

	assert.Equal(t, []string{"secret note/get note"}, ran)
	passed, failed, skipped := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, skipped)
}

func TestDebugOutputIsCapturedPerScenario(t *testing.T) {
	var captured CapturedOutput
	logger := &capturingTestLogger{onFinish: func(output CapturedOutput) { captured = output }}
	Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Debug("sending %s", "GET /todos")
			c.DebugLogger().Printf("got %d", 200)
		})
	})

	require.Len(t, captured, 2)
	assert.Equal(t, "sending GET /todos", captured[0].Message)
	assert.Equal(t, "got 200", captured[1].Message)
}

type capturingTestLogger struct {
	recordingTestLogger
	onFinish func(CapturedOutput)
}

func (c *capturingTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	c.onFinish(debugOutput)
}

func TestTestIDPlusDoesNotShareStorage(t *testing.T) {
	base := TestID{Path: make([]string, 1, 10)}
	base.Path[0] = "group"
	a := base.Plus("a")
	b := base.Plus("b")
	assert.Equal(t, "group/a", a.String())
	assert.Equal(t, "group/b", b.String())
}
