package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	id := func(path ...string) TestID { return TestID{Path: path} }

	var none RegexFilters
	assert.True(t, none.AsFilter(id("todos", "get todos")))

	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("todos"))
	require.NoError(t, filters.MustNotMatch.Set("delete"))

	assert.True(t, filters.AsFilter(id("todos", "get todos")))
	assert.False(t, filters.AsFilter(id("todos", "delete created todo")))
	assert.False(t, filters.AsFilter(id("heartbeat", "get heartbeat")))
	assert.Equal(t, `"todos"`, filters.MustMatch.String())
}

func TestRegexListRejectsInvalidPattern(t *testing.T) {
	var list RegexList
	assert.Error(t, list.Set("("))
	assert.False(t, list.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("heartbeat"))

	var buf bytes.Buffer
	PrintFilterDescription(&buf, filters, 3, false)
	assert.Contains(t, buf.String(), `skip any matching "heartbeat"`)
	assert.Contains(t, buf.String(), "3 scenario(s) are disabled")

	buf.Reset()
	PrintFilterDescription(&buf, RegexFilters{}, 3, true)
	assert.Empty(t, buf.String())
}
