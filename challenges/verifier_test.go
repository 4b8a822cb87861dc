package challenges

import (
	"errors"
	"testing"

	"github.com/apichallenges/contract-tests/transport"

	"github.com/stretchr/testify/assert"
)

func response(status int, contentType, body string) *transport.Response {
	resp := &transport.Response{Status: status, Body: []byte(body)}
	if contentType != "" {
		resp.Headers = transport.Headers{{Name: "Content-Type", Value: contentType}}
	}
	return resp
}

func TestVerifyStatus(t *testing.T) {
	s := &Scenario{Group: "todos", Name: "create todo", Expect: Expectation{Status: 201}}

	v := Verify(s, response(201, "", ""))
	assert.Equal(t, Verdict{ScenarioName: "todos/create todo", Passed: true, ActualStatus: 201, ExpectedStatus: 201}, v)

	v = Verify(s, response(400, "", ""))
	assert.False(t, v.Passed)
	assert.Equal(t, 400, v.ActualStatus)
	assert.Equal(t, "status mismatch: expected 201, got 400", v.Detail)
}

func TestVerifyContentType(t *testing.T) {
	s := &Scenario{Expect: Expectation{Status: 200, ContentType: "application/xml"}}

	assert.True(t, Verify(s, response(200, "application/xml; charset=utf-8", "<todos/>")).Passed)
	assert.True(t, Verify(s, response(200, "Application/XML", "<todos/>")).Passed)

	v := Verify(s, response(200, "application/json", "{}"))
	assert.False(t, v.Passed)
	assert.Contains(t, v.Detail, "content-type mismatch")

	v = Verify(s, response(200, "", ""))
	assert.Contains(t, v.Detail, "no Content-Type")
}

func TestVerifyRequiresPredicateEvenWhenStatusMatches(t *testing.T) {
	s := &Scenario{Expect: Expectation{Status: 200, BodyContains: "note"}}

	assert.True(t, Verify(s, response(200, "application/json", `{"note":""}`)).Passed)

	v := Verify(s, response(200, "application/json", `{}`))
	assert.False(t, v.Passed)
	assert.Equal(t, `body mismatch: expected body contains "note", got "{}"`, v.Detail)
}

func TestVerifyBodyHas(t *testing.T) {
	s := &Scenario{Expect: Expectation{Status: 201, BodyHas: []string{"id"}}}

	assert.True(t, Verify(s, response(201, "application/json", `{"id":12,"title":"t"}`)).Passed)
	assert.False(t, Verify(s, response(201, "application/json", `{"title":"t"}`)).Passed)

	v := Verify(s, response(201, "application/xml", `<todo><id>12</id></todo>`))
	assert.False(t, v.Passed)
	assert.Contains(t, v.Detail, "not valid JSON")
}

func TestVerifyNeverPanics(t *testing.T) {
	s := &Scenario{
		Expect: Expectation{Status: 200},
		Predicate: &BodyPredicate{
			Description: "explodes",
			Check:       func([]byte) (bool, error) { panic("boom") },
		},
	}
	var v Verdict
	assert.NotPanics(t, func() { v = Verify(s, response(200, "", "")) })
	assert.False(t, v.Passed)
	assert.Contains(t, v.Detail, "boom")

	s.Predicate = &BodyPredicate{
		Description: "fails",
		Check:       func([]byte) (bool, error) { return false, errors.New("cannot decode") },
	}
	v = Verify(s, response(200, "", ""))
	assert.False(t, v.Passed)
	assert.Contains(t, v.Detail, "cannot decode")
}
