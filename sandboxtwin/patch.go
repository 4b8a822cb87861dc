package sandboxtwin

import (
	"errors"
	"strings"

	"github.com/apichallenges/contract-tests/servicedef"
)

// todoPatch is a create or amend payload. Absent fields are nil; a field of the wrong type
// fails decoding.
type todoPatch struct {
	Title       *string `json:"title" xml:"title"`
	DoneStatus  *bool   `json:"doneStatus" xml:"doneStatus"`
	Description *string `json:"description" xml:"description"`
}

func (p todoPatch) validateCreate() error {
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		return errors.New("title is mandatory")
	}
	return nil
}

func (p todoPatch) applyTo(t *servicedef.Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DoneStatus != nil {
		t.DoneStatus = *p.DoneStatus
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}
