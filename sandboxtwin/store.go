package sandboxtwin

import (
	"sort"
	"strings"
	"sync"

	"github.com/apichallenges/contract-tests/servicedef"

	"github.com/google/uuid"
)

// SeedTodoCount is the number of todos every new challenger starts with.
const SeedTodoCount = 10

// Store holds the state of every challenger in memory.
type Store struct {
	mu          sync.Mutex
	challengers map[string]*challenger
}

type challenger struct {
	todos  map[int]servicedef.Todo
	nextID int
	token  string
	note   string
}

func NewStore() *Store {
	return &Store{challengers: make(map[string]*challenger)}
}

// CreateChallenger starts a new isolated state and returns its id.
func (s *Store) CreateChallenger() string {
	c := &challenger{
		todos:  make(map[int]servicedef.Todo),
		nextID: 1,
		token:  strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	for i := 0; i < SeedTodoCount; i++ {
		c.add(servicedef.Todo{
			Title:      seedTitles[i%len(seedTitles)],
			DoneStatus: i%4 == 3,
		})
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.challengers[id] = c
	s.mu.Unlock()
	return id
}

var seedTitles = []string{
	"scan paperwork",
	"file paperwork",
	"process payments",
	"escalate late payments",
	"pay invoices",
	"process payroll",
	"train staff",
	"schedule meeting",
	"tidy meeting room",
	"install webcam",
}

// Known reports whether id was issued by CreateChallenger.
func (s *Store) Known(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.challengers[id]
	return ok
}

// Token returns the secret token of a challenger.
func (s *Store) Token(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return "", false
	}
	return c.token, true
}

// ListTodos returns the challenger's todos in id order, optionally only those with the given
// done status.
func (s *Store) ListTodos(id string, done *bool) []servicedef.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return nil
	}
	ret := make([]servicedef.Todo, 0, len(c.todos))
	for _, t := range c.todos {
		if done == nil || t.DoneStatus == *done {
			ret = append(ret, t)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func (s *Store) GetTodo(id string, todoID int) (servicedef.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return servicedef.Todo{}, false
	}
	t, ok := c.todos[todoID]
	return t, ok
}

func (s *Store) CreateTodo(id string, t servicedef.Todo) servicedef.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return servicedef.Todo{}
	}
	return c.add(t)
}

// UpdateTodo applies patch to an existing todo and returns the result.
func (s *Store) UpdateTodo(id string, todoID int, patch todoPatch) (servicedef.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return servicedef.Todo{}, false
	}
	t, ok := c.todos[todoID]
	if !ok {
		return servicedef.Todo{}, false
	}
	patch.applyTo(&t)
	c.todos[todoID] = t
	return t, true
}

func (s *Store) DeleteTodo(id string, todoID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challengers[id]
	if !ok {
		return false
	}
	if _, ok := c.todos[todoID]; !ok {
		return false
	}
	delete(c.todos, todoID)
	return true
}

func (s *Store) Note(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.challengers[id]; ok {
		return c.note
	}
	return ""
}

func (s *Store) SetNote(id, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.challengers[id]; ok {
		c.note = note
	}
}

func (c *challenger) add(t servicedef.Todo) servicedef.Todo {
	t.ID = c.nextID
	c.nextID++
	c.todos[t.ID] = t
	return t
}
