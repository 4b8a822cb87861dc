package servicedef

// Request and response headers used by the sandbox.
const (
	HeaderChallenger = "X-Challenger"
	HeaderAuthToken  = "X-AUTH-TOKEN"
)

// Fixed endpoints used outside of the scenario catalog.
const (
	PathChallenger  = "/challenger"
	PathSecretToken = "/secret/token"
	PathTodos       = "/todos"
)

// Todo is the sandbox's main resource. The zero ID is omitted so that the same type can be
// used as a create payload.
type Todo struct {
	ID          int    `json:"id,omitzero" xml:"id,omitempty" yaml:"id,omitempty"`
	Title       string `json:"title,omitzero" xml:"title,omitempty" yaml:"title,omitempty"`
	DoneStatus  bool   `json:"doneStatus" xml:"doneStatus" yaml:"doneStatus"`
	Description string `json:"description,omitzero" xml:"description,omitempty" yaml:"description,omitempty"`
}

func (Todo) XMLElementName() string { return "todo" }

// TodoList is the body of GET /todos and GET /todos/{id}.
type TodoList struct {
	Todos []Todo `json:"todos" xml:"todo"`
}

func (TodoList) XMLElementName() string { return "todos" }

// Note is the auth-gated resource at /secret/note.
type Note struct {
	Note string `json:"note" xml:"note" yaml:"note"`
}

func (Note) XMLElementName() string { return "note" }

// Challenge is one entry of GET /challenges.
type Challenge struct {
	ID          string `json:"id" xml:"id"`
	Name        string `json:"name" xml:"name"`
	Description string `json:"description" xml:"description"`
	Status      bool   `json:"status" xml:"status"`
}

// ChallengeList is the body of GET /challenges.
type ChallengeList struct {
	Challenges []Challenge `json:"challenges" xml:"challenge"`
}

func (ChallengeList) XMLElementName() string { return "challenges" }
