// Package sandboxtwin is an in-memory stand-in for the API Challenges sandbox. It implements
// the documented contract closely enough for the whole scenario catalog to run in go test.
package sandboxtwin

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/apichallenges/contract-tests/codec"
	"github.com/apichallenges/contract-tests/servicedef"

	"github.com/go-chi/chi/v5"
)

const headerAuthorization = "Authorization"

// Options configures a Twin. The zero value accepts admin/password.
type Options struct {
	Username string
	Password string
}

// Twin serves the sandbox API.
type Twin struct {
	store    *Store
	username string
	password string
}

func New(opts Options) *Twin {
	t := &Twin{store: NewStore(), username: opts.Username, password: opts.Password}
	if t.username == "" && t.password == "" {
		t.username, t.password = "admin", "password"
	}
	return t
}

func (t *Twin) Store() *Store { return t.store }

// Handler returns the twin's router.
func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "could not find "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Post(servicedef.PathChallenger, t.createChallenger)

	r.Group(func(r chi.Router) {
		r.Use(t.requireChallenger)
		r.Use(negotiate)

		r.Get("/challenges", t.listChallenges)

		r.Get(servicedef.PathTodos, t.listTodos)
		r.Head(servicedef.PathTodos, t.listTodos)
		r.Post(servicedef.PathTodos, t.createTodo)
		r.Options(servicedef.PathTodos, allow("OPTIONS, GET, HEAD, POST"))

		r.Get(servicedef.PathTodos+"/{id}", t.getTodo)
		r.Head(servicedef.PathTodos+"/{id}", t.getTodo)
		r.Post(servicedef.PathTodos+"/{id}", t.amendTodo)
		r.Delete(servicedef.PathTodos+"/{id}", t.deleteTodo)
		r.Options(servicedef.PathTodos+"/{id}", allow("OPTIONS, GET, HEAD, POST, DELETE"))

		r.Get("/heartbeat", status(http.StatusNoContent))
		r.Head("/heartbeat", status(http.StatusNoContent))
		r.Patch("/heartbeat", status(http.StatusInternalServerError))
		r.Trace("/heartbeat", status(http.StatusNotImplemented))

		r.Post(servicedef.PathSecretToken, t.createToken)
		r.Get("/secret/note", t.requireToken(t.getNote))
		r.Post("/secret/note", t.requireToken(t.postNote))
	})
	return r
}

type contextKey int

const (
	challengerKey contextKey = iota
	formatKey
)

func (t *Twin) createChallenger(w http.ResponseWriter, r *http.Request) {
	id := t.store.CreateChallenger()
	w.Header().Set("Location", "/gui/challenges/"+id)
	w.Header().Set(servicedef.HeaderChallenger, id)
	w.WriteHeader(http.StatusCreated)
}

func (t *Twin) requireChallenger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(servicedef.HeaderChallenger)
		if !t.store.Known(id) {
			writeError(w, r, http.StatusUnauthorized, "unknown challenger "+strconv.Quote(id))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), challengerKey, id)))
	})
}

// negotiate picks the response format from Accept before anything else runs, so that a 406
// never has side effects.
func negotiate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format, ok := acceptedFormat(r.Header.Values("Accept"))
		if !ok {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formatKey, format)))
	})
}

// acceptedFormat returns the first supported media range in the order listed. Quality values
// are not considered. No Accept header, or a wildcard, means JSON.
func acceptedFormat(values []string) (codec.Format, bool) {
	var ranges []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ranges = append(ranges, part)
			}
		}
	}
	if len(ranges) == 0 {
		return codec.JSON, true
	}
	for _, mr := range ranges {
		mediaType := strings.TrimSpace(strings.SplitN(mr, ";", 2)[0])
		if mediaType == "*/*" || mediaType == "application/*" {
			return codec.JSON, true
		}
		if f, ok := codec.FormatOf(mr); ok {
			return f, true
		}
	}
	return codec.None, false
}

func challengerID(r *http.Request) string {
	id, _ := r.Context().Value(challengerKey).(string)
	return id
}

func responseFormat(r *http.Request) codec.Format {
	if f, ok := r.Context().Value(formatKey).(codec.Format); ok {
		return f
	}
	return codec.JSON
}

func (t *Twin) listChallenges(w http.ResponseWriter, r *http.Request) {
	write(w, r, http.StatusOK, servicedef.ChallengeList{Challenges: challengeList})
}

var challengeList = []servicedef.Challenge{
	{ID: "01", Name: "POST /challenger (201)", Description: "Issue a POST request on the /challenger end point"},
	{ID: "02", Name: "GET /challenges (200)", Description: "Issue a GET request on the /challenges end point"},
	{ID: "03", Name: "GET /todos (200)", Description: "Issue a GET request on the /todos end point"},
	{ID: "04", Name: "GET /todo (404)", Description: "Issue a GET request on the /todo end point should 404"},
	{ID: "05", Name: "GET /heartbeat (204)", Description: "Issue a GET request on the /heartbeat end point"},
	{ID: "06", Name: "POST /secret/token (201)", Description: "Issue a POST request with basic auth to get a token"},
	{ID: "07", Name: "GET /secret/note (200)", Description: "Issue a GET request with a valid X-AUTH-TOKEN"},
}

func (t *Twin) listTodos(w http.ResponseWriter, r *http.Request) {
	var done *bool
	if s := r.URL.Query().Get("doneStatus"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "doneStatus filter must be true or false")
			return
		}
		done = &b
	}
	write(w, r, http.StatusOK, servicedef.TodoList{Todos: t.store.ListTodos(challengerID(r), done)})
}

func (t *Twin) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := t.findTodo(w, r)
	if !ok {
		return
	}
	write(w, r, http.StatusOK, servicedef.TodoList{Todos: []servicedef.Todo{todo}})
}

func (t *Twin) createTodo(w http.ResponseWriter, r *http.Request) {
	var patch todoPatch
	if !readBody(w, r, &patch) {
		return
	}
	if err := patch.validateCreate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var todo servicedef.Todo
	patch.applyTo(&todo)
	todo = t.store.CreateTodo(challengerID(r), todo)
	w.Header().Set("Location", servicedef.PathTodos+"/"+strconv.Itoa(todo.ID))
	write(w, r, http.StatusCreated, todo)
}

func (t *Twin) amendTodo(w http.ResponseWriter, r *http.Request) {
	existing, ok := t.findTodo(w, r)
	if !ok {
		return
	}
	var patch todoPatch
	if !readBody(w, r, &patch) {
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		writeError(w, r, http.StatusBadRequest, "title must not be empty")
		return
	}
	todo, _ := t.store.UpdateTodo(challengerID(r), existing.ID, patch)
	write(w, r, http.StatusOK, todo)
}

func (t *Twin) deleteTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := t.findTodo(w, r)
	if !ok {
		return
	}
	t.store.DeleteTodo(challengerID(r), todo.ID)
	w.WriteHeader(http.StatusOK)
}

func (t *Twin) findTodo(w http.ResponseWriter, r *http.Request) (servicedef.Todo, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil {
		if todo, ok := t.store.GetTodo(challengerID(r), id); ok {
			return todo, true
		}
	}
	writeError(w, r, http.StatusNotFound, "could not find an instance with "+r.URL.Path)
	return servicedef.Todo{}, false
}

func (t *Twin) createToken(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok || !equal(username, t.username) || !equal(password, t.password) {
		w.Header().Set("WWW-Authenticate", `Basic realm="User Visible Realm"`)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	token, _ := t.store.Token(challengerID(r))
	w.Header().Set(servicedef.HeaderAuthToken, token)
	w.WriteHeader(http.StatusCreated)
}

// requireToken accepts the secret token in X-AUTH-TOKEN or as a bearer token. A missing token
// is 401 and a wrong one is 403.
func (t *Twin) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(servicedef.HeaderAuthToken)
		if presented == "" {
			if auth := r.Header.Get(headerAuthorization); strings.HasPrefix(auth, "Bearer ") {
				presented = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if presented == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token, _ := t.store.Token(challengerID(r))
		if !equal(presented, token) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (t *Twin) getNote(w http.ResponseWriter, r *http.Request) {
	write(w, r, http.StatusOK, servicedef.Note{Note: t.store.Note(challengerID(r))})
}

func (t *Twin) postNote(w http.ResponseWriter, r *http.Request) {
	var note servicedef.Note
	if !readBody(w, r, &note) {
		return
	}
	t.store.SetNote(challengerID(r), note.Note)
	write(w, r, http.StatusOK, note)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func allow(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", methods)
		w.WriteHeader(http.StatusOK)
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

// readBody decodes the request body according to its Content-Type, answering 415 or 400 itself
// when it cannot.
func readBody(w http.ResponseWriter, r *http.Request, v any) bool {
	format := codec.JSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		f, ok := codec.FormatOf(ct)
		if !ok {
			writeError(w, r, http.StatusUnsupportedMediaType, "unsupported Content-Type "+strconv.Quote(ct))
			return false
		}
		format = f
	}
	data, err := io.ReadAll(r.Body)
	if err == nil && len(data) == 0 {
		err = errors.New("request body is empty")
	}
	if err == nil {
		err = codec.Decode(data, format, v)
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read "+format.String()+" body: "+err.Error())
		return false
	}
	return true
}

type errorResponse struct {
	ErrorMessages []string `json:"errorMessages" xml:"errorMessage"`
}

func (errorResponse) XMLElementName() string { return "errors" }

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, errorResponse{ErrorMessages: []string{message}})
}

func write(w http.ResponseWriter, r *http.Request, status int, v any) {
	format := responseFormat(r)
	data, err := codec.Encode(v, format)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.MediaType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}
