// Package server exposes the todo service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
)

// maxBodyBytes caps request bodies; larger bodies are rejected as invalid JSON.
const maxBodyBytes = 1 << 20

// Service is the part of todo.Service the handlers use.
type Service interface {
	List() ([]model.Todo, error)
	Get(id int) (model.Todo, error)
	Create(title string, completed bool) (model.Todo, error)
	Update(id int, p model.Patch) (model.Todo, error)
	Delete(id int) (model.Todo, error)
}

// RequestObserver is notified of every request before it is handled.
type RequestObserver interface {
	Observe(method, url string)
}

type server struct {
	svc Service
}

// New returns the HTTP handler for the todo API. obs may be nil.
func New(svc Service, obs RequestObserver) http.Handler {
	s := &server{svc: svc}

	r := mux.NewRouter().SkipClean(true)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	r.Methods(http.MethodGet).Path("/todos").HandlerFunc(s.list)
	r.Methods(http.MethodPost).Path("/todos").HandlerFunc(s.create)
	r.Methods(http.MethodGet).Path("/todos/{id}").HandlerFunc(s.get)
	r.Methods(http.MethodPut).Path("/todos/{id}").HandlerFunc(s.update)
	r.Methods(http.MethodDelete).Path("/todos/{id}").HandlerFunc(s.delete)

	// Wrapping the router rather than r.Use so unmatched routes are observed too.
	return withRequestLog(obs, r)
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	todos, err := s.svc.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.unknownID(w, r)
		return
	}
	t, err := s.svc.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *server) create(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	var title string
	if !b.blankTitle() {
		p, ok := b.patch()
		if !ok {
			writeText(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		title = *p.Title
	}
	completed := b.Completed != nil && *b.Completed

	t, err := s.svc.Create(title, completed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *server) update(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBody(w, r)
	if !ok {
		return
	}
	p, ok := b.patch()
	if !ok {
		writeText(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	id, ok := pathID(r)
	if !ok {
		if err := todo.ValidatePatch(p); err != nil {
			s.fail(w, r, err)
			return
		}
		s.unknownID(w, r)
		return
	}
	t, err := s.svc.Update(id, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type deleteResponse struct {
	Message string     `json:"message"`
	Todo    model.Todo `json:"todo"`
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.unknownID(w, r)
		return
	}
	t, err := s.svc.Delete(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: "Todo deleted", Todo: t})
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *todo.ValidationError
	switch {
	case errors.Is(err, todo.ErrNotFound):
		writeText(w, http.StatusNotFound, "Todo not found")
	case errors.As(err, &verr):
		writeText(w, http.StatusBadRequest, verr.Message)
	default:
		slog.Error("request failed", "method", r.Method, "url", r.URL.String(), "err", err)
		writeText(w, http.StatusInternalServerError, "Server error")
	}
}

// unknownID answers a request whose {id} is not an integer. The store is
// still read so storage failures surface as 500.
func (s *server) unknownID(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.List(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.fail(w, r, todo.ErrNotFound)
}

// pathID parses {id}. ok is false when it is not a base-10 integer.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// body is a decoded request payload. Title stays raw so create can tell
// falsy values from wrongly typed ones.
type body struct {
	Title     json.RawMessage `json:"title"`
	Completed *bool           `json:"completed"`
}

// blankTitle reports whether title is absent, null, false, 0 or "".
func (b body) blankTitle() bool {
	switch string(b.Title) {
	case "", "null", "false", `""`:
		return true
	}
	var n float64
	return json.Unmarshal(b.Title, &n) == nil && n == 0
}

// patch converts b to a model.Patch. ok is false when title is not a string.
func (b body) patch() (model.Patch, bool) {
	p := model.Patch{Completed: b.Completed}
	if len(b.Title) == 0 || string(b.Title) == "null" {
		return p, true
	}
	if err := json.Unmarshal(b.Title, &p.Title); err != nil {
		return model.Patch{}, false
	}
	return p, true
}

// decodeBody reads the whole body as a JSON object. On failure it has
// already answered 400.
func decodeBody(w http.ResponseWriter, r *http.Request) (body, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid JSON")
		return body{}, false
	}
	var b *body
	if err := json.Unmarshal(raw, &b); err != nil || b == nil {
		writeText(w, http.StatusBadRequest, "Invalid JSON")
		return body{}, false
	}
	return *b, true
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, "Not Found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
		writeText(w, http.StatusInternalServerError, "Server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		slog.Error("failed to write out", "err", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, msg); err != nil {
		slog.Error("failed to write out", "err", err)
	}
}
