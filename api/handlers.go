package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/middleware"
	"github.com/gorilla/mux"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Text string `json:"text"`
}

// updateTodoRequest keeps completed raw: only the JSON literal true counts.
type updateTodoRequest struct {
	Text      *string         `json:"text"`
	Completed json.RawMessage `json:"completed"`
}

type todoEnvelope struct {
	Todo *goTodo.Todo `json:"todo"`
}

type todosEnvelope struct {
	Todos []goTodo.Todo `json:"todos"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, token, err := h.engine.Register(r.Context(), goTodo.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(middleware.HeaderAuth, token)
	writeJSON(w, http.StatusOK, acct)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	acct, token, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(middleware.HeaderAuth, token)
	writeJSON(w, http.StatusOK, acct)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	acct, err := h.engine.CurrentAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := h.engine.Logout(r.Context(), p.AccountID, p.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	t, err := h.engine.CreateTodo(r.Context(), principal(r).AccountID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.ListTodos(r.Context(), principal(r).AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []goTodo.Todo{}
	}
	writeJSON(w, http.StatusOK, todosEnvelope{Todos: list})
}

func (h *handlers) getTodo(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.GetTodo(r.Context(), principal(r).AccountID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: t})
}

func (h *handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.DeleteTodo(r.Context(), principal(r).AccountID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: t})
}

func (h *handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	var req updateTodoRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	patch := goTodo.TodoPatch{Text: req.Text}
	if req.Completed != nil {
		completed := bytes.Equal(bytes.TrimSpace(req.Completed), []byte("true"))
		patch.Completed = &completed
	}

	t, err := h.engine.UpdateTodo(r.Context(), principal(r).AccountID, mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: t})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	latency, err := h.engine.Health(r.Context())
	if err != nil {
		h.logger.Warn("goTodo: health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"latency": latency.String(),
	})
}

// decode reads a JSON object body. An empty body decodes as {}.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body", goTodo.ErrValidation)
	}
	return nil
}

func principal(r *http.Request) *goTodo.Principal {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return &goTodo.Principal{}
	}
	return p
}
