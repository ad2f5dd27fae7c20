package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	goTodo "github.com/MrEthical07/goTodo"
)

type errorBody struct {
	Error string `json:"error"`
}

// StatusFor maps an engine error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, goTodo.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, goTodo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, goTodo.ErrLoginRateLimited),
		errors.Is(err, goTodo.ErrRegistrationRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, goTodo.ErrValidation),
		errors.Is(err, goTodo.ErrDuplicateEmail),
		errors.Is(err, goTodo.ErrInvalidCredentials),
		errors.Is(err, goTodo.ErrPersistence):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage strips store detail from persistence errors and hides
// anything unclassified.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, goTodo.ErrPersistence):
		return goTodo.ErrPersistence.Error()
	case errors.Is(err, goTodo.ErrValidation),
		errors.Is(err, goTodo.ErrUnauthorized),
		errors.Is(err, goTodo.ErrNotFound),
		errors.Is(err, goTodo.ErrDuplicateEmail),
		errors.Is(err, goTodo.ErrInvalidCredentials),
		errors.Is(err, goTodo.ErrLoginRateLimited),
		errors.Is(err, goTodo.ErrRegistrationRateLimited):
		return err.Error()
	default:
		return strings.ToLower(http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorBody{Error: publicMessage(err)})
}
