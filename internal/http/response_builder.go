package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"teambudget/internal/backup"
	"teambudget/internal/core"
	"teambudget/internal/log"
	"teambudget/internal/store"
)

// HeaderPersistError is set on successful mutations whose snapshot could not
// be saved. The change is live in memory.
const HeaderPersistError = "X-Persist-Error"

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "message", msg)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backup.ErrInvalidBackup), errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidPackage),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, errInvalidField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondMutation finishes a mutating request. A persistence failure still
// counts as success because the store already applied the change; it is
// surfaced in HeaderPersistError. It returns false when a response was
// written for a real error.
func respondMutation(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrPersist) {
		w.Header().Set(HeaderPersistError, err.Error())
		return true
	}
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Mutation failed", err, log.ComponentHTTP, r.Method, log.LogFields{log.FieldPath: r.URL.Path})
		msg = "internal error"
	}
	writeError(w, r, status, msg)
	return false
}
