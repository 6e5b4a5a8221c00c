// Package httpx writes JSON responses in the {"detail": ...} envelope the
// products and leads API uses.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Error represents the JSON error envelope.
type Error struct {
	Detail    string
	Status    int
	Errors    []string
	RequestID string
}

// NewError constructs a new Error with the provided parameters.
func NewError(detail string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Detail: sanitize(detail, 512),
		Status: status,
	}
}

// ValidationError is the 422 envelope listing field failures as "field: message".
func ValidationError(errs []string) Error {
	e := NewError("Validation Error", http.StatusUnprocessableEntity)
	e.Errors = make([]string, 0, len(errs))
	for _, msg := range errs {
		e.Errors = append(e.Errors, sanitize(msg, 512))
	}
	return e
}

// WithRequestID sets the request identifier on the error payload.
func (e Error) WithRequestID(id string) Error {
	e.RequestID = sanitize(id, 80)
	return e
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	requestID := err.RequestID
	if requestID == "" {
		requestID = sanitize(middleware.GetReqID(ctx), 80)
	}

	payload := map[string]any{
		"detail": err.Detail,
	}
	if len(err.Errors) > 0 {
		payload["errors"] = err.Errors
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}

	WriteJSON(w, status, payload)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
