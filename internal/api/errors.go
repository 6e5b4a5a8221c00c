package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-success HTTP response from the service.
type Error struct {
	Status int
	// Detail is the server-provided explanation, if any.
	Detail string
	// Errors lists field-level validation failures ("field: message").
	Errors []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api: backend error (%d): %s", e.Status, msg)
}

// Message is the text suitable for showing to a user: the detail, followed by
// the validation errors when there are any.
func (e *Error) Message() string {
	if len(e.Errors) == 0 {
		return e.Detail
	}
	if e.Detail == "" {
		return strings.Join(e.Errors, "; ")
	}
	return e.Detail + ": " + strings.Join(e.Errors, "; ")
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
	Errors []string        `json:"errors"`
}

// validationItem is one entry of a list-shaped detail ({loc, msg}).
type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	apiErr := &Error{Status: resp.StatusCode}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
			apiErr.Detail = text
		}
		return apiErr
	}
	apiErr.Errors = payload.Errors

	if len(payload.Detail) == 0 {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = strings.TrimSpace(detail)
		return apiErr
	}
	var items []validationItem
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		apiErr.Detail = "Validation Error"
		for _, item := range items {
			apiErr.Errors = append(apiErr.Errors, formatValidationItem(item))
		}
	}
	return apiErr
}

func formatValidationItem(item validationItem) string {
	if len(item.Loc) == 0 {
		return item.Msg
	}
	return fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg)
}
