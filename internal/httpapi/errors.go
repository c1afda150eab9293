package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TheAryan77/soyabean-api/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// apiError is a client-facing failure: the message is safe to return as is.
type apiError struct {
	status int
	msg    string
	// reason labels the rejection metric; empty for non-client errors
	reason string
}

func (e *apiError) Error() string   { return e.msg }
func (e *apiError) StatusCode() int { return e.status }

func badRequest(reason, msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, msg: msg, reason: reason}
}

const internalErrorMessage = "Internal server error while processing image"

var errModelUnavailable = &apiError{
	status: http.StatusServiceUnavailable,
	msg:    "Model not loaded. Please ensure the model file exists and is valid.",
	reason: "model_unavailable",
}

// statusOf maps err to a status code: HTTPError values carry their own,
// anything else is a 500.
func statusOf(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}
