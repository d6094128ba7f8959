package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithDetails writes a JSON error response carrying structured
// detail, e.g. the missing-field list from outreach validation.
func ErrorWithDetails(w http.ResponseWriter, status int, message string, details any) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

// ServerError writes a 500 response and logs the underlying error.
func ServerError(w http.ResponseWriter, err error) {
	log.Printf("[httputil] internal error: %v", err)
	JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
