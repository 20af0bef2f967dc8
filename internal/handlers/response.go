package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pep299/news-summarizer/internal/pipeline"
	"github.com/pep299/news-summarizer/internal/search"
)

// Response represents a standard API response
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, response Response) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(response)
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, Response{
		Status: "error",
		Error:  message,
	})
}

// WriteSuccess writes a success response
func WriteSuccess(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusOK, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message)
}

// statusFor maps a run error to an HTTP status: invalid requests are the
// caller's fault, a total fetch failure is an upstream one.
func statusFor(err error) int {
	var validation *pipeline.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var fetch *search.FetchError
	if errors.As(err, &fetch) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
