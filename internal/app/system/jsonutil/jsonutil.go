// Package jsonutil provides helper functions for JSON API responses.
//
// Every successful API response is wrapped in a {"data": ...} envelope
// and every error body is {"message": ...}. API clients rely on that
// shape, so handlers must go through these helpers rather than encoding
// payloads directly.
package jsonutil

import (
	"encoding/json"
	"net/http"
)

// envelope is the success wrapper: {"data": <payload>}.
type envelope struct {
	Data any `json:"data"`
}

// JSON writes a raw JSON response with the given status code. Most
// handlers want Data/Created/Error instead; JSON exists for the rare
// response that is not enveloped (health checks, for example).
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Data writes a 200 OK response with payload wrapped as {"data": payload}.
func Data(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusOK, envelope{Data: payload})
}

// Created writes a 201 Created response with payload wrapped as {"data": payload}.
func Created(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusCreated, envelope{Data: payload})
}

// NoContent writes a 204 No Content response (no body).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
// The response body is {"message": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 Forbidden error response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 Conflict error response. Used for duplicate
// slugs and duplicate emails.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 Internal Server Error response.
// Do not expose internal details to clients - log the actual error
// separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// Decode reads and decodes JSON from the request body into v.
// Returns an error that can be passed to BadRequest if decoding fails.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
