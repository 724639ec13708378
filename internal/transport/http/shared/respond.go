// Package shared centralizes the JSON envelope the frontend consumes: every
// API response is 200 OK with a boolean status field carrying semantic
// success, plus a human-readable message. Keeping it in one place ensures no
// handler leaks stack traces or SQL to the caller.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the uniform API envelope.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes any payload with the given HTTP status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes the 200/{status:true} envelope.
func Success(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Response{Status: true, Message: message})
}

// Failure writes the 200/{status:false} envelope. Semantic failures keep
// HTTP 200; the status field is the contract.
func Failure(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Response{Status: false, Message: message})
}

// Decode reads a JSON body into v. An empty body is reported as an error so
// handlers can return their own validation message.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}
