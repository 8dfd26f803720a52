// Package httputil centralizes JSON response writing so every endpoint
// produces the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "anchorage/pkg/domain-errors"
)

// errorBody is the JSON error envelope shared by all endpoints.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded error into its HTTP status and envelope.
// Internal errors keep their description out of the response so backend
// details never leak to clients; everything needed for debugging is in the
// server log.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = dErrors.MessageOf(err)
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
