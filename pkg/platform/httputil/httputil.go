// Package httputil centralizes HTTP response encoding so every service
// returns the same JSON envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "medigate/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into a JSON error response.
// Internal errors omit the description so storage details never reach
// clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de dErrors.Error
		if errors.As(err, &de) {
			resp.ErrorDescription = de.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
