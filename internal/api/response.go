package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/johnwards/leadsearch/internal/vql"
)

// maxBodyBytes caps request bodies read by DecodeBody.
const maxBodyBytes = 1 << 20

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// ReadBody returns the request body. Bodies over 1 MiB are rejected.
func ReadBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(b) > maxBodyBytes {
		return nil, vql.NewValidationError("", "request body too large")
	}
	return b, nil
}

// DecodeBody decodes a JSON object body into a map. An empty body decodes to
// an empty map. Syntax errors are reported as *vql.MalformedJSONError.
func DecodeBody(r *http.Request) (map[string]any, error) {
	b, err := ReadBody(r)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &vql.MalformedJSONError{Offset: syntaxErr.Offset, Err: err}
		}
		return nil, vql.NewValidationError("", "request body must be a JSON object")
	}
	return out, nil
}

// RequestURL rebuilds the absolute URL of r, used as the base for paging
// links.
func RequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
