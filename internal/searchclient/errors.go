package searchclient

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ServiceError is a response from the search service with a non-2xx status
// or an explicit success=false. It is never retried.
type ServiceError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("search service %s %s: status %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// UnavailableError is returned when every attempt failed at the transport
// level.
type UnavailableError struct {
	Method   string
	Endpoint string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("search service %s %s unavailable after %d attempt(s): %v", e.Method, e.Endpoint, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// errorDetail pulls the provider's message out of an error body.
func errorDetail(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"detail", "message", "error"} {
			v := gjson.GetBytes(body, key)
			switch {
			case v.Type == gjson.String && v.Str != "":
				return v.Str
			case v.IsArray() || v.IsObject():
				return v.Raw
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected response"
}
