package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/domain"
	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/pagination"
	"github.com/johnwards/leadsearch/internal/searchclient"
	"github.com/johnwards/leadsearch/internal/store"
	"github.com/johnwards/leadsearch/internal/vql"
)

// Error categories.
const (
	CategoryValidationError       = "VALIDATION_ERROR"
	CategoryInvalidCursor         = "INVALID_CURSOR"
	CategoryUnsupportedConversion = "UNSUPPORTED_CONVERSION"
	CategorySearchServiceError    = "SEARCH_SERVICE_ERROR"
	CategoryServiceUnavailable    = "SERVICE_UNAVAILABLE"
	CategoryObjectNotFound        = "OBJECT_NOT_FOUND"
	CategoryConflict              = "CONFLICT"
	CategoryInternalError         = "INTERNAL_ERROR"
)

// CodeMalformedJSON marks a request body that is not valid JSON.
const CodeMalformedJSON = "MALFORMED_JSON"

// Error is the JSON error envelope.
type Error struct {
	Status        string        `json:"status"`
	Message       string        `json:"message"`
	CorrelationID string        `json:"correlationId"`
	Category      string        `json:"category"`
	SubCategory   string        `json:"subCategory,omitempty"`
	Errors        []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single error within an Error.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	In      string `json:"in,omitempty"`
}

// NewNotFoundError creates a 404 error with the OBJECT_NOT_FOUND category.
func NewNotFoundError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryObjectNotFound,
	}
}

// NewValidationError creates a 400 error with the VALIDATION_ERROR category.
func NewValidationError(message, correlationID string, details []ErrorDetail) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryValidationError,
		Errors:        details,
	}
}

// NewConflictError creates a 409 error with the CONFLICT category.
func NewConflictError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryConflict,
	}
}

// NewInternalError creates a 500 error with the INTERNAL_ERROR category.
func NewInternalError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryInternalError,
	}
}

// WriteError writes an Error as a JSON response with the given HTTP status code.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *Error) {
	WriteJSON(w, statusCode, apiErr)
}

// WriteServiceError maps err onto a status code and error category and
// writes it. Unrecognised errors are logged and reported as 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := FromError(err, CorrelationID(r.Context()))
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	WriteError(w, status, apiErr)
}

// FromError returns the status code and error body for err.
func FromError(err error, corrID string) (int, *Error) {
	var (
		validation  *vql.ValidationError
		malformed   *vql.MalformedJSONError
		unsupported *converter.UnsupportedConversionError
		service     *searchclient.ServiceError
		unavailable *searchclient.UnavailableError
		storeErr    *store.ValidationError
	)

	switch {
	case errors.As(err, &validation):
		details := make([]ErrorDetail, len(validation.Errors))
		for i, fe := range validation.Errors {
			details[i] = ErrorDetail{Message: fe.Message, In: fe.Path}
		}
		return http.StatusBadRequest, NewValidationError("Invalid filter input", corrID, details)

	case errors.As(err, &malformed):
		return http.StatusBadRequest, NewValidationError("Invalid input JSON", corrID, []ErrorDetail{
			{Message: malformed.Error(), Code: CodeMalformedJSON},
		})

	case errors.As(err, &storeErr):
		return http.StatusBadRequest, NewValidationError(storeErr.Message, corrID, nil)

	case errors.Is(err, pagination.ErrInvalidCursor):
		return http.StatusBadRequest, &Error{
			Status:        "error",
			Message:       "Invalid pagination cursor",
			CorrelationID: corrID,
			Category:      CategoryInvalidCursor,
		}

	case errors.As(err, &unsupported):
		return http.StatusBadRequest, &Error{
			Status:        "error",
			Message:       unsupported.Error(),
			CorrelationID: corrID,
			Category:      CategoryUnsupportedConversion,
			Errors:        []ErrorDetail{{Message: unsupported.Error(), In: unsupported.Field}},
		}

	case errors.Is(err, domain.ErrUnknownEntity):
		return http.StatusNotFound, NewNotFoundError(err.Error(), corrID)

	case errors.Is(err, listing.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, NewNotFoundError("Object not found", corrID)

	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, NewConflictError(err.Error(), corrID)

	case errors.As(err, &service):
		status := http.StatusBadGateway
		if service.Status >= 400 && service.Status < 500 {
			status = http.StatusBadRequest
		}
		return status, &Error{
			Status:        "error",
			Message:       fmt.Sprintf("search service returned %d: %s", service.Status, service.Message),
			CorrelationID: corrID,
			Category:      CategorySearchServiceError,
		}

	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, &Error{
			Status:        "error",
			Message:       "Search service unavailable, try again later",
			CorrelationID: corrID,
			Category:      CategoryServiceUnavailable,
		}
	}
	return http.StatusInternalServerError, NewInternalError("Internal Server Error", corrID)
}
