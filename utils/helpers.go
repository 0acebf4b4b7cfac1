package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opsdeck/cheatsheets/constants"
)

// ============================================================================
// STANDARDIZED ERROR HELPERS
// ============================================================================

// ErrorWrapper prefixes errors with the component they came from.
type ErrorWrapper struct {
	context string
}

func NewErrorWrapper(context string) *ErrorWrapper {
	return &ErrorWrapper{context: context}
}

// Wrapf wraps err with context and a formatted message. A nil err stays nil.
func (e *ErrorWrapper) Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", e.context, fmt.Sprintf(format, args...), err)
}

// Failf creates a new error with context and formatting.
func (e *ErrorWrapper) Failf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", e.context, fmt.Sprintf(format, args...))
}

// ============================================================================
// STANDARDIZED HTTP HELPERS
// ============================================================================

// HTTPErrorResponse is the JSON body of every API error.
type HTTPErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// WriteHTTPError writes a JSON error body with the given status.
func WriteHTTPError(w http.ResponseWriter, message string, code int) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(HTTPErrorResponse{Error: message, Code: code}); err != nil {
		Error("%s: %v", constants.LogFailedEncodeJSON, err)
	}
}

// WriteHTTPJSON writes v as JSON with status 200.
func WriteHTTPJSON(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		WriteHTTPError(w, "Failed to encode response", http.StatusInternalServerError)
		return err
	}
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	_, err = w.Write(append(data, '\n'))
	return err
}

// MarshalJSONIndent marshals with the project-wide indent.
func MarshalJSONIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", constants.JSONIndent)
}

// ============================================================================
// STANDARDIZED CONTEXT HELPERS
// ============================================================================

// ContextValue safely extracts a typed value from context.
func ContextValue[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	value := ctx.Value(key)
	if value == nil {
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}
