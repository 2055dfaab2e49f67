// Package respond provides utilities for sending HTTP responses in JSON format.
// Error bodies always have the shape {"error": ..., "success": false, "hint": ...}
// and never carry internal error text.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
	Hint    string `json:"hint,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes an error body with a user-safe message.
func Error(w http.ResponseWriter, code int, msg, hint string) {
	JSON(w, code, ErrorBody{Error: msg, Success: false, Hint: hint})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	Code    int    // HTTP status code
	UserMsg string // Message to display to users
	Hint    string // Optional actionable suggestion
	Err     error  // Internal error, logged only
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error, implementing the errors.Unwrap interface.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg, hint string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Hint: hint, Err: err}
}

// SafeError writes err as an error response.
// An *AppError contributes its code, message and hint; anything else becomes
// a 500 "internal server error" with the sanitized cause logged.
func SafeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		Error(w, appErr.Code, appErr.UserMsg, appErr.Hint)
		return
	}

	slog.Default().Error("internal server error",
		slog.Any("error", SanitizeError(err)))
	Error(w, http.StatusInternalServerError, "internal server error", "")
}
