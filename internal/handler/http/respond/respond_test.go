package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		data         any
		expectedBody string
	}{
		{
			name:         "success with map",
			code:         http.StatusOK,
			data:         map[string]string{"message": "success"},
			expectedBody: `{"message":"success"}`,
		},
		{
			name:         "success with nil",
			code:         http.StatusNoContent,
			data:         nil,
			expectedBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.code, tt.data)

			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.expectedBody {
				t.Errorf("body = %q, want %q", got, tt.expectedBody)
			}
		})
	}
}

func TestError_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusUnprocessableEntity, "Could not extract readable content", "Try pasting the text directly")

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "Could not extract readable content" {
		t.Errorf("error = %v", body["error"])
	}
	if body["hint"] != "Try pasting the text directly" {
		t.Errorf("hint = %v", body["hint"])
	}
}

func TestError_OmitsEmptyHint(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "URL is required", "")

	if strings.Contains(w.Body.String(), "hint") {
		t.Errorf("body %q should not contain hint", w.Body.String())
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "app error passes message",
			err:      NewAppError(http.StatusRequestEntityTooLarge, "Page is too large", "", errors.New("body 9MB")),
			wantCode: http.StatusRequestEntityTooLarge,
			wantMsg:  "Page is too large",
		},
		{
			name:     "wrapped app error",
			err:      fmt.Errorf("handler: %w", NewAppError(http.StatusBadGateway, "Could not reach the site", "", nil)),
			wantCode: http.StatusBadGateway,
			wantMsg:  "Could not reach the site",
		},
		{
			name:     "plain error is hidden",
			err:      errors.New("pq: password authentication failed"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.err)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
			if body.Success {
				t.Error("success = true, want false")
			}
		})
	}
}

func TestSafeError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	SafeError(w, nil)
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewAppError(http.StatusBadRequest, "bad", "", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is(AppError, inner) = false")
	}
	if err.Error() != "inner" {
		t.Errorf("Error() = %q, want inner", err.Error())
	}
	if NewAppError(http.StatusBadRequest, "bad", "", nil).Error() != "bad" {
		t.Error("Error() without cause should return the user message")
	}
}
