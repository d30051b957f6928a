package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carecall/internal/service"
	"carecall/internal/validation"
)

func errorBody(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response %q is not JSON: %v", recorder.Body.String(), err)
	}
	return body["error"]
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if got := errorBody(t, recorder); got != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", got)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation error",
			err:        validation.ValidationError{Field: "ageGroup", Message: "ageGroup must be Minor, Adult or Senior"},
			wantStatus: http.StatusBadRequest,
			wantError:  "ageGroup: ageGroup must be Minor, Adult or Senior",
		},
		{
			name:       "username taken",
			err:        service.ErrUsernameTaken,
			wantStatus: http.StatusConflict,
			wantError:  "username already taken",
		},
		{
			name:       "invalid credentials",
			err:        service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "invalid username or password",
		},
		{
			name:       "stale session",
			err:        service.ErrSessionNotFound,
			wantStatus: http.StatusUnauthorized,
			wantError:  ErrUnauthorized,
		},
		{
			name:       "member not found",
			err:        service.ErrMemberNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "member not found",
		},
		{
			name:       "wrapped family not found",
			err:        fmt.Errorf("failed to list members: %w", service.ErrFamilyNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "failed to list members: family not found",
		},
		{
			name:       "unknown error",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantError:  ErrInternalServerError,
		},
	}

	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			respondServiceError(recorder, tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if got := errorBody(t, recorder); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}
