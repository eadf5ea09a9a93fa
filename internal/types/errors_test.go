package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(ErrCodeInternalStorage, "failed to save record", cause)

	if got := err.Error(); got != "internal_storage_error: failed to save record" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestAppError_ErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", NewAppError(ErrCodeUpstreamMessaging, "LINE down", nil))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed")
	}
	if appErr.Code != ErrCodeUpstreamMessaging {
		t.Errorf("Code = %s", appErr.Code)
	}
}

func TestNewAppErrorWithDetails(t *testing.T) {
	err := NewAppErrorWithDetails(ErrCodeValidationInvalidEvent, "bad", nil, map[string]any{"events[0].type": "required"})
	if err.Details["events[0].type"] != "required" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationInvalidEvent, http.StatusBadRequest},
		{ErrCodeValidationInvalidRecord, http.StatusBadRequest},
		{ErrCodeValidationRewardCatalog, http.StatusBadRequest},
		{ErrCodeValidationUnknownTask, http.StatusBadRequest},
		{ErrCodeNotFoundRecord, http.StatusNotFound},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamMessaging, http.StatusBadGateway},
		{ErrCodeUpstreamWeather, http.StatusBadGateway},
		{ErrCodeUpstreamUnavailable, http.StatusBadGateway},
		{ErrCodeUpstreamBadResponse, http.StatusBadGateway},
		{ErrCodeInternalStorage, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			if got := NewAppError(tt.code, "m", nil).HTTPStatus(); got != tt.want {
				t.Errorf("AppError.HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"storage", NewStorageError("load failed", errors.New("eof")), true},
		{"wrapped storage", fmt.Errorf("adjust: %w", NewStorageError("save failed", nil)), true},
		{"other app error", NewAppError(ErrCodeUpstreamMessaging, "x", nil), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStorageError(tt.err); got != tt.want {
				t.Errorf("IsStorageError = %v, want %v", got, tt.want)
			}
		})
	}
}
