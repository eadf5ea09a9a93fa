package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"smokebuddy/internal/types"
)

// maxRequestBodySize caps request bodies. LINE webhook batches are far
// smaller.
const maxRequestBodySize = 1 << 20

// APIResponse is the envelope of successful responses.
type APIResponse struct {
	Data any `json:"data,omitempty"`
}

// APIErrorResponse is the envelope of error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-visible part of an error.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON writes data with status. If data cannot be encoded the client gets a
// 500 envelope instead.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = writeJSON(w, internalError(r, "response could not be encoded"))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Data wraps data in the success envelope.
func Data(w http.ResponseWriter, r *http.Request, status int, data any) {
	JSON(w, r, status, APIResponse{Data: data})
}

// Error renders err. Only *types.AppError content is shown to clients;
// other errors collapse to a generic internal error.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		JSON(w, r, http.StatusInternalServerError, internalError(r, "an unexpected error occurred"))
		return
	}
	JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{Error: ErrorDetail{
		Code:      string(appErr.Code),
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: types.GetRequestID(r.Context()),
	}})
}

func internalError(r *http.Request, msg string) APIErrorResponse {
	return APIErrorResponse{Error: ErrorDetail{
		Code:      string(types.ErrCodeInternalUnexpected),
		Message:   msg,
		RequestID: types.GetRequestID(r.Context()),
	}}
}

// DecodeJSON decodes a single JSON value from a size-capped body. Unknown
// fields pass through since LINE adds event fields over time.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(dst); err != nil {
		return decodeFailure(err)
	}
	if dec.More() {
		return invalidJSON("body holds more than one JSON value", nil)
	}
	return nil
}

func invalidJSON(msg string, err error) *types.AppError {
	return types.NewAppError(types.ErrCodeValidationInvalidJSON, msg, err)
}

func decodeFailure(err error) *types.AppError {
	var (
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
		syntaxErr *json.SyntaxError
	)
	if errors.As(err, &typeErr) {
		return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidJSON, "field has the wrong type", err,
			map[string]any{"field": typeErr.Field, "expected": typeErr.Type.String()})
	}
	if errors.As(err, &sizeErr) {
		return invalidJSON("body exceeds 1MB", err)
	}
	if errors.As(err, &syntaxErr) {
		return invalidJSON("body is not valid JSON", err)
	}
	switch {
	case errors.Is(err, io.EOF):
		return invalidJSON("body is empty", err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return invalidJSON("body ends mid-value", err)
	}
	return invalidJSON("body could not be decoded", err)
}
