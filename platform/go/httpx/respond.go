package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk-saas/platform/go/apperror"
)

// ErrorBody is the JSON error envelope shared by every handler.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON serializes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err through the apperror taxonomy to a stable HTTP status
// and serializes the machine code plus human message. Unexpected errors are
// logged and reported as a generic 500 without leaking internals.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr, ok := apperror.AsError(err); ok {
		WriteJSON(w, apperror.HTTPStatus(appErr.Kind), ErrorBody{Error: appErr.Message, Code: appErr.Code})
		return
	}
	if logger != nil {
		logger.Error("unexpected error", zap.Error(err))
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal error"})
}

// DecodeJSON enforces the JSON content type and decodes the body into v.
// Returns false after writing the error response when decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !hasJSONPrefix(ct) {
		WriteJSON(w, http.StatusUnsupportedMediaType, ErrorBody{Error: "content type must be application/json"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "malformed request body"})
		return false
	}
	return true
}

func hasJSONPrefix(ct string) bool {
	const prefix = "application/json"
	return len(ct) >= len(prefix) && ct[:len(prefix)] == prefix
}
