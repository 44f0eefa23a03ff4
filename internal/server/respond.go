package server

import (
	"encoding/json"
	"net/http"

	"github.com/portgraph/portgraph/pkg/errors"
)

// errorResponse is the JSON error body returned by all endpoints.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured error codes to HTTP statuses. Unknown errors
// become 500s with a generic message so internals do not leak.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidBoard,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat, errors.ErrCodeParse,
		errors.ErrCodeNodeCollision, errors.ErrCodeSysrootMismatch, errors.ErrCodeTooManyRoots:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeExtract, errors.ErrCodeStorage, errors.ErrCodeRender:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
