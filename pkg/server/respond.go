package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/matzehuels/cellgen/pkg/errors"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func errorBody(code, msg string) errorResponse {
	return errorResponse{Error: apiError{Code: code, Message: msg}}
}

// StatusCode maps an error code to an HTTP status.
func StatusCode(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidPlan, errors.ErrCodeInvalidTechnology:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeTechnologyNotFound, errors.ErrCodeLayoutNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		code, msg = string(errors.ErrCodeInternal), "internal error"
	}
	writeJSON(w, status, errorBody(code, msg))
}

func errNotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

func errBadRequest(cause error, format string, args ...any) error {
	if cause == nil {
		return errors.New(errors.ErrCodeInvalidInput, format, args...)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, cause, "%s: %v", fmt.Sprintf(format, args...), cause)
}
