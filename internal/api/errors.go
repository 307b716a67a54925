// Package api exposes the feed, circle and candidate operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/service"
)

const (
	ErrCodeValidation = "validation_error"
	ErrCodeNotFound   = "not_found"
	ErrCodeBadRequest = "bad_request"
	ErrCodeUpstream   = "upstream_error"
	ErrCodeInternal   = "internal_error"
)

// ErrorResponse is the body of every error reply:
// {"error": {"code": "...", "message": "..."}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, log *zap.Logger, status int, code, message string) {
	writeJSON(w, log, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps service errors to a status code. Anything the
// service does not classify is treated as a failure of the model gateway.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, log, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, log, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, log, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to marshal response", zap.Error(err))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Warn("failed to write response", zap.Error(err))
	}
}
