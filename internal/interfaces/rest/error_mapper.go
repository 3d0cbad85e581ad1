package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindGateway:      http.StatusBadGateway,
	domain.KindIntegrityGap: http.StatusInternalServerError,
	domain.KindInternal:     http.StatusInternalServerError,
}

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	if status, ok := kindStatus[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else if apiErr, ok := data.(*APIError); ok {
		response.Error = apiErr
	}

	_ = json.NewEncoder(w).Encode(response)
}

// WriteError maps domain errors to HTTP responses. Internal failures are
// logged and reported without their cause.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := StatusFor(err)
	apiErr := &APIError{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		apiErr.Code = domainErr.Code
		apiErr.Message = domainErr.Message
	}

	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			"status", status,
			"code", apiErr.Code,
			"error", err)
	}

	WriteJSON(w, status, apiErr)
}
