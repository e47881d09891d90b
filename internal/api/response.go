package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/financaspro/financas/internal/calculations"
	"github.com/financaspro/financas/internal/finance"
	"github.com/financaspro/financas/internal/store"
	"github.com/financaspro/financas/internal/tools"
)

// Response is a successful API response.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is an error API response.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes reported in ErrorResponse.ErrorCode.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "WRITE_CONFLICT"
	ErrCodeUnavailable  = "STORE_UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Code: 0, Data: data})
}

func writeSuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Code: 0, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// writeErrorResponse maps err to an HTTP status and writes it.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if rec, ok := w.(interface{ noteFailure(string) }); ok {
		rec.noteFailure(err.Error())
	}
	writeJSON(w, status, ErrorResponse{
		Code:      status,
		Message:   err.Error(),
		ErrorCode: code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, tools.ErrInvalidParams), errors.Is(err, calculations.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case errors.Is(err, finance.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, store.ErrWriteConflict):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
