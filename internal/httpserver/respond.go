package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/ads"
)

// envelope is the uniform response body: code mirrors the HTTP status.
type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// pagination describes one page of a listing.
type pagination struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Pages    int64 `json:"pages"`
}

// listPayload is the data block for list endpoints.
type listPayload struct {
	List       interface{} `json:"list"`
	Pagination pagination  `json:"pagination"`
}

func newListPayload(list interface{}, total int64, page, pageSize int) listPayload {
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return listPayload{
		List: list,
		Pagination: pagination{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Pages:    pages,
		},
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Code:    status,
		Message: message,
		Data:    data,
	})
}

// fail maps service errors onto the HTTP taxonomy. Unexpected errors
// are logged server-side and reported with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case ads.IsValidation(err):
		s.respond(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ads.ErrInvalidCredentials):
		s.respond(w, http.StatusUnauthorized, "invalid email/phone or password", nil)
	case errors.Is(err, ads.ErrAccountDisabled):
		s.respond(w, http.StatusForbidden, "account is disabled", nil)
	case errors.Is(err, ads.ErrNotFound):
		s.respond(w, http.StatusNotFound, "resource not found", nil)
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.respond(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.respond(w, http.StatusMethodNotAllowed, "method not allowed", nil)
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.respond(w, http.StatusBadRequest, message, nil)
}
