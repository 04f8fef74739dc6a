package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sngm3741/store-directory/api/internal/graphql"
	"github.com/sngm3741/store-directory/api/internal/public/application"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.SugaredLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Errorf("JSON エンコードに失敗: %v", err)
	}
}

// WriteError maps err to an HTTP status and writes {"error": "..."}.
func WriteError(logger *zap.SugaredLogger, w http.ResponseWriter, err error) {
	status := StatusForError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Errorf("リクエスト処理に失敗: %v", err)
		}
		message = http.StatusText(status)
	}
	WriteJSON(logger, w, status, map[string]string{"error": message})
}

// StatusForError returns the HTTP status for a service error.
func StatusForError(err error) int {
	var validationErr *graphql.ValidationError
	switch {
	case errors.Is(err, application.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return http.StatusInternalServerError
	case errors.Is(err, graphql.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
