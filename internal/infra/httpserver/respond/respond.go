// Package respond writes JSON bodies and maps application errors to HTTP
// statuses in one place.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bryanwahyu/labsight/internal/apperr"
)

// ErrorBody is the error envelope: {error, details?}.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err with the status from apperr.HTTPStatus. Server-side
// failures are logged; their causes never reach the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorBody{Error: apperr.PublicMessage(err)}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
		body.Details = appErr.Reason
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	JSON(w, status, body)
}
