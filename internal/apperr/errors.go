package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bryanwahyu/labsight/internal/domain/ai"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindAnalysis       Kind = "analysis"
	KindPersistence    Kind = "persistence"
	KindConfiguration  Kind = "configuration"
	KindInternal       Kind = "internal"
)

// Error carries a Kind, a stable machine-readable reason and a
// human-readable message. Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, reason, message string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Err: err}
}

func Authentication(reason, message string, err error) *Error {
	return newError(KindAuthentication, reason, message, err)
}

func Authorization(reason, message string) *Error {
	return newError(KindAuthorization, reason, message, nil)
}

func Validation(reason, message string) *Error {
	return newError(KindValidation, reason, message, nil)
}

func NotFound(reason, message string) *Error {
	return newError(KindNotFound, reason, message, nil)
}

func Analysis(reason, message string, err error) *Error {
	return newError(KindAnalysis, reason, message, err)
}

func Persistence(reason, message string, err error) *Error {
	return newError(KindPersistence, reason, message, err)
}

func Configuration(reason, message string, err error) *Error {
	return newError(KindConfiguration, reason, message, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to the status code returned to API callers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAnalysis:
		if errors.Is(err, ai.ErrQuotaExceeded) {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to API callers.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred"
}
