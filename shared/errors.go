package shared

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// AppError carries the HTTP status and the caller-facing message for an
// expected failure. Internal detail stays in Err and is only logged.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, nil, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, err, "Internal Server Error")
}

// NewRateLimitError reports how long the caller has to wait. resetIn is
// rounded up so "0 seconds" is never shown while a window is still open.
func NewRateLimitError(message string, resetIn time.Duration) *AppError {
	seconds := int64(resetIn / time.Second)
	if resetIn > 0 && resetIn%time.Second != 0 {
		seconds++
	}
	return &AppError{
		StatusCode: http.StatusTooManyRequests,
		Message:    message,
		Data:       map[string]interface{}{"reset_in_seconds": seconds},
	}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ErrorHandler is the single conversion point from returned errors to HTTP
// responses. Anything that is not an AppError or fiber.Error becomes a
// generic 500 with no internal detail in the body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := GetAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.WithError(appErr.Err).Error("internal error")
			return ResponseJSON(c, appErr.StatusCode, "Internal Server Error", nil)
		}
		return ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("unhandled error")
	return ResponseJSON(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
