package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error carrying an HTTP-aligned code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinel error kinds. Constructors below wrap these so callers can classify
// any returned error with errors.Is regardless of the message it carries.
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInsufficientStock  = New(http.StatusConflict, "Insufficient stock", nil)
	ErrInvalidState       = New(http.StatusInternalServerError, "Invalid state", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

func wrap(sentinel *Error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}

// BadRequest reports malformed input, an illegal state transition, an
// already-used coupon, or an amount mismatch. Never retried automatically.
func BadRequest(message string, cause error) *Error {
	return New(http.StatusBadRequest, message, wrap(ErrBadRequest, cause))
}

// NotFound reports a missing order, coupon, or inventory record.
func NotFound(message string, cause error) *Error {
	return New(http.StatusNotFound, message, wrap(ErrNotFound, cause))
}

// Unauthorized reports an order/user ownership mismatch.
func Unauthorized(message string, cause error) *Error {
	return New(http.StatusUnauthorized, message, wrap(ErrUnauthorized, cause))
}

// InsufficientStock reports a failed reservation. The caller is expected to
// have compensated before surfacing this.
func InsufficientStock(message string, cause error) *Error {
	return New(http.StatusConflict, message, wrap(ErrInsufficientStock, cause))
}

// InvalidState reports a ledger counter that would go negative. It is never
// clamped silently.
func InvalidState(message string, cause error) *Error {
	return New(http.StatusInternalServerError, message, wrap(ErrInvalidState, cause))
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// Is lets sentinel values match wrapped constructor errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Err == nil && t.Message != "" {
		// target is a sentinel: match by identity through the wrap chain
		return e == t || errors.Is(e.Err, t)
	}
	return e.Code == t.Code && e.Message == t.Message
}

// CodeOf returns the HTTP code for an error, defaulting to 500.
func CodeOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// HandleError writes an error response in the standard envelope.
func HandleError(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = New(http.StatusInternalServerError, "Internal server error", err)
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// ErrorMiddleware converts errors attached to the Gin context into responses.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *Error
			if !errors.As(err, &appErr) {
				appErr = New(http.StatusInternalServerError, "Internal server error", err)
			}

			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
