package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
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

// Is reports whether target is an *Error of the same kind. Kinds are identified
// by message so that upstream errors match regardless of the relayed status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// Detail returns the message of the wrapped cause, or the error message when there is none.
func (e *Error) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of kind carrying err as its cause.
func Wrap(kind *Error, err error) *Error {
	return &Error{Code: kind.Code, Message: kind.Message, Err: err}
}

// Wrapf is Wrap with a formatted cause.
func Wrapf(kind *Error, format string, args ...interface{}) *Error {
	return Wrap(kind, fmt.Errorf(format, args...))
}

// From converts any error into an *Error, defaulting to ErrInternalServer.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// ErrorMiddleware renders the last error attached with c.Error as
// {error, details} when the handler has not written a response.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := From(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "details": appErr.Detail()})
	}
}

// Database error types
var (
	ErrDatabaseConnection = New(http.StatusServiceUnavailable, "Database connection error", nil)
	ErrDatabaseQuery      = New(http.StatusInternalServerError, "Database query error", nil)
)

// Validation error types
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput = New(http.StatusBadRequest, "Invalid input", nil)
)

// Receipt pipeline error types
var (
	ErrRender   = New(http.StatusInternalServerError, "Rendering error", nil)
	ErrDevice   = New(http.StatusInternalServerError, "Printer device error", nil)
	ErrUpstream = New(http.StatusBadGateway, "Upstream fetch error", nil)
)

// Upstream returns an upstream error that relays the given status code.
func Upstream(status int, err error) *Error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &Error{Code: status, Message: ErrUpstream.Message, Err: err}
}
