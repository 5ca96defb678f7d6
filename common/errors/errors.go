package errors

import (
	"encoding/json"
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

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Checkout pipeline error types
var (
	// ErrEmptyCart rejects a checkout for a cart with no items.
	ErrEmptyCart = New(http.StatusBadRequest, "Cart is empty", nil)
	// ErrPublishFailed means the event bus was unreachable; the caller may retry.
	ErrPublishFailed = New(http.StatusServiceUnavailable, "Failed to publish checkout event", nil)
)

// Store error types
var (
	ErrCartNotFound    = New(http.StatusNotFound, "Cart not found", nil)
	ErrOrderNotFound   = New(http.StatusNotFound, "Order not found", nil)
	ErrProductNotFound = New(http.StatusNotFound, "Product not found", nil)
)

// ErrorMiddleware converts errors attached to the gin context into JSON responses
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *Error
			if e, ok := err.(*Error); ok {
				appErr = e
			} else {
				appErr = New(ErrInternalServer.Code, ErrInternalServer.Message, err)
			}

			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
