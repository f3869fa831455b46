package errors

import (
	"fmt"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is the error type returned across service boundaries. Status carries
// the HTTP status the handler should respond with.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("Unauthorized action.", http.StatusForbidden)
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	InActiveUserError      = New("user is inactive", http.StatusUnauthorized)
)

// GetUniqueContraintError maps a database unique-violation into a 4xx error
// the caller can surface without leaking SQL detail.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("user with this email already exists", http.StatusConflict)
	case strings.Contains(msg, "pair_key"):
		return New("conversation already exists", http.StatusConflict)
	default:
		return New("duplicate record", http.StatusConflict)
	}
}

// ErrorHandler is passed to the gin rate limiter.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"errors": "Too many requests. Try again in " + info.ResetTime.Format("15:04:05"),
		"status": http.StatusText(http.StatusTooManyRequests),
	})
}
