package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation reports malformed or missing input.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Auth reports bad credentials or a missing/expired session. Callers
// must pass a generic message; never reveal which part of the
// credentials was wrong.
func Auth(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

// NotFound reports an absent entity.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

// Dependency reports a failed call to an external system (image store,
// payment gateway).
func Dependency(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// ErrInvalidCredentials is the single message returned for every login
// failure, whether the username is unknown or the password is wrong.
var ErrInvalidCredentials = Auth("invalid username or password")

// ErrUnauthenticated is returned when no valid session accompanies a
// request.
var ErrUnauthenticated = Auth("unauthenticated")

// Respond maps err onto the HTTP boundary. Application errors keep
// their status and message; anything else becomes a generic 500 so no
// internal detail leaks to the client.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
