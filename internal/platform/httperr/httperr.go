// Package httperr defines the error taxonomy of the API and renders every
// failure as the JSON envelope {"error":{"code","message","details"}}.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeDB                 = "DB_ERROR"
	CodeServer             = "SERVER_ERROR"
)

// Error is a request-level failure with a stable code and an HTTP status.
// Details optionally carries sanitized internal context; storage error text
// never goes into Message.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// envelope is the wire shape of every failure response.
type envelope struct {
	Error *Error `json:"error"`
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func UserNotFound(message string) *Error {
	return New(http.StatusNotFound, CodeUserNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func InvalidToken(message string) *Error {
	return New(http.StatusUnauthorized, CodeInvalidToken, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func InvalidCredentials(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidCredentials, message)
}

func UserExists(message string) *Error {
	return New(http.StatusBadRequest, CodeUserExists, message)
}

// BindError translates a request-body decode failure. A body rejected by the
// size limit keeps its 413 status; everything else is a plain validation
// failure.
func BindError(err error) *Error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return New(he.Code, CodeValidation, "Request body too large")
	}
	return Validation("Invalid request body")
}

// DB wraps a Persistence Gateway failure. The caller-facing message stays
// generic; the cause lands in Details.
func DB(message string, cause error) *Error {
	e := New(http.StatusInternalServerError, CodeDB, message)
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Server wraps any other infrastructure failure.
func Server(message string, cause error) *Error {
	e := New(http.StatusInternalServerError, CodeServer, message)
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Handler returns an echo.HTTPErrorHandler that renders every error as the
// envelope. *Error passes through; echo.HTTPError is translated; anything
// else becomes SERVER_ERROR.
func Handler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if !errors.As(err, &appErr) {
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				appErr = &Error{
					Status:  httpErr.Code,
					Code:    codeForStatus(httpErr.Code),
					Message: messageOf(httpErr),
				}
			} else {
				appErr = Server("internal server error", nil)
				logger.Error().Err(err).
					Str("path", c.Request().URL.Path).
					Msg("unhandled error")
			}
		}

		if appErr.Status >= http.StatusInternalServerError {
			logger.Error().
				Str("code", appErr.Code).
				Str("path", c.Request().URL.Path).
				Str("details", appErr.Details).
				Msg(appErr.Message)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.Status)
			return
		}
		_ = c.JSON(appErr.Status, envelope{Error: appErr})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusRequestEntityTooLarge:
		return CodeValidation
	default:
		return CodeServer
	}
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}
