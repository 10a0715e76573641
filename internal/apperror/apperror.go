package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Error is a domain error that knows its HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so wrapped clones compare equal to the predefined errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrValidation     = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound       = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized   = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict       = New("CONFLICT", http.StatusConflict, "conflict")
	ErrUnsavedChanges = New("UNSAVED_CHANGES", http.StatusConflict, "you have unsaved changes")
	ErrUpstream       = New("UPSTREAM_ERROR", http.StatusBadGateway, "upstream service unavailable")
	ErrInternal       = New("INTERNAL_ERROR", http.StatusInternalServerError, "something went wrong, please try again")
)

// FromError normalises any error into an *Error; unknown errors become ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &Error{Code: codeForStatus(fe.Code), Status: fe.Code, Message: fe.Message}
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies err with a new message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Validation is shorthand for a validation error carrying a specific message.
func Validation(message string) *Error {
	return Clone(ErrValidation, message)
}

// Handler renders errors as {"error":{"code","message"}}. Internal causes are logged, never returned.
func Handler(l *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)
		if appErr.Status >= http.StatusInternalServerError && l != nil {
			l.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("code", appErr.Code),
				zap.Error(err),
			)
		}
		return c.Status(appErr.Status).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation.Code
	case http.StatusUnauthorized:
		return ErrUnauthorized.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusConflict:
		return ErrConflict.Code
	default:
		if status >= http.StatusInternalServerError {
			return ErrInternal.Code
		}
		return "HTTP_" + fmt.Sprint(status)
	}
}
