package errors

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
)

// MapToHTTPError converts domain sentinels into transport status codes at
// the HTTP boundary. Unknown errors become a plain 500 so internals never
// leak to the caller.
func MapToHTTPError(err error) error {
	switch {
	case stderrors.Is(err, ErrInvalidChatID),
		stderrors.Is(err, ErrEmptyMessage),
		stderrors.Is(err, ErrInvalidPassword):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case stderrors.Is(err, ErrChatNotFound), stderrors.Is(err, ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case stderrors.Is(err, ErrNotParticipant):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case stderrors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case stderrors.Is(err, ErrUserAlreadyExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
