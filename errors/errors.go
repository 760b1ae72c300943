package errors

import "fmt"

var (
	ErrChatNotFound       = fmt.Errorf("chat not found")
	ErrInvalidChatID      = fmt.Errorf("invalid chat id format")
	ErrNotParticipant     = fmt.Errorf("user is not a participant of this chat")
	ErrEmptyMessage       = fmt.Errorf("empty message")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
