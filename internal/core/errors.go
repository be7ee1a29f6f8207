package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNotRegistered  = "not_registered"
	ErrCodeRoomNotFound   = "room_not_found"
	ErrCodeNotInRoom      = "not_in_room"
	ErrCodeMalformedEvent = "malformed_event"
	ErrCodeRateLimited    = "rate_limited"
)

var (
	ErrNotRegistered = errors.New("not registered")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotInRoom     = errors.New("not in room")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
