package core

// Error codes for caller errors surfaced over the wire.
const (
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeRoomNotFound = "room_not_found"
	ErrCodeRoomMismatch = "room_mismatch"
	ErrCodeBadRequest   = "bad_request"
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
