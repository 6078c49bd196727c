package client

import (
	"errors"

	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
)

// RemoteError is a call the server rejected. Message is the server's text,
// usually the engine's own error for SQL failures.
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
