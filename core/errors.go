package core

import "errors"

// Domain errors surfaced to clients at the coordinator boundary. The message
// text is part of the client-facing contract.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrNameInUse       = errors.New("display name already in use")
	ErrInvalidLanguage = errors.New("invalid language")
)
