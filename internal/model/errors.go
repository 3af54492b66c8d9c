package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrBanned         = errors.New("player is banned")

	// Room errors
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomExists        = errors.New("room already exists")
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)
