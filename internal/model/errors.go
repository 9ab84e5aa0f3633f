package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidRole         = errors.New("invalid role")
	ErrUsernameTaken       = errors.New("username already taken")

	// Message errors
	ErrEmptyMessage = errors.New("message content is empty")
)
