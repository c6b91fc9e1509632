package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMessageEmpty         = errors.New("message cannot be empty")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageEnqueue       = errors.New("message enqueue failed")
)

// DefaultUserID is used whenever a caller does not identify a user.
const DefaultUserID uint = 1
