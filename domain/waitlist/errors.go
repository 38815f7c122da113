package waitlist

import "errors"

var (
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidEmail  = errors.New("email does not match the accepted pattern")
)

// Client-facing messages. These strings are part of the public contract.
const (
	MessageInvalidRequestBody = "Invalid request body"
	MessageEmailRequired      = "Email is required"
	MessageInvalidEmail       = "Invalid email"
	MessageSaveFailed         = "Failed to save email"
	MessageUnexpected         = "An unexpected error occurred"
)
