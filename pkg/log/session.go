package log

import "github.com/google/uuid"

// NewSessionID returns a fresh capture session identifier.
func NewSessionID() string {
	return uuid.New().String()
}
