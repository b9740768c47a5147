package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no entity matches the given id.
var ErrNotFound = errors.New("not found")

// ValidationError rejects recruiter or candidate input. It is recovered
// locally and never persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GenerationError means the AI job-draft call failed or returned an invalid
// structure. No partial draft is committed; retrying is the caller's call.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job generation failed: %s: %v", e.Reason, e.Err)
	}
	return "job generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }
