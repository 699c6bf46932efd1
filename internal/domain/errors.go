package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// SourceAPIError is returned when the legislative-data API answers with a non-2xx status.
type SourceAPIError struct {
	Status int
	Body   string
}

func (e *SourceAPIError) Error() string {
	return fmt.Sprintf("source api returned %d: %s", e.Status, e.Body)
}

// StoreError wraps a failed find, create or update against the record store.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or malformed trigger parameter.
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
