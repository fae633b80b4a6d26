package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptCollection matches any *CorruptError.
	ErrCorruptCollection = errors.New("corrupt collection")
	// ErrInvalidPatch is returned when a patch does not fit the record shape.
	ErrInvalidPatch = errors.New("invalid patch")
	// ErrActivePlanExists rejects a second active support plan for a student.
	ErrActivePlanExists = errors.New("student already has an active support plan")
)

// CorruptError reports a collection value that is not a JSON array of records.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("collection %s is corrupted: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorruptCollection }
