package editor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidField indicates an unknown field name for the target.
	ErrInvalidField = errors.New("invalid field")

	// ErrIndexOutOfRange indicates an item index outside the section.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrIncompleteItem indicates an item missing the fields needed to add it.
	ErrIncompleteItem = errors.New("item is missing required fields")

	// ErrNotAList indicates a list operation on a scalar section.
	ErrNotAList = errors.New("section is not a list")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the session changed concurrently too many times.
	ErrConflict = errors.New("session update conflict")
)

// SaveBlockedMessage is shown when a save is blocked by validation.
const SaveBlockedMessage = "Please fill in all required fields before saving."

// ValidationError carries field-keyed messages such as
// "professionalExperience.0.role": "Role is required".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(keys, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
