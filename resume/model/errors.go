package model

import "errors"

var (
	// ErrInvalidTemplate indicates an unknown template name.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidSection indicates an unknown section name.
	ErrInvalidSection = errors.New("invalid section")
)
