package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrCorrupt indicates a file exists but its contents are unreadable
	// (distinct from ErrNotFound)
	ErrCorrupt = errors.New("corrupt file")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnsupported indicates a format, codec or platform is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
