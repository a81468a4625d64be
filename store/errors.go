package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when inserting through a disconnected handle.
	ErrNotConnected = errors.New("store: no database connection")
	// ErrClosed is returned when inserting through a closed handle.
	ErrClosed = errors.New("store: connection closed")
	// ErrUnknownScheme is returned for a URI whose scheme has no backend.
	ErrUnknownScheme = errors.New("store: unsupported URI scheme")
)

type panicError struct{ value any }

func (p panicError) Error() string {
	return fmt.Sprintf("store: backend panicked: %v", p.value)
}
