package connection

import "errors"

// Domain-specific errors for connection handling.
var (
	// ErrClosed is returned when writing to a closed connection.
	ErrClosed = errors.New("connection: closed")

	// ErrFrameTooLong is reported when a client sends a line longer than
	// MaxFrameLength without a newline. The partial line is discarded.
	ErrFrameTooLong = errors.New("connection: frame too long")

	// ErrPoolClosed is returned when adding to a closed pool.
	ErrPoolClosed = errors.New("connection: pool closed")
)
