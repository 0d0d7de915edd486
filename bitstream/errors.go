package bitstream

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEndOfStream is returned when the source has no more bytes for a refill.
	// It is io.EOF, so a BitReader composes with io.ReadAll and friends.
	ErrEndOfStream = io.EOF

	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ArgumentError reports a field width outside (0, MaxFieldWidth],
// or a value that does not fit its width.
type ArgumentError struct {
	Op    string
	Width uint
	Value uint64
}

func (err *ArgumentError) Error() string {
	if err.Width == 0 || err.Width > MaxFieldWidth {
		return fmt.Sprintf("bitstream: %s: invalid field width; expected: 1..%d, given: %d",
			err.Op, MaxFieldWidth, err.Width)
	}
	return fmt.Sprintf("bitstream: %s: value %#x does not fit in %d bits", err.Op, err.Value, err.Width)
}

func (err *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func checkWidth(op string, n uint) error {
	if n == 0 || n > MaxFieldWidth {
		return &ArgumentError{Op: op, Width: n}
	}
	return nil
}
