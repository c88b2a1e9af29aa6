package time

import "errors"

var (
	// ErrFormat is returned when text doesn't match the grammar
	// it is being parsed with.
	ErrFormat = errors.New("invalid format")

	// ErrEmpty is returned when a required text argument is empty.
	ErrEmpty = errors.New("empty value")

	// ErrUnsupportedConversion is returned by Duration.Fixed for
	// units whose length depends on the calendar.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrInt64Overflow is returned when Unix second arithmetic
	// doesn't fit in an int64.
	ErrInt64Overflow = errors.New("int64 overflow")
)
