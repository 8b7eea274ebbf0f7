package convert

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when the requested output format is
// not one this library can produce.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrConversion wraps failures outside the parse, layout and encoding
// stages, such as file I/O in ConvertFile.
var ErrConversion = errors.New("conversion failed")

// UnsupportedFormatError names the rejected format and every format
// the library accepts, so callers can surface a useful message.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (supported: %s)", e.Format, supportedList())
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// ConversionError carries the failing stage for errors that do not
// belong to a more specific taxonomy.
type ConversionError struct {
	Stage string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed: %s: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return ErrConversion
}
