package render

import (
	"errors"
	"fmt"
)

// ErrEncoding indicates an encoder failed to produce output bytes.
// Encoders never degrade silently; any internal failure surfaces here.
var ErrEncoding = errors.New("encoding error")

// EncodingError reports which format encoder failed and why.
type EncodingError struct {
	Format string
	Msg    string
	Err    error
}

func (e *EncodingError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s encoder: %s: %v", ErrEncoding.Error(), e.Format, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s encoder: %s", ErrEncoding.Error(), e.Format, e.Msg)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }
