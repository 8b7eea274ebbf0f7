package chartspec

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec indicates a malformed or incoherent chart specification.
// All parser failures wrap this sentinel for errors.Is() checks.
var ErrInvalidSpec = errors.New("invalid specification")

// SpecError describes why a specification was rejected, naming the
// offending field when one can be identified.
type SpecError struct {
	Field string // dotted path to the field, e.g. "encoding.x.type"
	Msg   string
	Err   error // optional underlying error (e.g. from json.Unmarshal)
}

func (e *SpecError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidSpec.Error(), e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSpec.Error(), e.Msg)
}

func (e *SpecError) Unwrap() error { return ErrInvalidSpec }
