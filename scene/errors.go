package scene

import (
	"errors"
	"fmt"
)

// ErrLayout indicates the scene builder could not resolve the
// specification against its bound data.
var ErrLayout = errors.New("layout error")

// LayoutError names the encoding field that failed to resolve.
type LayoutError struct {
	Field string
	Msg   string
}

func (e *LayoutError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", ErrLayout.Error(), e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrLayout.Error(), e.Msg)
}

func (e *LayoutError) Unwrap() error { return ErrLayout }
