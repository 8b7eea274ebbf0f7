package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/drummonds/chartconv/chartspec"
	"github.com/drummonds/chartconv/scene"
)

// Structured-document targets.
const (
	TargetSpec  = "spec"  // the normalized specification (default)
	TargetScene = "scene" // the resolved, lower-level scene graph
)

// EncodeJSON serializes the structured-document form. The default
// target is the normalized specification, whose canonical encoding is
// idempotent: re-parsing the output and encoding again is
// byte-identical. The scene target exposes the resolved layout.
func EncodeJSON(spec *chartspec.Spec, sc *scene.Scene, target string) ([]byte, error) {
	switch target {
	case "", TargetSpec:
		out, err := spec.Encode()
		if err != nil {
			return nil, &EncodingError{Format: "json", Msg: "canonical specification", Err: err}
		}
		return out, nil
	case TargetScene:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sc); err != nil {
			return nil, &EncodingError{Format: "json", Msg: "scene graph", Err: err}
		}
		return buf.Bytes(), nil
	default:
		return nil, &EncodingError{Format: "json", Msg: fmt.Sprintf("unknown target %q (supported: spec, scene)", target)}
	}
}
