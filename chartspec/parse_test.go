package chartspec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const lineSpec = `{
	"mark": "line",
	"encoding": {
		"x": {"field": "iteration", "type": "quantitative"},
		"y": {"field": "score", "type": "quantitative"}
	},
	"data": {"iteration": [1, 2, 3], "score": [1, 2, 3]}
}`

func TestParseColumnarData(t *testing.T) {
	spec, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if spec.Mark != MarkLine {
		t.Errorf("mark = %q, want line", spec.Mark)
	}
	if len(spec.Data.Values) != 3 {
		t.Fatalf("got %d rows, want 3", len(spec.Data.Values))
	}
	if got := spec.Data.Values[1]["iteration"]; got != 2.0 {
		t.Errorf("row 1 iteration = %v, want 2", got)
	}
	if got := spec.Data.Values[2]["score"]; got != 3.0 {
		t.Errorf("row 2 score = %v, want 3", got)
	}
}

func TestParseRowData(t *testing.T) {
	raw := `{
		"mark": "bar",
		"encoding": {
			"x": {"field": "category", "type": "nominal"},
			"y": {"field": "count", "type": "quantitative"}
		},
		"data": {"values": [{"category": "a", "count": 4}, {"category": "b", "count": 7}]}
	}`
	spec, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(spec.Data.Values) != 2 {
		t.Fatalf("got %d rows, want 2", len(spec.Data.Values))
	}
	if spec.Data.Values[0]["category"] != "a" {
		t.Errorf("row 0 category = %v, want a", spec.Data.Values[0]["category"])
	}
}

func TestParseDefaults(t *testing.T) {
	spec, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if spec.Width != DefaultWidth || spec.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d defaults", spec.Width, spec.Height, DefaultWidth, DefaultHeight)
	}
	if spec.Encoding.X.Title != "iteration" {
		t.Errorf("x title = %q, want field name default", spec.Encoding.X.Title)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string // substring the error must mention
	}{
		{
			name:  "malformed json",
			raw:   `{"mark": }`,
			field: "malformed JSON",
		},
		{
			name:  "missing mark",
			raw:   `{"encoding": {"x": {"field": "a", "type": "nominal"}}, "data": {"values": []}}`,
			field: "mark",
		},
		{
			name:  "unknown mark",
			raw:   `{"mark": "sunburst", "encoding": {"x": {"field": "a", "type": "nominal"}}, "data": {"values": []}}`,
			field: "sunburst",
		},
		{
			name:  "missing channel field",
			raw:   `{"mark": "bar", "encoding": {"x": {"type": "nominal"}}, "data": {"values": []}}`,
			field: "encoding.x.field",
		},
		{
			name:  "missing channel type",
			raw:   `{"mark": "bar", "encoding": {"x": {"field": "a"}}, "data": {"values": []}}`,
			field: "encoding.x.type",
		},
		{
			name:  "unknown channel type",
			raw:   `{"mark": "bar", "encoding": {"x": {"field": "a", "type": "fancy"}}, "data": {"values": []}}`,
			field: "fancy",
		},
		{
			name:  "no positional channel",
			raw:   `{"mark": "bar", "encoding": {"color": {"field": "a", "type": "nominal"}}, "data": {"values": []}}`,
			field: "positional",
		},
		{
			name:  "quantitative type mismatch",
			raw:   `{"mark": "bar", "encoding": {"x": {"field": "a", "type": "quantitative"}}, "data": {"values": [{"a": "oops"}]}}`,
			field: "quantitative",
		},
		{
			name:  "temporal type mismatch",
			raw:   `{"mark": "line", "encoding": {"x": {"field": "t", "type": "temporal"}}, "data": {"values": [{"t": "not a date"}]}}`,
			field: "temporal",
		},
		{
			name:  "ragged columns",
			raw:   `{"mark": "line", "encoding": {"x": {"field": "a", "type": "quantitative"}}, "data": {"a": [1, 2], "b": [1]}}`,
			field: "length",
		},
		{
			name:  "values mixed with columns",
			raw:   `{"mark": "line", "encoding": {"x": {"field": "a", "type": "quantitative"}}, "data": {"values": [], "a": [1]}}`,
			field: "values",
		},
		{
			name:  "unknown top-level field",
			raw:   `{"mark": "line", "projection": "albers", "encoding": {"x": {"field": "a", "type": "nominal"}}, "data": {"values": []}}`,
			field: "projection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("error %v does not wrap ErrInvalidSpec", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.field)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	first, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	a, _ := first.Encode()
	b, _ := second.Encode()
	if !bytes.Equal(a, b) {
		t.Error("same input produced different canonical encodings")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	spec, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	encoded, err := spec.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	reparsed, err := Parse(encoded)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	reencoded, err := reparsed.Encode()
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Errorf("round trip not byte-identical:\nfirst:  %s\nsecond: %s", encoded, reencoded)
	}
}

func TestDataFields(t *testing.T) {
	spec, err := Parse([]byte(lineSpec))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fields := spec.Data.Fields()
	if !fields["iteration"] || !fields["score"] {
		t.Errorf("fields = %v, want iteration and score", fields)
	}
}
