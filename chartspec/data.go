package chartspec

import (
	"encoding/json"
	"fmt"
)

// Row is one data record. Values are the types encoding/json produces:
// float64, string, bool or nil.
type Row map[string]any

// Data holds the inline dataset bound to the specification.
//
// Two input shapes are accepted: row-oriented
//
//	{"values": [{"x": 1, "y": 2}, ...]}
//
// and column-oriented, where every key maps to an equal-length array
//
//	{"x": [1, 2, 3], "y": [4, 5, 6]}
//
// Both normalize to rows; Data always marshals in row form so the
// structured-document output is canonical.
type Data struct {
	Values []Row
}

// UnmarshalJSON accepts both row and column oriented data documents.
func (d *Data) UnmarshalJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &SpecError{Field: "data", Msg: "must be an object", Err: err}
	}

	if values, ok := fields["values"]; ok {
		if len(fields) != 1 {
			return &SpecError{Field: "data", Msg: `"values" cannot be mixed with column arrays`}
		}
		if err := json.Unmarshal(values, &d.Values); err != nil {
			return &SpecError{Field: "data.values", Msg: "must be an array of objects", Err: err}
		}
		return nil
	}

	// Column-oriented: every key maps to an equal-length array.
	columns := make(map[string][]any, len(fields))
	length := -1
	for key, rawCol := range fields {
		var col []any
		if err := json.Unmarshal(rawCol, &col); err != nil {
			return &SpecError{Field: "data." + key, Msg: "column must be an array", Err: err}
		}
		if length == -1 {
			length = len(col)
		} else if len(col) != length {
			return &SpecError{
				Field: "data." + key,
				Msg:   fmt.Sprintf("column length %d does not match %d", len(col), length),
			}
		}
		columns[key] = col
	}

	if length <= 0 {
		d.Values = nil
		return nil
	}
	d.Values = make([]Row, length)
	for i := range d.Values {
		row := make(Row, len(columns))
		for key, col := range columns {
			row[key] = col[i]
		}
		d.Values[i] = row
	}
	return nil
}

// MarshalJSON always emits the canonical row-oriented form.
func (d Data) MarshalJSON() ([]byte, error) {
	values := d.Values
	if values == nil {
		values = []Row{}
	}
	return json.Marshal(struct {
		Values []Row `json:"values"`
	}{Values: values})
}

// Fields returns the set of field names present in any row.
func (d Data) Fields() map[string]bool {
	fields := make(map[string]bool)
	for _, row := range d.Values {
		for key := range row {
			fields[key] = true
		}
	}
	return fields
}
