package chartspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var validMarks = map[string]bool{
	MarkBar:   true,
	MarkLine:  true,
	MarkPoint: true,
	MarkArea:  true,
}

var validTypes = map[string]bool{
	TypeQuantitative: true,
	TypeNominal:      true,
	TypeOrdinal:      true,
	TypeTemporal:     true,
}

// Parse decodes a chart specification from JSON, validates it and
// returns the normalized form. Parsing is pure: the same bytes always
// yield the same Spec or the same error. Every failure wraps
// ErrInvalidSpec and names the offending field where possible.
func Parse(raw []byte) (*Spec, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var spec Spec
	if err := dec.Decode(&spec); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, &SpecError{
				Field: typeErr.Field,
				Msg:   fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
				Err:   err,
			}
		}
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			return nil, &SpecError{
				Msg: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, err),
				Err: err,
			}
		}
		var specErr *SpecError
		if errors.As(err, &specErr) {
			return nil, specErr
		}
		return nil, &SpecError{Msg: err.Error(), Err: err}
	}

	if err := spec.normalize(); err != nil {
		return nil, err
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// normalize fills defaults so downstream stages and the canonical
// structured-document output never see zero values.
func (s *Spec) normalize() error {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Width < 0 || s.Height < 0 {
		return &SpecError{Field: "width", Msg: "width and height must be positive"}
	}
	for _, nc := range s.Encoding.Channels() {
		if nc.Channel.Title == "" {
			nc.Channel.Title = nc.Channel.Field
		}
	}
	return nil
}

// validate checks structural requirements and type coherence between
// declared channel types and the bound data values.
func (s *Spec) validate() error {
	if s.Mark == "" {
		return &SpecError{Field: "mark", Msg: "required field is missing"}
	}
	if !validMarks[s.Mark] {
		return &SpecError{
			Field: "mark",
			Msg:   fmt.Sprintf("unknown mark %q (supported: bar, line, point, area)", s.Mark),
		}
	}

	channels := s.Encoding.Channels()
	if len(channels) == 0 {
		return &SpecError{Field: "encoding", Msg: "at least one channel is required"}
	}
	if s.Encoding.X == nil && s.Encoding.Y == nil {
		return &SpecError{Field: "encoding", Msg: "a positional channel (x or y) is required"}
	}

	for _, nc := range channels {
		path := "encoding." + nc.Name
		if nc.Channel.Field == "" {
			return &SpecError{Field: path + ".field", Msg: "required field is missing"}
		}
		if nc.Channel.Type == "" {
			return &SpecError{Field: path + ".type", Msg: "required field is missing"}
		}
		if !validTypes[nc.Channel.Type] {
			return &SpecError{
				Field: path + ".type",
				Msg:   fmt.Sprintf("unknown type %q (supported: quantitative, nominal, ordinal, temporal)", nc.Channel.Type),
			}
		}
		if err := s.checkValueTypes(path, nc.Channel); err != nil {
			return err
		}
	}
	return nil
}

// checkValueTypes verifies that the data values present for a channel's
// field agree with the declared channel type. Fields missing from the
// data entirely are not a parse failure; the layout stage reports those
// against the bound dataset.
func (s *Spec) checkValueTypes(path string, ch *Channel) error {
	for i, row := range s.Data.Values {
		val, ok := row[ch.Field]
		if !ok || val == nil {
			continue
		}
		switch ch.Type {
		case TypeQuantitative:
			if _, ok := val.(float64); !ok {
				return &SpecError{
					Field: path,
					Msg:   fmt.Sprintf("field %q declared quantitative but row %d holds %T", ch.Field, i, val),
				}
			}
		case TypeTemporal:
			if !isTemporal(val) {
				return &SpecError{
					Field: path,
					Msg:   fmt.Sprintf("field %q declared temporal but row %d holds unparseable value %v", ch.Field, i, val),
				}
			}
		}
		// nominal and ordinal accept any scalar; values are stringified
		// during layout.
	}
	return nil
}

// isTemporal accepts RFC 3339 timestamps, plain dates and numeric epochs.
func isTemporal(val any) bool {
	switch v := val.(type) {
	case float64:
		return true
	case string:
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return true
		}
		if _, err := time.Parse("2006-01-02", v); err == nil {
			return true
		}
		return false
	default:
		return false
	}
}

// Encode serializes the normalized specification as canonical JSON:
// fixed struct field order, row-oriented data, sorted row keys and a
// trailing newline. Output is byte-for-byte deterministic, so encoding
// a re-parsed document reproduces it exactly.
func (s *Spec) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, &SpecError{Msg: "encoding normalized specification", Err: err}
	}
	return buf.Bytes(), nil
}
