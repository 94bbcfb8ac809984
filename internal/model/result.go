package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Document is a file chosen for upload.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the record returned by the document processing service.
// Every field is optional and may hold any JSON value.
type Result struct {
	Message        Value `json:"message"`
	Classification Value `json:"classification"`
	StoragePath    Value `json:"storage_path"`
	ExtractedText  Value `json:"extracted_text"`
	Summary        Value `json:"summary"`
	Metrics        Value `json:"metrics"`
}

// Value is an opaque JSON value. The zero Value is an absent field.
type Value struct {
	raw json.RawMessage
}

// NewValue wraps raw JSON text. It does not validate its input.
func NewValue(raw []byte) Value {
	return Value{raw: bytes.Clone(raw)}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = bytes.Clone(data)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// IsNull reports whether the value is absent or JSON null.
func (v Value) IsNull() bool {
	t := bytes.TrimSpace(v.raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Raw returns the JSON text as received.
// Falsy reports whether the value is absent, null, false, zero or the empty
// string.
func (v Value) Falsy() bool {
	if v.IsNull() {
		return true
	}
	t := bytes.TrimSpace(v.raw)
	switch {
	case bytes.Equal(t, []byte("false")), bytes.Equal(t, []byte(`""`)):
		return true
	case t[0] == '-' || (t[0] >= '0' && t[0] <= '9'):
		f, err := strconv.ParseFloat(string(t), 64)
		return err == nil && f == 0
	default:
		return false
	}
}

func (v Value) Raw() []byte {
	return v.raw
}

// Display renders the value for a result slot: strings verbatim, objects and
// arrays indented, other scalars as their JSON text, null as empty.
func (v Value) Display() string {
	if v.IsNull() {
		return ""
	}
	t := bytes.TrimSpace(v.raw)
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return string(t)
		}
		return s
	case '{', '[':
		return v.Pretty()
	default:
		return string(t)
	}
}

// Pretty renders the value as JSON indented by two spaces, keeping key
// order as received. Null renders as empty.
func (v Value) Pretty() string {
	if v.IsNull() {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(v.raw), "", "  "); err != nil {
		return string(v.raw)
	}
	return buf.String()
}
