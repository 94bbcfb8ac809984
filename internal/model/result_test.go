package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "absent", raw: "", want: ""},
		{name: "null", raw: "null", want: ""},
		{name: "string", raw: `"Medical Records"`, want: "Medical Records"},
		{name: "escaped string", raw: `"line one\nline \"two\""`, want: "line one\nline \"two\""},
		{name: "number", raw: "3", want: "3"},
		{name: "bool", raw: "false", want: "false"},
		{name: "object", raw: `{"a":1,"b":[true]}`, want: "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}"},
		{name: "empty object", raw: `{}`, want: "{}"},
		{name: "array", raw: `["x"]`, want: "[\n  \"x\"\n]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewValue([]byte(tt.raw)).Display())
		})
	}
}

func TestValueFalsy(t *testing.T) {
	for raw, want := range map[string]bool{
		"":        true,
		"null":    true,
		"false":   true,
		"0":       true,
		"-0.0":    true,
		`""`:      true,
		"true":    false,
		"1":       false,
		`"0"`:     false,
		`"false"`: false,
		"{}":      false,
		"[]":      false,
	} {
		assert.Equal(t, want, NewValue([]byte(raw)).Falsy(), "raw %q", raw)
	}
}

func TestValuePrettyKeepsKeyOrder(t *testing.T) {
	v := NewValue([]byte(`{"ocr_quality":72,"llm_api_calls":3}`))
	assert.Equal(t, "{\n  \"ocr_quality\": 72,\n  \"llm_api_calls\": 3\n}", v.Pretty())
}

func TestResultDecodeTreatsMissingFieldsAsEmpty(t *testing.T) {
	var r Result
	err := json.Unmarshal([]byte(`{"message":"ok","classification":"auto","metrics":{"pages":3},"summary":null}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "ok", r.Message.Display())
	assert.Equal(t, "auto", r.Classification.Display())
	assert.Equal(t, "{\n  \"pages\": 3\n}", r.Metrics.Pretty())
	assert.True(t, r.StoragePath.IsNull())
	assert.True(t, r.Summary.IsNull())
	assert.Equal(t, "", r.ExtractedText.Display())
}

func TestResultEncodeRoundTripsOpaqueValues(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"metrics":{"nested":{"deep":[1,2]}}}`), &r))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":null,"classification":null,"storage_path":null,"extracted_text":null,"summary":null,"metrics":{"nested":{"deep":[1,2]}}}`, string(out))
}
