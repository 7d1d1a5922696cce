package obfuscator_test

import (
	"testing"

	"gdpr-obfuscator/internal/obfuscator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	req, err := obfuscator.ParseEvent([]byte(`{
		"file_to_obfuscate": "s3://test-bucket/new_data/student_data.csv",
		"pii_fields": ["name", "email_address"]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "s3://test-bucket/new_data/student_data.csv", req.FileToObfuscate)
	assert.Equal(t, []string{"name", "email_address"}, req.PIIFields)
	assert.NoError(t, req.Validate())
}

func TestParseEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		missing string
	}{
		{"no file", `{"pii_fields": ["name"]}`, "file_to_obfuscate"},
		{"null file", `{"file_to_obfuscate": null, "pii_fields": ["name"]}`, "file_to_obfuscate"},
		{"no fields", `{"file_to_obfuscate": "s3://b/d/f.csv"}`, "pii_fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := obfuscator.ParseEvent([]byte(tt.event))
			assert.ErrorIs(t, err, obfuscator.ErrMissingField)

			var mf *obfuscator.MissingFieldError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, tt.missing, mf.Field)
		})
	}

	invalid := map[string]string{
		"not json":         `{"file_to_obfuscate":`,
		"not an object":    `["s3://b/d/f.csv"]`,
		"file not string":  `{"file_to_obfuscate": 3, "pii_fields": []}`,
		"fields not list":  `{"file_to_obfuscate": "s3://b/d/f.csv", "pii_fields": "name"}`,
		"field not string": `{"file_to_obfuscate": "s3://b/d/f.csv", "pii_fields": ["name", 1]}`,
	}
	for name, event := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := obfuscator.ParseEvent([]byte(event))
			assert.ErrorIs(t, err, obfuscator.ErrInvalidEvent)
		})
	}
}

func TestParseEvent_EmptyFieldList(t *testing.T) {
	req, err := obfuscator.ParseEvent([]byte(`{"file_to_obfuscate": "s3://b/d/f.csv", "pii_fields": []}`))
	require.NoError(t, err)
	assert.NotNil(t, req.PIIFields)
	assert.Empty(t, req.PIIFields)
}

func TestParseEvents(t *testing.T) {
	reqs, err := obfuscator.ParseEvents([]byte(`[
		{"file_to_obfuscate": "s3://b/d/one.csv", "pii_fields": ["name"]},
		{"file_to_obfuscate": "s3://b/d/two.json", "pii_fields": ["email"]}
	]`))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "s3://b/d/two.json", reqs[1].FileToObfuscate)

	_, err = obfuscator.ParseEvents([]byte(`[{"file_to_obfuscate": "s3://b/d/one.csv"}]`))
	assert.ErrorIs(t, err, obfuscator.ErrMissingField)
	assert.Contains(t, err.Error(), "event 0")

	_, err = obfuscator.ParseEvents([]byte(`{}`))
	assert.ErrorIs(t, err, obfuscator.ErrInvalidEvent)
}

func TestRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, obfuscator.Request{PIIFields: []string{"name"}}.Validate(), obfuscator.ErrMissingField)
	assert.ErrorIs(t, obfuscator.Request{FileToObfuscate: "s3://b/d/f.csv"}.Validate(), obfuscator.ErrMissingField)
}
