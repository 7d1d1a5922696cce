package reference_test

import (
	"errors"
	"testing"

	"gdpr-obfuscator/internal/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StudentData(t *testing.T) {
	ref, err := reference.Parse("s3://test-bucket/new_data/student_data.csv")
	require.NoError(t, err)

	assert.Equal(t, "test-bucket", ref.Bucket)
	assert.Equal(t, "new_data/student_data.csv", ref.Key)
	assert.Equal(t, "student_data.csv", ref.ObjectName)
	assert.Equal(t, reference.FormatCSV, ref.Format)
	assert.Equal(t, "new_data", ref.Dir())
	assert.Equal(t, "s3://test-bucket/new_data/student_data.csv", ref.String())
	assert.NoError(t, ref.Validate())
}

func TestParse_NestedJSON(t *testing.T) {
	ref, err := reference.Parse("s3://bucket/a/b/c/people.json")
	require.NoError(t, err)

	assert.Equal(t, "a/b/c/people.json", ref.Key)
	assert.Equal(t, "people.json", ref.ObjectName)
	assert.Equal(t, reference.FormatJSON, ref.Format)
	assert.Equal(t, "a/b/c", ref.Dir())
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no directory segment", "s3://bucket/file.exe", reference.ErrMalformedReference},
		{"no directory segment csv", "s3://bucket/file.csv", reference.ErrMalformedReference},
		{"wrong scheme", "https://bucket/new_data/file.csv", reference.ErrMalformedReference},
		{"no extension", "s3://bucket/new_data/file", reference.ErrMalformedReference},
		{"empty", "", reference.ErrMalformedReference},
		{"bad extension", "s3://bucket/new_data/file.exe", reference.ErrUnsupportedFormat},
		{"parquet", "s3://bucket/new_data/file.parquet", reference.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := reference.Parse(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, reference.Reference{}, ref)
		})
	}
}

func TestParse_MalformedIsNotUnsupported(t *testing.T) {
	_, err := reference.Parse("s3://bucket/file.exe")

	var malformed *reference.MalformedReferenceError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "s3://bucket/file.exe", malformed.Input)
	assert.False(t, errors.Is(err, reference.ErrUnsupportedFormat))
}

func TestParse_UnsupportedFormatMessage(t *testing.T) {
	_, err := reference.Parse("s3://bucket/new_data/file.exe")

	var unsupported *reference.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "exe", unsupported.Format)
	assert.Contains(t, err.Error(), "use format in")
}

func TestValidate_FailedParseValue(t *testing.T) {
	ref, err := reference.Parse("s3://bucket/file.exe")
	require.Error(t, err)

	err = ref.Validate()
	assert.ErrorIs(t, err, reference.ErrInvalidReferenceStructure)
	assert.NotErrorIs(t, err, reference.ErrMalformedReference)
}

func TestValidate_HandBuilt(t *testing.T) {
	ref := reference.Reference{Bucket: "b", Key: "file.csv", ObjectName: "file.csv", Format: reference.FormatCSV}
	assert.ErrorIs(t, ref.Validate(), reference.ErrInvalidReferenceStructure)

	ref = reference.Reference{Bucket: "b", Key: "dir/file.csv", ObjectName: "other.csv", Format: reference.FormatCSV}
	assert.ErrorIs(t, ref.Validate(), reference.ErrInvalidReferenceStructure)

	ref = reference.Reference{Bucket: "b", Key: "dir/file.xml", ObjectName: "file.xml", Format: "xml"}
	assert.ErrorIs(t, ref.Validate(), reference.ErrUnsupportedFormat)
}
