package reference

import (
	"errors"
	"fmt"
	"path"
	"regexp"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// SupportedFormats lists the extensions the pipeline can load and write.
var SupportedFormats = []Format{FormatCSV, FormatJSON}

var (
	ErrMalformedReference        = errors.New("malformed storage reference")
	ErrInvalidReferenceStructure = errors.New("invalid storage reference structure")
	ErrUnsupportedFormat         = errors.New("unsupported file format")
)

// s3://<bucket>/<dir>/.../<name>.<ext>; at least one directory segment is required.
var referencePattern = regexp.MustCompile(`^s3://([^/]+)/(.+/([^/]+\.([a-z]+)))$`)

type MalformedReferenceError struct {
	Input string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("%s: %q does not match s3://<bucket>/<path>/<name>.<ext>", ErrMalformedReference, e.Input)
}

func (e *MalformedReferenceError) Is(target error) bool { return target == ErrMalformedReference }

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s %q: use format in %v", ErrUnsupportedFormat, e.Format, SupportedFormats)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// Reference is a decomposed storage URI.
type Reference struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	ObjectName string `json:"object_name"`
	Format     Format `json:"format"`
}

// Parse splits a storage URI into bucket, key, object name and format.
// Structure is checked before the extension, so a reference without a
// directory segment fails as malformed even when its extension is unsupported.
func Parse(s string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, &MalformedReferenceError{Input: s}
	}

	format := Format(m[4])
	if !format.Valid() {
		return Reference{}, &UnsupportedFormatError{Format: m[4]}
	}

	return Reference{
		Bucket:     m[1],
		Key:        m[2],
		ObjectName: m[3],
		Format:     format,
	}, nil
}

// Validate reports whether r carries every part a stage needs. The zero
// Reference returned by a failed Parse never validates.
func (r Reference) Validate() error {
	if r.Bucket == "" || r.Key == "" || r.ObjectName == "" {
		return fmt.Errorf("%w: bucket=%q key=%q object=%q", ErrInvalidReferenceStructure, r.Bucket, r.Key, r.ObjectName)
	}
	if path.Base(r.Key) != r.ObjectName || path.Dir(r.Key) == "." {
		return fmt.Errorf("%w: object %q is not the last segment of key %q", ErrInvalidReferenceStructure, r.ObjectName, r.Key)
	}
	if !r.Format.Valid() {
		return &UnsupportedFormatError{Format: string(r.Format)}
	}
	return nil
}

// Dir returns the key's directory, without a trailing slash.
func (r Reference) Dir() string {
	return path.Dir(r.Key)
}

func (r Reference) String() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

func (f Format) Valid() bool {
	for _, s := range SupportedFormats {
		if f == s {
			return true
		}
	}
	return false
}
