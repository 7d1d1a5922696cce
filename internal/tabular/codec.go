package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gdpr-obfuscator/internal/reference"
)

var ErrParse = errors.New("parse error")

type ParseError struct {
	Format reference.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: content is not valid %s: %v", ErrParse, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Load reads a scratch file and decodes it as the declared format.
func Load(path string, format reference.Format) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

func Decode(r io.Reader, format reference.Format) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch format {
	case reference.FormatCSV:
		ds, err = decodeCSV(r)
	case reference.FormatJSON:
		ds, err = decodeJSON(r)
	default:
		return nil, &reference.UnsupportedFormatError{Format: string(format)}
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return ds, nil
}

// WriteOption tunes how a dataset is serialized.
type WriteOption func(*writeOptions)

type writeOptions struct {
	keepIndex bool
}

// WithIndex makes the CSV writer emit the dataset's index column as the
// first column. By default it is left out.
func WithIndex(keep bool) WriteOption {
	return func(o *writeOptions) { o.keepIndex = keep }
}

// Save serializes ds to path in the dataset's own format.
func Save(path string, ds *Dataset, opts ...WriteOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, ds, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Write(w io.Writer, ds *Dataset, opts ...WriteOption) error {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch ds.Format {
	case reference.FormatCSV:
		return encodeCSV(w, ds, o.keepIndex)
	case reference.FormatJSON:
		return encodeJSON(w, ds)
	default:
		return &reference.UnsupportedFormatError{Format: string(ds.Format)}
	}
}
