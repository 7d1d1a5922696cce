package masking

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gdpr-obfuscator/internal/tabular"
)

const DefaultMaskChar = '*'

var ErrUnknownField = errors.New("unknown pii field")

type UnknownFieldError struct {
	Field   string
	Columns []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s %q: dataset columns are %v", ErrUnknownField, e.Field, e.Columns)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// NullPolicy decides what happens to the rest of a row once a null PII value
// is met.
type NullPolicy string

const (
	// NullPolicySkipField leaves the null value alone and keeps masking the
	// remaining fields of the row.
	NullPolicySkipField NullPolicy = "skip_field"
	// NullPolicyStopRow returns the row as soon as a null value is met, so
	// fields listed after it stay unmasked. Kept for output parity with
	// earlier runs of the tool.
	NullPolicyStopRow NullPolicy = "stop_row"
)

func ParseNullPolicy(s string) (NullPolicy, error) {
	switch NullPolicy(s) {
	case "", NullPolicySkipField:
		return NullPolicySkipField, nil
	case NullPolicyStopRow:
		return NullPolicyStopRow, nil
	default:
		return "", fmt.Errorf("invalid null policy %q: must be %q or %q", s, NullPolicySkipField, NullPolicyStopRow)
	}
}

type Stats struct {
	Rows         int
	Masked       int
	SkippedNulls int
	// StoppedRows counts rows cut short by NullPolicyStopRow.
	StoppedRows int
	// IgnoredFields lists requested fields missing from the dataset when
	// strict checking is off.
	IgnoredFields []string
}

type Engine struct {
	maskChar     rune
	nullPolicy   NullPolicy
	strictFields bool
}

type Option func(*Engine)

func WithMaskChar(c rune) Option {
	return func(e *Engine) { e.maskChar = c }
}

func WithNullPolicy(p NullPolicy) Option {
	return func(e *Engine) { e.nullPolicy = p }
}

// WithStrictFields controls whether a requested field that is not a column
// of the dataset fails the run (true, the default) or is ignored.
func WithStrictFields(strict bool) Option {
	return func(e *Engine) { e.strictFields = strict }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		maskChar:     DefaultMaskChar,
		nullPolicy:   NullPolicySkipField,
		strictFields: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaskValue returns a run of mask characters as long as s, counted in runes.
func (e *Engine) MaskValue(s string) string {
	return strings.Repeat(string(e.maskChar), utf8.RuneCountInString(s))
}

// Mask returns a new dataset where every non-null value of fields is
// replaced by its mask. ds is not modified; row count, row order and the
// column set are preserved.
func (e *Engine) Mask(ds *tabular.Dataset, fields []string) (*tabular.Dataset, Stats, error) {
	stats := Stats{Rows: ds.Len()}

	active := make([]string, 0, len(fields))
	for _, f := range fields {
		if ds.HasColumn(f) {
			active = append(active, f)
			continue
		}
		if e.strictFields {
			return nil, Stats{}, &UnknownFieldError{Field: f, Columns: ds.Columns()}
		}
		stats.IgnoredFields = append(stats.IgnoredFields, f)
	}

	out := ds.Map(func(row tabular.Row) tabular.Row {
		for _, f := range active {
			v, _ := row.Get(f)
			if v.IsNull() {
				stats.SkippedNulls++
				if e.nullPolicy == NullPolicyStopRow {
					stats.StoppedRows++
					return row
				}
				continue
			}
			row = row.With(f, tabular.StringValue(e.MaskValue(v.Raw)))
			stats.Masked++
		}
		return row
	})

	return out, stats, nil
}
