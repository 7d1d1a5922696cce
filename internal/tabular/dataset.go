package tabular

import (
	"fmt"

	"gdpr-obfuscator/internal/reference"
)

type Kind int

const (
	Null Kind = iota
	String
	Number
	Bool
	// Composite holds a nested JSON array or object as raw JSON text.
	Composite
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single cell. Raw is the value's string rendering: the CSV cell
// text, the unquoted JSON string, or the JSON literal for numbers, bools and
// composites.
type Value struct {
	Raw  string
	Kind Kind
}

func NullValue() Value           { return Value{Kind: Null} }
func StringValue(s string) Value { return Value{Raw: s, Kind: String} }
func NumberValue(s string) Value { return Value{Raw: s, Kind: Number} }
func (v Value) IsNull() bool     { return v.Kind == Null }
func (v Value) String() string   { return v.Raw }

func BoolValue(b bool) Value {
	if b {
		return Value{Raw: "true", Kind: Bool}
	}
	return Value{Raw: "false", Kind: Bool}
}

type header struct {
	names []string
	pos   map[string]int
}

func newHeader(names []string) (*header, error) {
	h := &header{names: append([]string(nil), names...), pos: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := h.pos[n]; dup {
			return nil, fmt.Errorf("duplicate column %q", n)
		}
		h.pos[n] = i
	}
	return h, nil
}

// Row is an ordered column -> value mapping. Rows are values: With returns a
// copy and leaves the receiver untouched.
type Row struct {
	ID     string
	h      *header
	values []Value
}

func (r Row) Columns() []string {
	return append([]string(nil), r.h.names...)
}

func (r Row) Get(column string) (Value, bool) {
	i, ok := r.h.pos[column]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

func (r Row) Values() []Value {
	return append([]Value(nil), r.values...)
}

// With returns a copy of r with column set to v. Unknown columns are ignored
// since the column set is fixed once a dataset is loaded.
func (r Row) With(column string, v Value) Row {
	i, ok := r.h.pos[column]
	if !ok {
		return r
	}
	values := append([]Value(nil), r.values...)
	values[i] = v
	return Row{ID: r.ID, h: r.h, values: values}
}

// Dataset is a loaded table with a fixed column set.
type Dataset struct {
	Format reference.Format
	// IndexColumn names the CSV row-identifier column. It is not part of
	// Columns and is only written back when asked for (WithIndex).
	IndexColumn string

	h    *header
	rows []Row
}

func NewDataset(format reference.Format, indexColumn string, columns []string) (*Dataset, error) {
	h, err := newHeader(columns)
	if err != nil {
		return nil, err
	}
	return &Dataset{Format: format, IndexColumn: indexColumn, h: h}, nil
}

func (d *Dataset) Columns() []string {
	return append([]string(nil), d.h.names...)
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.h.pos[name]
	return ok
}

func (d *Dataset) Len() int { return len(d.rows) }

func (d *Dataset) Row(i int) Row { return d.rows[i] }

func (d *Dataset) Rows() []Row {
	return append([]Row(nil), d.rows...)
}

// Append adds a row whose values follow Columns order.
func (d *Dataset) Append(id string, values ...Value) error {
	if len(values) != len(d.h.names) {
		return fmt.Errorf("row %q has %d values, expected %d", id, len(values), len(d.h.names))
	}
	d.rows = append(d.rows, Row{ID: id, h: d.h, values: append([]Value(nil), values...)})
	return nil
}

// Map builds a new dataset with the same columns whose rows are fn applied to
// each row of d, in order.
func (d *Dataset) Map(fn func(Row) Row) *Dataset {
	out := &Dataset{Format: d.Format, IndexColumn: d.IndexColumn, h: d.h, rows: make([]Row, 0, len(d.rows))}
	for _, r := range d.rows {
		nr := fn(r)
		nr.h = d.h
		out.rows = append(out.rows, nr)
	}
	return out
}
