package tabular

import (
	"errors"
	"fmt"
	"io"

	"gdpr-obfuscator/internal/reference"

	"github.com/valyala/fastjson"
)

// decodeJSON accepts record orientation ([{col: v}, ...]) and column
// orientation ({col: {index: v}}). Key order is kept as it appears in the
// document, which encoding/json maps cannot do.
func decodeJSON(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var p fastjson.Parser
	doc, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	switch doc.Type() {
	case fastjson.TypeArray:
		return decodeRecords(doc)
	case fastjson.TypeObject:
		return decodeColumns(doc)
	default:
		return nil, fmt.Errorf("expected an array of records or an object of columns, got %s", doc.Type())
	}
}

func decodeRecords(doc *fastjson.Value) (*Dataset, error) {
	items, _ := doc.Array()

	var columns []string
	seen := make(map[string]bool)
	objects := make([]*fastjson.Object, 0, len(items))

	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		obj.Visit(func(key []byte, _ *fastjson.Value) {
			k := string(key)
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		})
		objects = append(objects, obj)
	}

	ds, err := NewDataset(reference.FormatJSON, "", columns)
	if err != nil {
		return nil, err
	}

	for i, obj := range objects {
		values := make([]Value, len(columns))
		for c, name := range columns {
			values[c] = fromJSON(obj.Get(name))
		}
		if err := ds.Append(fmt.Sprint(i), values...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func decodeColumns(doc *fastjson.Value) (*Dataset, error) {
	root, _ := doc.Object()

	var (
		columns []string
		index   []string
		cols    []*fastjson.Object
		walkErr error
	)
	seen := make(map[string]bool)

	root.Visit(func(key []byte, v *fastjson.Value) {
		if walkErr != nil {
			return
		}
		col, err := v.Object()
		if err != nil {
			walkErr = fmt.Errorf("column %q: %w", key, err)
			return
		}
		columns = append(columns, string(key))
		cols = append(cols, col)
		col.Visit(func(idx []byte, _ *fastjson.Value) {
			k := string(idx)
			if !seen[k] {
				seen[k] = true
				index = append(index, k)
			}
		})
	})
	if walkErr != nil {
		return nil, walkErr
	}

	ds, err := NewDataset(reference.FormatJSON, "", columns)
	if err != nil {
		return nil, err
	}

	for _, id := range index {
		values := make([]Value, len(columns))
		for c, col := range cols {
			values[c] = fromJSON(col.Get(id))
		}
		if err := ds.Append(id, values...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func fromJSON(v *fastjson.Value) Value {
	if v == nil {
		return NullValue()
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return NullValue()
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return StringValue(string(b))
	case fastjson.TypeNumber:
		return NumberValue(v.String())
	case fastjson.TypeTrue:
		return BoolValue(true)
	case fastjson.TypeFalse:
		return BoolValue(false)
	default:
		return Value{Raw: v.String(), Kind: Composite}
	}
}

func encodeJSON(w io.Writer, ds *Dataset) error {
	var a fastjson.Arena
	out := a.NewArray()

	for i, row := range ds.rows {
		obj := a.NewObject()
		for c, name := range ds.h.names {
			v, err := toJSON(&a, row.values[c])
			if err != nil {
				return fmt.Errorf("row %s column %q: %w", row.ID, name, err)
			}
			obj.Set(name, v)
		}
		out.SetArrayItem(i, obj)
	}

	_, err := w.Write(out.MarshalTo(nil))
	return err
}

func toJSON(a *fastjson.Arena, v Value) (*fastjson.Value, error) {
	switch v.Kind {
	case Null:
		return a.NewNull(), nil
	case String:
		return a.NewString(v.Raw), nil
	case Number:
		return a.NewNumberString(v.Raw), nil
	case Bool:
		if v.Raw == "true" {
			return a.NewTrue(), nil
		}
		return a.NewFalse(), nil
	case Composite:
		return fastjson.Parse(v.Raw)
	default:
		return nil, errors.New("unknown value kind")
	}
}
