package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gdpr-obfuscator/internal/reference"
)

const utf8BOM = "\ufeff"

// decodeCSV treats the first column as the row index: it becomes Row.ID and
// is left out of the column set.
func decodeCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	head[0] = strings.TrimPrefix(head[0], utf8BOM)

	ds, err := NewDataset(reference.FormatCSV, head[0], head[1:])
	if err != nil {
		return nil, err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		values := make([]Value, 0, len(record)-1)
		for _, cell := range record[1:] {
			if cell == "" {
				values = append(values, NullValue())
				continue
			}
			values = append(values, StringValue(cell))
		}
		if err := ds.Append(record[0], values...); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// encodeCSV writes the column set. The index column is written first only
// when keepIndex is set and the dataset has one.
func encodeCSV(w io.Writer, ds *Dataset, keepIndex bool) error {
	cw := csv.NewWriter(w)
	withIndex := keepIndex && ds.IndexColumn != ""

	head := ds.Columns()
	if withIndex {
		head = append([]string{ds.IndexColumn}, head...)
	}
	if err := cw.Write(head); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(head))
	for _, row := range ds.rows {
		cells := record
		if withIndex {
			record[0] = row.ID
			cells = record[1:]
		}
		for i, v := range row.values {
			cells[i] = v.Raw
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
