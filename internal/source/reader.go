package source

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadRows streams the header-having delimited file in r row by row,
// invoking fn for each RawRow. Iteration stops on the first fn error.
//
// Rows are delivered one at a time so callers can assemble fixed-size pages
// without buffering the whole file. Short records read missing columns as
// empty string; extra columns beyond the header are ignored.
func ReadRows(r io.Reader, fn func(RawRow) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("source file is empty")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	copy(cols, header)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		row := make(RawRow, len(cols))
		for i, col := range cols {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
