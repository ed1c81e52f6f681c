package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow/csv"
)

// ReadCSV reads a headered CSV stream into a Table, inferring column
// types from the data. Empty fields and the literals "null"/"NULL" are
// read as nulls.
func ReadCSV(r io.Reader) (*Table, error) {
	rd := csv.NewInferringReader(r,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(true, "", "null", "NULL"),
	)
	defer rd.Release()

	if !rd.Next() {
		if err := rd.Err(); err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		return nil, fmt.Errorf("reading csv: no rows")
	}
	tbl := FromRecord(rd.Record())
	if err := rd.Err(); err != nil {
		tbl.Release()
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return tbl, nil
}

// OpenCSV reads a CSV file from disk into a Table.
func OpenCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}
