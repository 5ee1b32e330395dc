// Package tableio reads and writes the tab-separated summary tables.
package tableio

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mzlab/quantprot/internal/ent/table"
)

// ReadTSV parses a tab-separated file into a Table. The first line is the
// header. Rows may have ragged lengths (ProteinPilot pads unevenly); short
// rows are extended with empty cells.
func ReadTSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tableio: %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tableio: %s: empty file", path)
	}

	t := table.New(records[0])
	for _, row := range records[1:] {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.AppendRow(row[:len(t.Header)])
	}
	return t, nil
}

// WriteTSV writes a Table to path as a tab-separated file with a header
// line.
func WriteTSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err = w.Write(t.Header); err != nil {
		return err
	}
	return w.WriteAll(t.Rows)
}

// WriteTSVRows writes rows to path as a headerless tab-separated file.
func WriteTSVRows(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	return w.WriteAll(rows)
}
