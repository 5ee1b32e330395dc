// Package sheetio writes the multi-sheet xlsx artifacts produced by the
// quantitation runs, and reads single sheets back for group quantitation.
package sheetio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mzlab/quantprot/internal/ent/table"
)

// Sheet is one worksheet of an output workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// FromTable converts a string Table into a Sheet.
func FromTable(name string, t *table.Table) Sheet {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		rows[i] = cells
	}
	return Sheet{Name: name, Header: t.Header, Rows: rows}
}

// WriteWorkbook writes the sheets, in order, to a single xlsx file. The
// first sheet replaces the default "Sheet1".
func WriteWorkbook(path string, sheets []Sheet) error {
	book := excelize.NewFile()
	defer book.Close()

	for i, sh := range sheets {
		if i == 0 {
			if err := book.SetSheetName("Sheet1", sh.Name); err != nil {
				return err
			}
		} else {
			if _, err := book.NewSheet(sh.Name); err != nil {
				return err
			}
		}

		header := make([]any, len(sh.Header))
		for j, h := range sh.Header {
			header[j] = h
		}
		if err := book.SetSheetRow(sh.Name, "A1", &header); err != nil {
			return err
		}
		for j, row := range sh.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err = book.SetSheetRow(sh.Name, cell, &row); err != nil {
				return err
			}
		}
	}

	return book.SaveAs(path)
}

// ReadSheet reads one worksheet of a workbook into a Table. The first row
// is the header.
func ReadSheet(path, sheet string) (*table.Table, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheetio: sheet %s of %s is empty", sheet, path)
	}

	t := table.New(rows[0])
	for _, row := range rows[1:] {
		for len(row) < len(t.Header) {
			row = append(row, "")
		}
		t.AppendRow(row[:len(t.Header)])
	}
	return t, nil
}
