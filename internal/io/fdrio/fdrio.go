// Package fdrio resolves the number of protein identifications passing
// critical local FDR control, read from the FDR companion workbook that
// ProteinPilot writes next to each summary table.
package fdrio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// fdrSheet is the worksheet holding the protein-level FDR summary.
const fdrSheet = "Protein Level Summary"

// DefaultThreshold is the critical FDR percentage used when none is
// requested explicitly.
const DefaultThreshold = 5

// criticalFdrCells maps a critical FDR percentage to the cell holding the
// count of identifications passing it.
var criticalFdrCells = map[int]string{
	1:  "C6",
	5:  "C7",
	10: "C8",
}

// markers are the file-name tokens identifying ProteinPilot summary tables.
var markers = []string{"ProteinSummary", "PeptideSummary"}

// MarkerError indicates a summary file name without a recognized marker
// token, so no FDR companion path can be derived.
type MarkerError struct {
	Path string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("file name %s does not contain %s",
		e.Path, strings.Join(markers, " or "))
}

// ThresholdError indicates a critical FDR value outside the enumerated set.
type ThresholdError struct {
	Threshold int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("critical FDR value %d not in acceptable set of 1, 5, 10",
		e.Threshold)
}

// CompanionPath derives the path of the FDR workbook belonging to a summary
// table by substituting everything from the marker token onward.
func CompanionPath(summaryPath string) (string, error) {
	for _, m := range markers {
		if idx := strings.Index(summaryPath, m); idx != -1 {
			return summaryPath[:idx] + "_FDR.xlsx", nil
		}
	}
	return "", &MarkerError{Path: summaryPath}
}

// PassedCount reads the count of identifications passing the given critical
// FDR percentage from the companion workbook.
func PassedCount(fdrPath string, threshold int) (int, error) {
	cell, ok := criticalFdrCells[threshold]
	if !ok {
		return 0, &ThresholdError{Threshold: threshold}
	}

	book, err := excelize.OpenFile(fdrPath)
	if err != nil {
		return 0, err
	}
	defer book.Close()

	val, err := book.GetCellValue(fdrSheet, cell)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("fdrio: %s!%s of %s: %w", fdrSheet, cell, fdrPath, err)
	}
	return int(f), nil
}
