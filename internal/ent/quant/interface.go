package quant

// Quantifier runs the per-file, per-ratio quantitation pipeline over the
// configured PeptideSummary tables.
type Quantifier interface {
	// Quantify processes every (PeptideSummary file, tag ratio) pair and
	// writes one workbook per pair. Failing pairs do not stop the others;
	// their errors are reported together after the batch.
	Quantify() error
}
