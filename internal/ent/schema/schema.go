// Package schema holds the column names and fixed constants shared by every
// stage of the quantitation pipeline, so that the stages cannot drift apart
// on field naming.
package schema

import "fmt"

// Columns of the ProteinSummary and PeptideSummary input tables.
const (
	ColN          = "N"
	ColTotal      = "Total"
	ColUnused     = "Unused"
	ColAccession  = "Accession"
	ColAccessions = "Accessions"
	ColSpectrum   = "Spectrum"
	ColConf       = "Conf"
	ColUsed       = "Used"
	ColName       = "Name"
)

// Columns added by consolidation and quantitation.
const (
	ColExprDate = "Expr Date"
	ColExpt     = "Expt"
)

// Peptide sheet columns.
const (
	ColErrReciprocal = "1/%Err"
	ColNormWeight    = "Normalized weight"
	ColWx            = "wx"
	ColNewLnRatio    = "new ln ratio"
)

// FDR sheet columns.
const (
	ColNumSpectra         = "No. of spectra"
	ColSumErrReciprocal   = "Sum of (1/%Err)"
	ColProtSpectralWeight = "Protein spectral weight const"
)

// Protein sheet columns.
const (
	ColSumWx            = "Sum of wx"
	ColSumNormWeight    = "Sum of normalized weight"
	ColWeightedAvg      = "Weighted average"
	ColExpWeightedAvg   = "exp(weighted average)"
	ColNormProteinRatio = "Normalized protein ratio"
	ColStDev            = "Standard deviation"
	ColTValueUp         = "t-value (up)"
	ColPValueUp         = "p-value (up)"
	ColTValueDown       = "t-value (down)"
	ColPValueDown       = "p-value (down)"
)

// Output sheet names.
const (
	SheetPeptide        = "Peptide"
	SheetProtein        = "Protein"
	SheetFdr            = "FDR with 1 spectra"
	SheetPeptideSummary = "Peptide Summary"
)

// Directional factors for the up/down significance tests.
const (
	TUpFactor   = 1.23
	TDownFactor = 0.81
)

// UnquantifiableRatio is the sentinel value ProteinPilot assigns to
// peptides without a usable reporter-ion ratio.
const UnquantifiableRatio = 100.0

// iTRAQ reporter-ion tag labels accepted in quantitation ratios.
var ITraqTags = map[string]struct{}{
	"113": {},
	"114": {},
	"115": {},
	"116": {},
	"117": {},
	"118": {},
	"119": {},
	"121": {},
}

// RatioErrCol returns the percent-error column name for a tag ratio.
func RatioErrCol(ratio string) string {
	return fmt.Sprintf("%%Err %s", ratio)
}

// RatioLnCol returns the ln-ratio column name for a tag ratio.
func RatioLnCol(ratio string) string {
	return fmt.Sprintf("ln(%s)", ratio)
}

// RatioNormCol returns the normalized-ratio column name for a tag ratio.
func RatioNormCol(ratio string) string {
	return fmt.Sprintf("normalized %s", ratio)
}

// RatioLnNormCol returns the ln of the normalized-ratio column name.
func RatioLnNormCol(ratio string) string {
	return fmt.Sprintf("ln(normalized %s)", ratio)
}
