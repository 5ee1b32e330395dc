// Package record defines the typed rows flowing through the quantitation
// pipeline.
package record

// Peptide is one filtered peptide identification for a single
// (summary file, tag ratio) run. The derived fields are filled in
// progressively by the pipeline stages and are never shared across runs.
type Peptide struct {
	Expt       string
	N          int
	Unused     float64
	Accessions string
	Spectrum   string

	// Raw reporter-ion ratio and its percent error.
	Ratio    float64
	RatioErr float64

	// Stage 2: peptide initialization.
	LnRatio       float64
	ErrReciprocal float64

	// Stage 4: joined back to the FDR table.
	NormWeight float64
	Wx         float64

	// Stage 7: finalization, requires the run's normalization factor.
	NormRatio   float64
	LnNormRatio float64
	NewLnRatio  float64
}

// Fdr is one row of the per-run FDR table: aggregate statistics for a
// distinct Accessions string. Row order follows the first occurrence of
// each Accessions value in the filtered summary.
type Fdr struct {
	Accessions        string
	NumSpectra        int
	SumErrReciprocal  float64
	ProtSpectralWeight float64
}

// Protein is one row of the per-run protein table: an Fdr row that passed
// the minimum-spectra filter, extended with the normalization and
// significance statistics.
type Protein struct {
	Fdr

	SumWx            float64
	SumNormWeight    float64
	WeightedAvg      float64
	ExpWeightedAvg   float64
	NormProteinRatio float64
	StDev            float64
	TValueUp         float64
	PValueUp         float64
	TValueDown       float64
	PValueDown       float64
}
