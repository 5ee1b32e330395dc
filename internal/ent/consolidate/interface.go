package consolidate

// Consolidator merges per-experiment protein identification tables into one
// cross-experiment cluster table.
type Consolidator interface {
	// Evaluate reduces each configured ProteinSummary table to one row per
	// identification rank, keeping only identifications passing critical
	// local FDR control.
	Evaluate() error

	// Merge combines the reduced tables into a single cluster table,
	// unioning rows whose accession sets intersect.
	Merge() error
}
