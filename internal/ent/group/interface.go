package group

// Grouper pools the per-experiment quantitation outputs and recomputes
// protein statistics over the consolidated accession clusters.
type Grouper interface {
	// QuantifyGroups processes every configured tag ratio over the pooled
	// peptide rows of all experiments.
	QuantifyGroups() error
}
