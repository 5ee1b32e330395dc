package quantprot

import (
	"github.com/mzlab/quantprot/internal/ent/consolidate"
	"github.com/mzlab/quantprot/internal/ent/group"
	"github.com/mzlab/quantprot/internal/ent/names"
	"github.com/mzlab/quantprot/internal/ent/quant"
)

// QuantProt is an interface for consolidating identification results and
// quantifying iTRAQ protein ratios.
type QuantProt interface {
	// Consolidate reduces ProteinSummary files below the critical FDR and
	// merges them into co-winner accession clusters.
	Consolidate(consolidate.Consolidator) error

	// Quantify runs the per-experiment quantitation of PeptideSummary
	// files for every configured tag ratio.
	Quantify(quant.Quantifier) error

	// QuantifyGroups pools per-experiment quantitation results per ratio
	// over the consolidated accession clusters.
	QuantifyGroups(group.Grouper) error

	// MapNames extracts an accession to protein name mapping from the
	// ProteinSummary files.
	MapNames(names.Mapper) error
}
