package quantprot

import (
	"github.com/mzlab/quantprot/internal/ent/consolidate"
	"github.com/mzlab/quantprot/internal/ent/group"
	"github.com/mzlab/quantprot/internal/ent/names"
	"github.com/mzlab/quantprot/internal/ent/quant"
	"github.com/mzlab/quantprot/pkg/config"
)

// quantprot is an implementation of QuantProt interface.
type quantprot struct {
	cfg config.Config
}

// New creates a new instance of QuantProt.
func New(
	cfg config.Config,
) QuantProt {
	res := quantprot{
		cfg: cfg}
	return &res
}

// Consolidate reduces and merges ProteinSummary files into co-winner
// accession clusters.
func (q *quantprot) Consolidate(c consolidate.Consolidator) error {
	if err := c.Evaluate(); err != nil {
		return err
	}
	return c.Merge()
}

// Quantify runs per-experiment quantitation for every configured ratio.
func (q *quantprot) Quantify(qt quant.Quantifier) error {
	return qt.Quantify()
}

// QuantifyGroups pools quantitation results per ratio.
func (q *quantprot) QuantifyGroups(g group.Grouper) error {
	return g.QuantifyGroups()
}

// MapNames extracts the accession to protein name mapping.
func (q *quantprot) MapNames(m names.Mapper) error {
	return m.MapNames()
}

// GetVersion returns the version of quantprot.
func GetVersion() string {
	return Version
}
