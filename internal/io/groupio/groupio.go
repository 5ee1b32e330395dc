// Package groupio pools the per-experiment quantitation outputs and
// recomputes protein statistics over the consolidated accession clusters.
package groupio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnsys"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/group"
	"github.com/mzlab/quantprot/internal/ent/names"
	"github.com/mzlab/quantprot/internal/ent/record"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/io/quantio"
	"github.com/mzlab/quantprot/internal/io/sheetio"
	"github.com/mzlab/quantprot/internal/io/tableio"
	"github.com/mzlab/quantprot/pkg/config"
)

type groupio struct {
	cfg    config.Config
	mapper names.Mapper
}

// New returns a Grouper that reads the per-run peptide sheets from the
// results directory and overlays protein names from the given mapper.
func New(cfg config.Config, mapper names.Mapper) group.Grouper {
	return &groupio{cfg: cfg, mapper: mapper}
}

// QuantifyGroups pools each ratio's peptide rows across every experiment
// and recomputes the protein-level statistics over the consolidated
// clusters. Ratios are independent and run in parallel.
func (g *groupio) QuantifyGroups() error {
	if len(g.cfg.PeptideSummaryFiles) == 0 {
		return config.NewConfigError("no PeptideSummary files configured")
	}

	clusters, err := g.loadClusters()
	if err != nil {
		return err
	}

	if err = gnsys.MakeDir(g.cfg.GroupDir()); err != nil {
		return err
	}

	slog.Info("Starting group quantitation",
		"ratios", len(g.cfg.QuantitationRatios),
		"clusters", humanize.Comma(int64(len(clusters))))

	var mu sync.Mutex
	var ratioErrs []error
	var eg errgroup.Group
	eg.SetLimit(g.cfg.JobsNum)

	for _, ratio := range g.cfg.QuantitationRatios {
		eg.Go(func() error {
			if err := g.processRatio(ratio, clusters); err != nil {
				mu.Lock()
				ratioErrs = append(ratioErrs, fmt.Errorf("%s: %w", ratio, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	if len(ratioErrs) > 0 {
		return errors.Join(ratioErrs...)
	}

	slog.Info("All ratios processed")
	return nil
}

// loadClusters reads the consolidated cluster table and maps every member
// accession to its cluster's joined accession string.
func (g *groupio) loadClusters() (map[string]string, error) {
	path := filepath.Join(g.cfg.MergedDir(), g.cfg.MergedFileName)
	t, err := tableio.ReadTSV(path)
	if err != nil {
		return nil, err
	}

	clusters := make(map[string]string)
	for i := 0; i < t.Len(); i++ {
		joined, err := t.Value(i, schema.ColAccession)
		if err != nil {
			return nil, err
		}
		for _, acc := range strings.Split(joined, accession.JoinSep) {
			if _, ok := clusters[acc]; !ok {
				clusters[acc] = joined
			}
		}
	}
	return clusters, nil
}

// processRatio pools the peptide rows of one ratio, re-keys them by
// cluster, recomputes the aggregate tables and writes the group workbook.
func (g *groupio) processRatio(ratio string, clusters map[string]string) error {
	peptides, err := g.pooledPeptides(ratio, clusters)
	if err != nil {
		return err
	}

	fdr := poolFdr(peptides)
	updateWeights(peptides, fdr)
	proteins := poolProteins(peptides, fdr, g.cfg.MinNumSpectra)
	if len(proteins) == 0 {
		return fmt.Errorf("no protein passed the minimum of %d spectra",
			g.cfg.MinNumSpectra)
	}
	g.overlayNames(proteins)

	slog.Info("Pooled group quantified", "ratio", ratio,
		"peptides", humanize.Comma(int64(len(peptides))),
		"proteins", humanize.Comma(int64(len(proteins))))

	out := filepath.Join(g.cfg.GroupDir(), GroupFileName(ratio))
	return sheetio.WriteWorkbook(out, []sheetio.Sheet{
		pooledPeptideSheet(ratio, peptides),
		quantio.ProteinSheet(proteins),
	})
}

// GroupFileName derives the group workbook name for a tag ratio.
func GroupFileName(ratio string) string {
	return fmt.Sprintf("%s_Group hkuNoBgCorr.xlsx",
		strings.ReplaceAll(ratio, ":", "-"))
}

// pooledPeptides concatenates the finalized peptide sheets of every
// experiment for one ratio and re-keys each row's Accessions value to its
// consolidated cluster.
func (g *groupio) pooledPeptides(ratio string, clusters map[string]string,
) ([]record.Peptide, error) {
	lnNormCol := schema.RatioLnNormCol(ratio)

	var pooled []record.Peptide
	for _, summary := range g.cfg.PeptideSummaryFiles {
		path := filepath.Join(g.cfg.ResultsDir,
			quantio.OutputFileName(summary, ratio))
		t, err := sheetio.ReadSheet(path, schema.SheetPeptide)
		if err != nil {
			return nil, err
		}

		for i := 0; i < t.Len(); i++ {
			expt, err := t.Value(i, schema.ColExpt)
			if err != nil {
				return nil, err
			}
			accs, err := t.Value(i, schema.ColAccessions)
			if err != nil {
				return nil, err
			}
			errRecip, err := t.Float(i, schema.ColErrReciprocal)
			if err != nil {
				return nil, err
			}
			lnNorm, err := t.Float(i, lnNormCol)
			if err != nil {
				return nil, err
			}
			pooled = append(pooled, record.Peptide{
				Expt:          expt,
				Accessions:    rekey(accs, clusters),
				ErrReciprocal: errRecip,
				LnNormRatio:   lnNorm,
			})
		}
	}
	return pooled, nil
}

// rekey substitutes a row's accession string with the joined string of the
// cluster containing its first known member accession.
func rekey(accs string, clusters map[string]string) string {
	for _, acc := range accession.SplitSorted(accs) {
		if joined, ok := clusters[acc]; ok {
			return joined
		}
	}
	return accs
}

// poolFdr rebuilds the FDR table over the pooled, re-keyed peptide rows.
func poolFdr(peptides []record.Peptide) []record.Fdr {
	values := make([]string, len(peptides))
	for i, p := range peptides {
		values[i] = p.Accessions
	}
	order, counts := accession.OrderedCounts(values)

	sums := make(map[string]float64, len(order))
	for _, p := range peptides {
		sums[p.Accessions] += p.ErrReciprocal
	}

	fdr := make([]record.Fdr, len(order))
	for i, accs := range order {
		fdr[i] = record.Fdr{
			Accessions:         accs,
			NumSpectra:         counts[accs],
			SumErrReciprocal:   sums[accs],
			ProtSpectralWeight: float64(counts[accs]) / sums[accs],
		}
	}
	return fdr
}

// updateWeights recomputes the normalized weight with the pooled spectral
// weights. The per-run ln of the normalized ratio stands in for the raw
// ln-ratio when rebuilding wx, since the rows were already normalized
// within their own runs.
func updateWeights(peptides []record.Peptide, fdr []record.Fdr) {
	weights := make(map[string]float64, len(fdr))
	for _, f := range fdr {
		weights[f.Accessions] = f.ProtSpectralWeight
	}
	for i := range peptides {
		p := &peptides[i]
		p.NormWeight = p.ErrReciprocal * weights[p.Accessions]
		p.Wx = p.LnNormRatio * p.NormWeight
		p.NewLnRatio = p.Wx
	}
}

// poolProteins aggregates the pooled rows per cluster and runs the
// significance tests against the weighted average itself; no new
// normalization factor is derived for the pooled set.
func poolProteins(peptides []record.Peptide, fdr []record.Fdr, minSpectra int,
) []record.Protein {
	sumWx := make(map[string]float64)
	sumWeight := make(map[string]float64)
	grouped := make(map[string][]float64)
	for _, p := range peptides {
		sumWx[p.Accessions] += p.Wx
		sumWeight[p.Accessions] += p.NormWeight
		grouped[p.Accessions] = append(grouped[p.Accessions], p.Wx)
	}

	var proteins []record.Protein
	for _, f := range fdr {
		if f.NumSpectra < minSpectra {
			continue
		}
		prot := record.Protein{
			Fdr:              f,
			SumWx:            sumWx[f.Accessions],
			SumNormWeight:    sumWeight[f.Accessions],
			NormProteinRatio: math.NaN(),
		}
		prot.WeightedAvg = prot.SumWx / prot.SumNormWeight
		prot.ExpWeightedAvg = math.Exp(prot.WeightedAvg)
		prot.StDev = stat.StdDev(grouped[f.Accessions], nil)
		quantio.ApplySignificance(&prot, prot.WeightedAvg)
		proteins = append(proteins, prot)
	}
	return proteins
}

// overlayNames replaces each accession token of the protein rows with its
// mapped display name. Replacement is literal and first-match so accession
// IDs containing pattern metacharacters cannot corrupt the output.
func (g *groupio) overlayNames(proteins []record.Protein) {
	if g.mapper == nil {
		return
	}
	for i := range proteins {
		joined := proteins[i].Accessions
		for _, acc := range strings.Split(joined, accession.JoinSep) {
			name, err := g.mapper.Lookup(acc)
			if err != nil {
				slog.Warn("Name lookup failed", "accession", acc, "error", err)
				continue
			}
			if name == "" {
				continue
			}
			joined = strings.Replace(joined, acc, name, 1)
		}
		proteins[i].Accessions = joined
	}
}

// pooledPeptideSheet renders the pooled peptide rows.
func pooledPeptideSheet(ratio string, peptides []record.Peptide) sheetio.Sheet {
	header := []string{
		schema.ColExpt, schema.ColAccessions, schema.ColErrReciprocal,
		schema.RatioLnNormCol(ratio), schema.ColNormWeight, schema.ColWx,
	}
	rows := make([][]any, len(peptides))
	for i, p := range peptides {
		rows[i] = []any{
			p.Expt, p.Accessions, p.ErrReciprocal, p.LnNormRatio,
			p.NormWeight, p.Wx,
		}
	}
	return sheetio.Sheet{Name: schema.SheetPeptide, Header: header, Rows: rows}
}
