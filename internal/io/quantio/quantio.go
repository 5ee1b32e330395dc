// Package quantio implements the per-file, per-ratio quantitation engine
// over the PeptideSummary tables.
package quantio

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

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/quant"
	"github.com/mzlab/quantprot/internal/ent/record"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/io/fdrio"
	"github.com/mzlab/quantprot/internal/io/sheetio"
	"github.com/mzlab/quantprot/internal/io/tableio"
	"github.com/mzlab/quantprot/pkg/config"
)

// outputInsert tags every generated workbook name; it matches the naming
// of the spreadsheets produced by the legacy pipeline so downstream tooling
// keeps working.
const outputInsert = " hkuNoBgCorr"

type quantio struct {
	cfg config.Config
}

// New returns a Quantifier over the configured PeptideSummary tables.
func New(cfg config.Config) quant.Quantifier {
	return &quantio{cfg: cfg}
}

// OutputFileName derives the workbook name for a summary file and ratio.
// The colon of the ratio is replaced with a hyphen.
func OutputFileName(summaryPath, ratio string) string {
	ratioStr := strings.ReplaceAll(ratio, ":", "-")
	return strings.Replace(filepath.Base(summaryPath), "_PeptideSummary.txt",
		fmt.Sprintf("_%s_PeptideSummary%s.xlsx", ratioStr, outputInsert), 1)
}

// Quantify runs every (file, ratio) unit on a bounded worker pool. Units
// share no state; a failing unit is recorded and its siblings keep going.
func (q *quantio) Quantify() error {
	if len(q.cfg.PeptideSummaryFiles) == 0 {
		return config.NewConfigError("no PeptideSummary files configured")
	}

	if err := gnsys.MakeDir(q.cfg.ResultsDir); err != nil {
		slog.Error("Cannot create results directory", "error", err)
		return err
	}

	slog.Info("Starting quantitation",
		"files", len(q.cfg.PeptideSummaryFiles),
		"ratios", len(q.cfg.QuantitationRatios))

	var mu sync.Mutex
	var unitErrs []error
	var g errgroup.Group
	g.SetLimit(q.cfg.JobsNum)

	for _, path := range q.cfg.PeptideSummaryFiles {
		for _, ratio := range q.cfg.QuantitationRatios {
			g.Go(func() error {
				if err := q.processSummary(path, ratio); err != nil {
					mu.Lock()
					unitErrs = append(unitErrs,
						fmt.Errorf("%s %s: %w", path, ratio, err))
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if len(unitErrs) > 0 {
		return errors.Join(unitErrs...)
	}

	slog.Info("All PeptideSummary files processed")
	return nil
}

// processSummary runs the pipeline for one (summary file, ratio) unit and
// writes the four result sheets to a single workbook.
func (q *quantio) processSummary(path, ratio string) error {
	summary, err := tableio.ReadTSV(path)
	if err != nil {
		return err
	}

	fdrPath, err := fdrio.CompanionPath(path)
	if err != nil {
		return err
	}
	nPassFdr, err := fdrio.PassedCount(fdrPath, q.cfg.CritFdr)
	if err != nil {
		return err
	}

	filtered, err := FilterPeptides(summary, ratio, nPassFdr,
		q.cfg.PeptideConfThreshold)
	if err != nil {
		return err
	}

	run, err := Setup(filtered, ratio, accession.FileID(path), q.cfg.MinNumSpectra)
	if err != nil {
		return err
	}
	run.Finalize(run.Factor)

	slog.Info("Quantified summary",
		"file", filepath.Base(path), "ratio", ratio,
		"peptides", humanize.Comma(int64(len(run.Peptides))),
		"proteins", humanize.Comma(int64(len(run.Proteins))))

	out := filepath.Join(q.cfg.ResultsDir, OutputFileName(path, ratio))
	return sheetio.WriteWorkbook(out, []sheetio.Sheet{
		PeptideSheet(run),
		ProteinSheet(run.Proteins),
		FdrSheet(run.Fdr),
		sheetio.FromTable(schema.SheetPeptideSummary, filtered),
	})
}

// PeptideSheet renders the run's peptide table.
func PeptideSheet(run *Run) sheetio.Sheet {
	header := []string{
		schema.ColExpt, schema.ColN, schema.ColUnused, schema.ColAccessions,
		schema.ColSpectrum, run.Ratio, schema.RatioErrCol(run.Ratio),
		schema.RatioLnCol(run.Ratio), schema.ColErrReciprocal,
		schema.ColNormWeight, schema.ColWx, schema.RatioNormCol(run.Ratio),
		schema.RatioLnNormCol(run.Ratio), schema.ColNewLnRatio,
	}
	rows := make([][]any, len(run.Peptides))
	for i, p := range run.Peptides {
		rows[i] = []any{
			p.Expt, p.N, p.Unused, p.Accessions, p.Spectrum,
			cell(p.Ratio), cell(p.RatioErr), cell(p.LnRatio),
			cell(p.ErrReciprocal), cell(p.NormWeight), cell(p.Wx),
			cell(p.NormRatio), cell(p.LnNormRatio), cell(p.NewLnRatio),
		}
	}
	return sheetio.Sheet{Name: schema.SheetPeptide, Header: header, Rows: rows}
}

// FdrSheet renders a run's FDR table.
func FdrSheet(fdr []record.Fdr) sheetio.Sheet {
	header := []string{
		schema.ColAccessions, schema.ColNumSpectra,
		schema.ColSumErrReciprocal, schema.ColProtSpectralWeight,
	}
	rows := make([][]any, len(fdr))
	for i, f := range fdr {
		rows[i] = []any{
			f.Accessions, f.NumSpectra,
			cell(f.SumErrReciprocal), cell(f.ProtSpectralWeight),
		}
	}
	return sheetio.Sheet{Name: schema.SheetFdr, Header: header, Rows: rows}
}

// ProteinSheet renders a run's protein table.
func ProteinSheet(prots []record.Protein) sheetio.Sheet {
	header := []string{
		schema.ColAccessions, schema.ColNumSpectra,
		schema.ColSumErrReciprocal, schema.ColProtSpectralWeight,
		schema.ColSumWx, schema.ColSumNormWeight, schema.ColWeightedAvg,
		schema.ColExpWeightedAvg, schema.ColNormProteinRatio, schema.ColStDev,
		schema.ColTValueUp, schema.ColPValueUp,
		schema.ColTValueDown, schema.ColPValueDown,
	}
	rows := make([][]any, len(prots))
	for i, p := range prots {
		rows[i] = []any{
			p.Accessions, p.NumSpectra,
			cell(p.SumErrReciprocal), cell(p.ProtSpectralWeight),
			cell(p.SumWx), cell(p.SumNormWeight), cell(p.WeightedAvg),
			cell(p.ExpWeightedAvg), cell(p.NormProteinRatio), cell(p.StDev),
			cell(p.TValueUp), cell(p.PValueUp),
			cell(p.TValueDown), cell(p.PValueDown),
		}
	}
	return sheetio.Sheet{Name: schema.SheetProtein, Header: header, Rows: rows}
}

// cell maps NaN to an empty cell, the way spreadsheet consumers expect
// missing statistics to appear.
func cell(v float64) any {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
