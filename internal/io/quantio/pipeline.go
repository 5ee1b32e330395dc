package quantio

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/record"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/ent/table"
	"github.com/mzlab/quantprot/pkg/config"
)

// Run holds the derived tables of one (PeptideSummary, tag ratio) unit.
// Setup computes everything up to the normalization factor; the remaining
// columns depend on that factor and are only filled in by Finalize, which
// takes it as an explicit argument.
type Run struct {
	Ratio    string
	Expt     string
	Peptides []record.Peptide
	Fdr      []record.Fdr
	Proteins []record.Protein

	// Factor is the run's normalization factor: the median of the
	// exponentiated weighted averages over all protein rows. It is
	// computed once by Setup and must not be re-derived afterwards.
	Factor float64

	finalized bool
}

// FilterPeptides keeps the summary rows usable for quantitation of the
// given ratio: identifications passing local FDR control (N at or below
// maxN), at or above the confidence threshold, flagged as used, and with a
// quantifiable ratio value.
func FilterPeptides(t *table.Table, ratio string, maxN int, confThreshold float64,
) (*table.Table, error) {
	errCol := schema.RatioErrCol(ratio)
	for _, col := range []string{
		schema.ColN, schema.ColConf, schema.ColUsed, schema.ColAccessions,
		ratio, errCol,
	} {
		if !t.HasCol(col) {
			return nil, config.NewConfigError(fmt.Sprintf(
				"peptide table missing required column %q", col))
		}
	}

	res := table.New(t.Header)
	for i := 0; i < t.Len(); i++ {
		n, err := t.Int(i, schema.ColN)
		if err != nil {
			return nil, err
		}
		conf, err := t.Float(i, schema.ColConf)
		if err != nil {
			return nil, err
		}
		used, err := t.Float(i, schema.ColUsed)
		if err != nil {
			return nil, err
		}
		val, err := t.Float(i, ratio)
		if err != nil {
			return nil, err
		}
		if n <= maxN && conf >= confThreshold && used == 1 &&
			val != schema.UnquantifiableRatio {
			res.AppendRow(t.Rows[i])
		}
	}
	return res, nil
}

// Setup runs the factor-independent stages over a filtered summary table:
// peptide projection, the FDR table, the peptide/FDR join, the protein
// table, and finally the normalization factor.
func Setup(filtered *table.Table, ratio, expt string, minSpectra int) (*Run, error) {
	run := &Run{Ratio: ratio, Expt: expt}

	if err := run.setupPeptides(filtered); err != nil {
		return nil, err
	}
	run.generateFdr()
	run.updatePeptides()
	if err := run.setupProteins(minSpectra); err != nil {
		return nil, err
	}
	return run, nil
}

// setupPeptides projects the filtered summary to the peptide columns and
// computes the ln-ratio and reciprocal error.
func (r *Run) setupPeptides(t *table.Table) error {
	errCol := schema.RatioErrCol(r.Ratio)
	r.Peptides = make([]record.Peptide, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		n, err := t.Int(i, schema.ColN)
		if err != nil {
			return err
		}
		unused, err := t.Float(i, schema.ColUnused)
		if err != nil {
			return err
		}
		accs, err := t.Value(i, schema.ColAccessions)
		if err != nil {
			return err
		}
		spectrum, err := t.Value(i, schema.ColSpectrum)
		if err != nil {
			return err
		}
		ratio, err := t.Float(i, r.Ratio)
		if err != nil {
			return err
		}
		ratioErr, err := t.Float(i, errCol)
		if err != nil {
			return err
		}
		r.Peptides = append(r.Peptides, record.Peptide{
			Expt:          r.Expt,
			N:             n,
			Unused:        unused,
			Accessions:    accs,
			Spectrum:      spectrum,
			Ratio:         ratio,
			RatioErr:      ratioErr,
			LnRatio:       math.Log(ratio),
			ErrReciprocal: 1 / ratioErr,
		})
	}
	return nil
}

// generateFdr groups the peptides by their Accessions string, preserving
// first-occurrence order, and computes the per-group spectral weight.
func (r *Run) generateFdr() {
	values := make([]string, len(r.Peptides))
	for i, p := range r.Peptides {
		values[i] = p.Accessions
	}
	order, counts := accession.OrderedCounts(values)

	sums := make(map[string]float64, len(order))
	for _, p := range r.Peptides {
		sums[p.Accessions] += p.ErrReciprocal
	}

	r.Fdr = make([]record.Fdr, len(order))
	for i, accs := range order {
		r.Fdr[i] = record.Fdr{
			Accessions:         accs,
			NumSpectra:         counts[accs],
			SumErrReciprocal:   sums[accs],
			ProtSpectralWeight: float64(counts[accs]) / sums[accs],
		}
	}
}

// updatePeptides joins the peptides back to the FDR table and computes the
// normalized weight and the weighted ln-ratio wx.
func (r *Run) updatePeptides() {
	weights := make(map[string]float64, len(r.Fdr))
	for _, f := range r.Fdr {
		weights[f.Accessions] = f.ProtSpectralWeight
	}
	for i := range r.Peptides {
		p := &r.Peptides[i]
		p.NormWeight = p.ErrReciprocal * weights[p.Accessions]
		p.Wx = p.LnRatio * p.NormWeight
	}
}

// setupProteins restricts the FDR rows to those with enough spectra,
// aggregates the peptide weights per accession group, and computes the
// run's normalization factor.
func (r *Run) setupProteins(minSpectra int) error {
	sumWx := make(map[string]float64)
	sumWeight := make(map[string]float64)
	for _, p := range r.Peptides {
		sumWx[p.Accessions] += p.Wx
		sumWeight[p.Accessions] += p.NormWeight
	}

	r.Proteins = r.Proteins[:0]
	for _, f := range r.Fdr {
		if f.NumSpectra < minSpectra {
			continue
		}
		prot := record.Protein{
			Fdr:           f,
			SumWx:         sumWx[f.Accessions],
			SumNormWeight: sumWeight[f.Accessions],
		}
		prot.WeightedAvg = prot.SumWx / prot.SumNormWeight
		prot.ExpWeightedAvg = math.Exp(prot.WeightedAvg)
		r.Proteins = append(r.Proteins, prot)
	}

	if len(r.Proteins) == 0 {
		return fmt.Errorf(
			"no protein passed the minimum of %d spectra", minSpectra)
	}

	expAvgs := make([]float64, len(r.Proteins))
	for i, prot := range r.Proteins {
		expAvgs[i] = prot.ExpWeightedAvg
	}
	r.Factor = median(expAvgs)

	for i := range r.Proteins {
		r.Proteins[i].NormProteinRatio = r.Proteins[i].ExpWeightedAvg / r.Factor
	}
	return nil
}

// Finalize computes the factor-dependent peptide columns and the protein
// significance statistics. The normalization factor is passed explicitly:
// it must come from Setup and must not be recomputed after the protein
// table was built.
func (r *Run) Finalize(factor float64) {
	for i := range r.Peptides {
		p := &r.Peptides[i]
		p.NormRatio = p.Ratio / factor
		p.LnNormRatio = math.Log(p.NormRatio)
		p.NewLnRatio = p.LnNormRatio * p.NormWeight
	}

	grouped := make(map[string][]float64, len(r.Proteins))
	for _, p := range r.Peptides {
		grouped[p.Accessions] = append(grouped[p.Accessions], p.NewLnRatio)
	}

	for i := range r.Proteins {
		prot := &r.Proteins[i]
		prot.StDev = stat.StdDev(grouped[prot.Accessions], nil)
		pivot := math.Log(prot.NormProteinRatio)
		ApplySignificance(prot, pivot)
	}
	r.finalized = true
}

// ApplySignificance fills in the up/down t- and p-values of one protein
// row, testing the pivot ln-ratio against the two directional factors.
func ApplySignificance(prot *record.Protein, pivot float64) {
	se := prot.StDev / math.Sqrt(prot.SumNormWeight)
	df := float64(prot.NumSpectra - 1)

	prot.TValueUp = (pivot - math.Log(schema.TUpFactor)) / se
	prot.TValueDown = (pivot - math.Log(schema.TDownFactor)) / se
	prot.PValueUp = 1 - tCDF(prot.TValueUp, df)
	prot.PValueDown = tCDF(prot.TValueDown, df)
}

// tCDF is the Student's t cumulative distribution. At zero or negative
// degrees of freedom the distribution is undefined and NaN is returned,
// matching the behavior quantitation consumers already rely on.
func tCDF(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return dist.CDF(t)
}

// median returns the middle value of xs, averaging the two central values
// for even counts. gonum's quantile estimators interpolate the empirical
// CDF differently, and the factor is a reproducibility contract, so the
// midpoint convention is computed directly.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
