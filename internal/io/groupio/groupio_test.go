package groupio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzlab/quantprot/internal/ent/record"
	"github.com/mzlab/quantprot/pkg/config"
)

func TestGroupFileName(t *testing.T) {
	assert.Equal(t, "115-114_Group hkuNoBgCorr.xlsx", GroupFileName("115:114"))
}

func TestRekey(t *testing.T) {
	clusters := map[string]string{
		"P1": "P1; P9",
		"P9": "P1; P9",
		"P3": "P2; P3",
	}
	tests := []struct {
		msg, in, want string
	}{
		{"member rekeyed", "P1", "P1; P9"},
		{"any member matches", "P9", "P1; P9"},
		{"first known member wins", "P3; P9", "P1; P9"},
		{"unknown accession kept", "P7", "P7"},
	}
	for _, v := range tests {
		assert.Equal(t, v.want, rekey(v.in, clusters), v.msg)
	}
}

func pooledFixture() []record.Peptide {
	return []record.Peptide{
		{Expt: "20190301", Accessions: "P1; P9", ErrReciprocal: 0.1,
			LnNormRatio: 0.4},
		{Expt: "20190302", Accessions: "P1; P9", ErrReciprocal: 0.05,
			LnNormRatio: 0.3},
		{Expt: "20190301", Accessions: "P2", ErrReciprocal: 0.2,
			LnNormRatio: -0.1},
	}
}

func TestPoolFdr(t *testing.T) {
	assert := assert.New(t)

	fdr := poolFdr(pooledFixture())
	require.Len(t, fdr, 2)

	assert.Equal("P1; P9", fdr[0].Accessions)
	assert.Equal(2, fdr[0].NumSpectra)
	assert.InDelta(0.15, fdr[0].SumErrReciprocal, 1e-12)
	assert.InDelta(2/0.15, fdr[0].ProtSpectralWeight, 1e-9)

	assert.Equal("P2", fdr[1].Accessions)
	assert.Equal(1, fdr[1].NumSpectra)
}

func TestUpdateWeights(t *testing.T) {
	assert := assert.New(t)

	peptides := pooledFixture()
	fdr := poolFdr(peptides)
	updateWeights(peptides, fdr)

	p := peptides[0]
	assert.InDelta(0.1*(2/0.15), p.NormWeight, 1e-9)
	assert.InDelta(0.4*p.NormWeight, p.Wx, 1e-9)
	assert.Equal(p.Wx, p.NewLnRatio)
}

func TestPoolProteins(t *testing.T) {
	assert := assert.New(t)

	peptides := pooledFixture()
	fdr := poolFdr(peptides)
	updateWeights(peptides, fdr)

	proteins := poolProteins(peptides, fdr, 2)
	require.Len(t, proteins, 1)

	prot := proteins[0]
	assert.Equal("P1; P9", prot.Accessions)
	assert.InDelta(prot.SumWx/prot.SumNormWeight, prot.WeightedAvg, 1e-12)
	assert.InDelta(math.Exp(prot.WeightedAvg), prot.ExpWeightedAvg, 1e-12)

	// The pooled table carries no normalized protein ratio; its cell
	// stays blank.
	assert.True(math.IsNaN(prot.NormProteinRatio))

	// Two spectra leave one degree of freedom, enough for a p-value.
	assert.False(math.IsNaN(prot.PValueUp))
	assert.False(math.IsNaN(prot.PValueDown))
}

func TestPoolProteinsMinSpectra(t *testing.T) {
	peptides := pooledFixture()
	fdr := poolFdr(peptides)
	updateWeights(peptides, fdr)

	proteins := poolProteins(peptides, fdr, 3)
	assert.Empty(t, proteins)
}

// fakeMapper serves a fixed accession to name table.
type fakeMapper map[string]string

func (m fakeMapper) MapNames() error { return nil }
func (m fakeMapper) Open() error     { return nil }
func (m fakeMapper) Close() error    { return nil }
func (m fakeMapper) Lookup(acc string) (string, error) {
	return m[acc], nil
}

func TestOverlayNames(t *testing.T) {
	assert := assert.New(t)

	g := &groupio{
		cfg: config.New(),
		mapper: fakeMapper{
			"P1": "Serum albumin",
			"P9": "Hemoglobin subunit beta",
		},
	}
	proteins := []record.Protein{
		{Fdr: record.Fdr{Accessions: "P1; P9"}},
		{Fdr: record.Fdr{Accessions: "P2"}},
	}
	g.overlayNames(proteins)

	assert.Equal("Serum albumin; Hemoglobin subunit beta",
		proteins[0].Accessions)
	// Accessions without a known name stay as they are.
	assert.Equal("P2", proteins[1].Accessions)
}
