package consolidio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/table"
	"github.com/mzlab/quantprot/internal/io/tableio"
	"github.com/mzlab/quantprot/pkg/config"
)

func TestReduce(t *testing.T) {
	assert := assert.New(t)

	tbl := table.New([]string{"N", "Total", "Accession"})
	tbl.AppendRow([]string{"1", "159.0", "P2"})
	tbl.AppendRow([]string{"1", "159.00", "P1"})
	tbl.AppendRow([]string{"1", "100", "P3"})
	tbl.AppendRow([]string{"2", "80", "P4"})
	tbl.AppendRow([]string{"3", "70", "P5"})

	reduced, err := Reduce(tbl, 2)
	require.Nil(t, err)

	// One row per rank group; rank 3 is beyond the FDR cutoff.
	assert.Equal(2, reduced.Len())

	// Rows sharing the top Total are co-winners; "159.0" and "159.00"
	// count as equal and the joined accessions come out sorted.
	acc, _ := reduced.Value(0, "Accession")
	assert.Equal("P1; P2", acc)

	acc, _ = reduced.Value(1, "Accession")
	assert.Equal("P4", acc)
}

func TestReduceMissingColumn(t *testing.T) {
	tbl := table.New([]string{"N", "Accession"})
	_, err := Reduce(tbl, 5)
	var cerr *config.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func sets(vals ...string) []accession.Set {
	res := make([]accession.Set, len(vals))
	for i, v := range vals {
		res[i] = accession.NewSet(v, accession.JoinSep)
	}
	return res
}

func TestDedupBackward(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		msg      string
		in       []accession.Set
		wantKeep []bool
		wantSets []string
	}{
		{
			"disjoint rows untouched",
			sets("P1", "P2", "P3"),
			[]bool{true, true, true},
			[]string{"P1", "P2", "P3"},
		},
		{
			"late overlap folds into every earlier match",
			sets("P1", "P2", "P1; P2"),
			[]bool{true, false, false},
			[]string{"P1; P2", "", ""},
		},
		{
			"chained overlap",
			sets("P1", "P2", "P2; P3", "P3; P4"),
			[]bool{true, true, false, false},
			[]string{"P1", "P2; P3", "", ""},
		},
	}

	for _, v := range tests {
		in := make([]accession.Set, len(v.in))
		copy(in, v.in)
		keep := dedupBackward(in)
		assert.Equal(v.wantKeep, keep, v.msg)
		for i, want := range v.wantSets {
			if !keep[i] {
				continue
			}
			assert.Equal(want, in[i].Join(), v.msg)
		}
	}
}

func TestDedupBackwardKeptDisjoint(t *testing.T) {
	in := sets("P1; P2", "P2; P3", "P4", "P3; P5", "P5; P6")
	keep := dedupBackward(in)

	var kept []accession.Set
	for i := range in {
		if keep[i] {
			kept = append(kept, in[i])
		}
	}
	for i := range kept {
		for j := i + 1; j < len(kept); j++ {
			assert.False(t, kept[i].Intersects(kept[j]),
				"kept clusters %d and %d overlap", i, j)
		}
	}
}

func TestEvaluateNoFiles(t *testing.T) {
	c := New(config.New())
	err := c.Evaluate()
	var cerr *config.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

// writeSummary writes a tab-separated ProteinSummary fixture and its FDR
// companion workbook.
func writeSummary(t *testing.T, dir, name string, passed int, rows [][]string) string {
	t.Helper()

	tbl := table.New([]string{"N", "Total", "Accession"})
	for _, r := range rows {
		tbl.AppendRow(r)
	}
	path := filepath.Join(dir, name)
	require.Nil(t, tableio.WriteTSV(path, tbl))

	book := excelize.NewFile()
	defer book.Close()
	_, err := book.NewSheet("Protein Level Summary")
	require.Nil(t, err)
	require.Nil(t, book.SetCellInt("Protein Level Summary", "C7", int64(passed)))
	fdrPath := strings.Replace(path, "ProteinSummary.txt", "_FDR.xlsx", 1)
	require.Nil(t, book.SaveAs(fdrPath))

	return path
}

func TestEvaluateAndMerge(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	fileA := writeSummary(t, dir, "20190301_ProteinSummary.txt", 2, [][]string{
		{"1", "100", "P1"},
		{"1", "100", "P2"},
		{"2", "90", "P5"},
	})
	fileB := writeSummary(t, dir, "20190302_ProteinSummary.txt", 2, [][]string{
		{"1", "95", "P3"},
		{"1", "95", "P2"},
		{"2", "50", "P6"},
	})

	cfg := config.New(
		config.OptProteinSummaryFiles([]string{fileA, fileB}),
		config.OptResultsDir(filepath.Join(dir, "results")),
		config.OptJobsNum(2),
	)

	c := New(cfg)
	require.Nil(t, c.Evaluate())
	require.Nil(t, c.Merge())

	merged, err := tableio.ReadTSV(
		filepath.Join(cfg.MergedDir(), cfg.MergedFileName))
	require.Nil(t, err)

	assert.Equal([]string{"Expr Date", "N", "Total", "Accession"}, merged.Header)
	assert.Equal(3, merged.Len())

	// The shared co-winner P2 pulls the top clusters of both experiments
	// together; the first experiment's row wins.
	acc, _ := merged.Value(0, "Accession")
	assert.Equal("P1; P2; P3", acc)
	date, _ := merged.Value(0, "Expr Date")
	assert.Equal("20190301", date)

	// Non-overlapping rows from the later experiment are appended with
	// their own experiment label.
	acc, _ = merged.Value(2, "Accession")
	assert.Equal("P6", acc)
	date, _ = merged.Value(2, "Expr Date")
	assert.Equal("20190302", date)

	// Re-running the whole consolidation yields byte-identical output.
	mergedPath := filepath.Join(cfg.MergedDir(), cfg.MergedFileName)
	first, err := os.ReadFile(mergedPath)
	require.Nil(t, err)
	require.Nil(t, c.Evaluate())
	require.Nil(t, c.Merge())
	second, err := os.ReadFile(mergedPath)
	require.Nil(t, err)
	assert.Equal(first, second)
}

func TestMergeWithoutEvaluate(t *testing.T) {
	cfg := config.New(
		config.OptResultsDir(filepath.Join(t.TempDir(), "results")),
	)
	err := New(cfg).Merge()
	assert.NotNil(t, err)

	// An existing but empty cowinner directory is a config problem, not
	// an fs error.
	require.Nil(t, os.MkdirAll(cfg.CowinnerDir(), 0755))
	err = New(cfg).Merge()
	var cerr *config.ConfigError
	assert.True(t, errors.As(err, &cerr))
}
