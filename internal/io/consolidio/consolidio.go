// Package consolidio implements the accession-cluster consolidation over
// the per-experiment ProteinSummary tables.
package consolidio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnsys"
	"golang.org/x/sync/errgroup"

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/consolidate"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/ent/table"
	"github.com/mzlab/quantprot/internal/io/fdrio"
	"github.com/mzlab/quantprot/internal/io/tableio"
	"github.com/mzlab/quantprot/pkg/config"
)

type consolidio struct {
	cfg config.Config
}

// New returns a Consolidator for the configured ProteinSummary tables.
func New(cfg config.Config) consolidate.Consolidator {
	return &consolidio{cfg: cfg}
}

// Evaluate reduces every configured ProteinSummary table in parallel. A
// failing file does not stop the others; all failures are reported together.
func (c *consolidio) Evaluate() error {
	files := c.cfg.ProteinSummaryFiles
	if len(files) == 0 {
		return config.NewConfigError("no identification files configured")
	}

	if err := gnsys.MakeDir(c.cfg.CowinnerDir()); err != nil {
		slog.Error("Cannot create cowinner directory", "error", err)
		return err
	}

	slog.Info("Starting cowinner evaluation", "files", len(files))

	var mu sync.Mutex
	var fileErrs []error
	var g errgroup.Group
	g.SetLimit(c.cfg.JobsNum)

	for _, path := range files {
		g.Go(func() error {
			if err := c.reduceFile(path); err != nil {
				mu.Lock()
				fileErrs = append(fileErrs, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(fileErrs) > 0 {
		return errors.Join(fileErrs...)
	}

	slog.Info("All files processed")
	return nil
}

// reduceFile restricts one ProteinSummary table to identifications passing
// critical local FDR control and collapses each rank group to one row.
func (c *consolidio) reduceFile(path string) error {
	fdrPath, err := fdrio.CompanionPath(path)
	if err != nil {
		return err
	}
	nPassFdr, err := fdrio.PassedCount(fdrPath, c.cfg.CritFdr)
	if err != nil {
		return err
	}

	t, err := tableio.ReadTSV(path)
	if err != nil {
		return err
	}

	reduced, err := Reduce(t, nPassFdr)
	if err != nil {
		return err
	}

	slog.Info("Reduced identification table",
		"file", filepath.Base(path),
		"rows", humanize.Comma(int64(reduced.Len())))

	out := filepath.Join(c.cfg.CowinnerDir(), filepath.Base(path))
	return tableio.WriteTSV(out, reduced)
}

// Reduce keeps the rows with N at or below maxN, groups them by N, and
// emits the first row of each group with its Accession overwritten by the
// sorted join of the accessions of every row sharing the group's top Total.
func Reduce(t *table.Table, maxN int) (*table.Table, error) {
	for _, col := range []string{schema.ColN, schema.ColTotal, schema.ColAccession} {
		if !t.HasCol(col) {
			return nil, config.NewConfigError(
				fmt.Sprintf("identification table missing required column %q", col))
		}
	}

	res := table.New(t.Header)

	groupOrder := make([]int, 0, t.Len())
	groups := make(map[int][]int, t.Len())
	for i := 0; i < t.Len(); i++ {
		n, err := t.Int(i, schema.ColN)
		if err != nil {
			return nil, err
		}
		if n > maxN {
			continue
		}
		if _, ok := groups[n]; !ok {
			groupOrder = append(groupOrder, n)
		}
		groups[n] = append(groups[n], i)
	}

	for _, n := range groupOrder {
		rows := groups[n]
		first := rows[0]
		top, _ := t.Value(first, schema.ColTotal)

		var accs []string
		for _, r := range rows {
			total, _ := t.Value(r, schema.ColTotal)
			if !totalsEqual(total, top) {
				continue
			}
			acc, _ := t.Value(r, schema.ColAccession)
			accs = append(accs, acc)
		}
		sort.Strings(accs)

		row := make([]string, len(t.Rows[first]))
		copy(row, t.Rows[first])
		res.AppendRow(row)
		if err := res.SetValue(res.Len()-1, schema.ColAccession,
			strings.Join(accs, accession.JoinSep)); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// totalsEqual compares two Total cells numerically when both parse, so that
// "159.0" and "159.00" count as co-winners.
func totalsEqual(a, b string) bool {
	fa, errA := parseFloat(a)
	fb, errB := parseFloat(b)
	if errA == nil && errB == nil {
		return fa == fb
	}
	return a == b
}

// Merge combines the reduced tables, in ascending file-name order, into a
// single cluster table and resolves cross-experiment duplicates.
func (c *consolidio) Merge() error {
	files, err := c.reducedFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return config.NewConfigError("no reduced identification tables found")
	}

	base, sets, err := readReduced(files[0])
	if err != nil {
		return err
	}
	base.InsertCol(0, schema.ColExprDate,
		repeat(accession.FileID(files[0]), base.Len()))

	for _, path := range files[1:] {
		src, srcSets, err := readReduced(path)
		if err != nil {
			return err
		}
		sets = mergeToBase(base, sets, src, srcSets, accession.FileID(path))
	}

	keep := dedupBackward(sets)

	merged := table.New(base.Header)
	for i, row := range base.Rows {
		if !keep[i] {
			continue
		}
		merged.AppendRow(row)
		if err = merged.SetValue(merged.Len()-1, schema.ColAccession,
			sets[i].Join()); err != nil {
			return err
		}
	}

	if err = gnsys.MakeDir(c.cfg.MergedDir()); err != nil {
		return err
	}
	out := filepath.Join(c.cfg.MergedDir(), c.cfg.MergedFileName)
	slog.Info("Writing consolidated cluster table",
		"clusters", humanize.Comma(int64(merged.Len())), "file", out)
	return tableio.WriteTSV(out, merged)
}

// reducedFiles lists the reduced tables written by Evaluate, sorted
// ascending so the leading experiment label determines merge order.
func (c *consolidio) reducedFiles() ([]string, error) {
	entries, err := os.ReadDir(c.cfg.CowinnerDir())
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(c.cfg.CowinnerDir(), e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readReduced loads a reduced table and splits its Accession column into
// sets.
func readReduced(path string) (*table.Table, []accession.Set, error) {
	t, err := tableio.ReadTSV(path)
	if err != nil {
		return nil, nil, err
	}
	sets := make([]accession.Set, t.Len())
	for i := 0; i < t.Len(); i++ {
		acc, err := t.Value(i, schema.ColAccession)
		if err != nil {
			return nil, nil, err
		}
		sets[i] = accession.NewSet(acc, accession.JoinSep)
	}
	return t, sets, nil
}

// mergeToBase folds one experiment's reduced rows into the running base
// table. The first base row whose accession set intersects a source row
// absorbs it; rows with no intersection are appended. Returned sets stay
// parallel to base.Rows.
func mergeToBase(base *table.Table, sets []accession.Set,
	src *table.Table, srcSets []accession.Set, fileID string,
) []accession.Set {
	for i := 0; i < src.Len(); i++ {
		matched := false
		for j := range sets {
			if srcSets[i].Intersects(sets[j]) {
				sets[j] = srcSets[i].Union(sets[j])
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		row := make([]string, len(base.Header))
		row[0] = fileID
		for k, col := range base.Header[1:] {
			if idx, ok := src.Col(col); ok {
				row[k+1] = src.Rows[i][idx]
			}
		}
		base.AppendRow(row)
		sets = append(sets, srcSets[i])
	}
	return sets
}

// dedupBackward resolves overlaps left behind by late merges. Rows are
// visited from last to first; each row's set, as it stood before the sweep,
// is unioned into every earlier row it intersects and the row itself is
// dropped. The traversal order is a compatibility contract with existing
// benchmark fixtures and must not be replaced with a symmetric or
// union-find formulation.
func dedupBackward(sets []accession.Set) []bool {
	n := len(sets)
	orig := make([]accession.Set, n)
	copy(orig, sets)

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	for i := n - 1; i >= 0; i-- {
		src := orig[i]
		for j := i - 1; j >= 0; j-- {
			if src.Intersects(sets[j]) {
				keep[i] = false
				sets[j] = src.Union(sets[j])
			}
		}
	}
	return keep
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func repeat(v string, n int) []string {
	res := make([]string, n)
	for i := range res {
		res[i] = v
	}
	return res
}
