// Package nameio builds the accession to protein-name map from the
// ProteinSummary tables and persists it in a key-value store for the group
// quantitation overlay.
package nameio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"

	"github.com/mzlab/quantprot/internal/ent/kv"
	"github.com/mzlab/quantprot/internal/ent/names"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/ent/table"
	"github.com/mzlab/quantprot/internal/io/kvio"
	"github.com/mzlab/quantprot/internal/io/tableio"
	"github.com/mzlab/quantprot/pkg/config"
)

// noiseRe matches the variant tokens stripped from protein names so the
// same protein deduplicates to one display name across experiments.
var noiseRe = regexp.MustCompile(`-like|isoform X\d+ |\d+\w+`)

type nameio struct {
	cfg   config.Config
	store kv.KeyVal
	enc   gnfmt.Encoder
}

// New returns a Mapper backed by a badger store under the results
// directory. Building the map resets the store; lookups open it lazily.
func New(cfg config.Config, store kv.KeyVal) names.Mapper {
	return &nameio{cfg: cfg, store: store, enc: gnfmt.GNgob{}}
}

// NewWithStore creates the default badger-backed Mapper.
func NewWithStore(cfg config.Config) (names.Mapper, error) {
	store, err := kvio.New(cfg.NamesKVDir())
	if err != nil {
		return nil, err
	}
	return New(cfg, store), nil
}

// MapNames reads every configured ProteinSummary table, takes the first
// name seen for each accession, and writes the map both to the key-value
// store and to a headerless TSV under the group directory.
func (n *nameio) MapNames() error {
	if len(n.cfg.ProteinSummaryFiles) == 0 {
		return config.NewConfigError("no identification files configured")
	}

	if err := kvio.Reset(n.cfg.NamesKVDir()); err != nil {
		return err
	}
	if err := n.store.Open(); err != nil {
		return err
	}
	defer n.store.Close()

	var order []string
	byAcc := make(map[string]string)
	for _, path := range n.cfg.ProteinSummaryFiles {
		t, err := tableio.ReadTSV(path)
		if err != nil {
			return err
		}
		if err = collectNames(t, byAcc, &order); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	recs := make([]kv.Record, 0, len(order))
	for _, acc := range order {
		val, err := n.enc.Encode(byAcc[acc])
		if err != nil {
			return err
		}
		recs = append(recs, kv.Record{Key: []byte(acc), Value: val})
	}
	if err := n.store.SetRecords(recs); err != nil {
		return err
	}

	slog.Info("Stored protein names", "accessions", humanize.Comma(int64(len(order))))

	if err := gnsys.MakeDir(n.cfg.GroupDir()); err != nil {
		return err
	}
	return n.writeTSV(order, byAcc)
}

// collectNames pulls (Accession, Name) pairs out of one table; the first
// occurrence of an accession wins.
func collectNames(t *table.Table, byAcc map[string]string, order *[]string) error {
	for _, col := range []string{schema.ColAccession, schema.ColName} {
		if !t.HasCol(col) {
			return config.NewConfigError(fmt.Sprintf(
				"identification table missing required column %q", col))
		}
	}
	for i := 0; i < t.Len(); i++ {
		acc, err := t.Value(i, schema.ColAccession)
		if err != nil {
			return err
		}
		name, err := t.Value(i, schema.ColName)
		if err != nil {
			return err
		}
		if acc == "" {
			continue
		}
		if _, ok := byAcc[acc]; !ok {
			byAcc[acc] = cleanName(name)
			*order = append(*order, acc)
		}
	}
	return nil
}

// cleanName strips variant noise tokens from a protein name.
func cleanName(name string) string {
	return strings.TrimSpace(noiseRe.ReplaceAllString(name, ""))
}

// writeTSV writes the accession/name pairs without a header, the format
// downstream spreadsheets expect.
func (n *nameio) writeTSV(order []string, byAcc map[string]string) error {
	t := table.New([]string{schema.ColAccession, schema.ColName})
	for _, acc := range order {
		t.AppendRow([]string{acc, byAcc[acc]})
	}

	// The pair file is headerless; strip the header by writing rows only.
	path := filepath.Join(n.cfg.GroupDir(), n.cfg.NamesFileName)
	return tableio.WriteTSVRows(path, t.Rows)
}

// Lookup returns the protein name stored for an accession.
func (n *nameio) Lookup(acc string) (string, error) {
	val, err := n.store.GetValue([]byte(acc))
	if err != nil || val == nil {
		return "", err
	}
	var name string
	if err = n.enc.Decode(val, &name); err != nil {
		return "", err
	}
	return name, nil
}

// Open opens the underlying store for lookups.
func (n *nameio) Open() error {
	return n.store.Open()
}

// Close releases the underlying store.
func (n *nameio) Close() error {
	return n.store.Close()
}
