package nameio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzlab/quantprot/internal/io/nameio"
	"github.com/mzlab/quantprot/pkg/config"
)

func writeSummary(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestMapNames(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	fileA := writeSummary(t, dir, "20190301_ProteinSummary.txt",
		"N\tAccession\tName\n"+
			"1\tP1\tSerum albumin\n"+
			"2\tP2\tHemoglobin subunit beta\n")
	fileB := writeSummary(t, dir, "20190302_ProteinSummary.txt",
		"N\tAccession\tName\n"+
			"1\tP1\tA later name that must lose\n"+
			"2\tP3\tMyoglobin\n"+
			"3\tP4\ttitin-like isoform X2 variant\n")

	cfg := config.New(
		config.OptProteinSummaryFiles([]string{fileA, fileB}),
		config.OptResultsDir(filepath.Join(dir, "results")),
	)

	m, err := nameio.NewWithStore(cfg)
	require.Nil(t, err)
	require.Nil(t, m.MapNames())

	// The pair file is headerless.
	data, err := os.ReadFile(filepath.Join(cfg.GroupDir(), cfg.NamesFileName))
	require.Nil(t, err)
	// Variant noise tokens are stripped from stored names.
	assert.Equal(
		"P1\tSerum albumin\n"+
			"P2\tHemoglobin subunit beta\n"+
			"P3\tMyoglobin\n"+
			"P4\ttitin variant\n",
		string(data))

	require.Nil(t, m.Open())
	defer m.Close()

	name, err := m.Lookup("P1")
	require.Nil(t, err)
	assert.Equal("Serum albumin", name)

	// Unknown accessions come back empty without an error.
	name, err = m.Lookup("P999")
	require.Nil(t, err)
	assert.Equal("", name)
}

func TestMapNamesNoFiles(t *testing.T) {
	m, err := nameio.NewWithStore(config.New(
		config.OptResultsDir(filepath.Join(t.TempDir(), "results")),
	))
	require.Nil(t, err)

	err = m.MapNames()
	var cerr *config.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func TestMapNamesMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeSummary(t, dir, "20190301_ProteinSummary.txt",
		"N\tAccession\n1\tP1\n")

	cfg := config.New(
		config.OptProteinSummaryFiles([]string{path}),
		config.OptResultsDir(filepath.Join(dir, "results")),
	)
	m, err := nameio.NewWithStore(cfg)
	require.Nil(t, err)

	err = m.MapNames()
	var cerr *config.ConfigError
	assert.True(t, errors.As(err, &cerr))
}
