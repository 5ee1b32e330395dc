package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzlab/quantprot/pkg/config"
)

func TestNewDefaults(t *testing.T) {
	assert := assert.New(t)
	cfg := config.New()

	assert.Equal(95.0, cfg.PeptideConfThreshold)
	assert.Equal(4, cfg.MinNumSpectra)
	assert.Equal(5, cfg.CritFdr)
	assert.Equal("merged.csv", cfg.MergedFileName)
	assert.Equal("hkuAccessionProtName.txt", cfg.NamesFileName)
	assert.Equal(4, cfg.JobsNum)
}

func TestNewOptions(t *testing.T) {
	assert := assert.New(t)
	cfg := config.New(
		config.OptResultsDir("/tmp/qp"),
		config.OptQuantitationRatios([]string{"115:114"}),
		config.OptJobsNum(8),
	)

	assert.Equal("/tmp/qp", cfg.ResultsDir)
	assert.Equal([]string{"115:114"}, cfg.QuantitationRatios)
	assert.Equal(8, cfg.JobsNum)
}

func TestDerivedDirs(t *testing.T) {
	assert := assert.New(t)
	cfg := config.New(config.OptResultsDir("/tmp/qp"))

	assert.Equal("/tmp/qp/cowinner", cfg.CowinnerDir())
	assert.Equal("/tmp/qp/cowinner/merged", cfg.MergedDir())
	assert.Equal("/tmp/qp/group", cfg.GroupDir())
	assert.Equal("/tmp/qp/names-kv", cfg.NamesKVDir())
}

func TestValidateRatios(t *testing.T) {
	tests := []struct {
		msg    string
		ratios []string
		valid  bool
	}{
		{"known tags", []string{"115:114", "121:113"}, true},
		{"unknown tag", []string{"115:112"}, false},
		{"malformed", []string{"115"}, true}, // a lone valid tag parses
		{"garbage", []string{"x:y"}, false},
	}
	for _, v := range tests {
		cfg := config.New(config.OptQuantitationRatios(v.ratios))
		err := cfg.Validate()
		if v.valid {
			assert.Nil(t, err, v.msg)
		} else {
			assert.NotNil(t, err, v.msg)
		}
	}
}

// touchSummary creates an empty summary file and its FDR companion.
func touchSummary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, nil, 0644))

	fdrName := name[:len(name)-len("ProteinSummary.txt")] + "_FDR.xlsx"
	require.Nil(t, os.WriteFile(filepath.Join(dir, fdrName), nil, 0644))
	return path
}

func TestValidateFiles(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	good := touchSummary(t, dir, "20190301_ProteinSummary.txt")

	cfg := config.New(config.OptProteinSummaryFiles([]string{good}))
	assert.Nil(cfg.Validate())

	cfg = config.New(config.OptProteinSummaryFiles([]string{
		good,
		filepath.Join(dir, "20190302_ProteinSummary.txt"), // missing
	}))
	err := cfg.Validate()
	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.Issues, 1)
	assert.Contains(cerr.Issues[0], "NOT found")
}

func TestValidateShortFileName(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "run.txt")
	require.Nil(t, os.WriteFile(short, nil, 0644))

	cfg := config.New(config.OptProteinSummaryFiles([]string{short}))
	err := cfg.Validate()
	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))

	// A name this short cannot yield an experiment prefix, nor contain a
	// summary marker; both problems are reported together.
	require.Len(t, cerr.Issues, 2)
	assert.Contains(t, cerr.Issues[0], "name too short")
}

func TestValidateDuplicatePrefixes(t *testing.T) {
	dir := t.TempDir()
	a := touchSummary(t, dir, "20190301_ProteinSummary.txt")
	b := touchSummary(t, dir, "20190301x_ProteinSummary.txt")

	cfg := config.New(config.OptProteinSummaryFiles([]string{a, b}))
	err := cfg.Validate()
	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Issues[0], "duplicate id prefixes")
}

func TestValidateMissingFdrCompanion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20190301_PeptideSummary.txt")
	require.Nil(t, os.WriteFile(path, nil, 0644))

	cfg := config.New(config.OptPeptideSummaryFiles([]string{path}))
	err := cfg.Validate()
	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Issues[0], "_FDR.xlsx NOT found")
}
