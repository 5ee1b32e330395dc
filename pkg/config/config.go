package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnames/gnsys"

	"github.com/mzlab/quantprot/internal/ent/accession"
	"github.com/mzlab/quantprot/internal/ent/schema"
	"github.com/mzlab/quantprot/internal/io/fdrio"
)

// ConfigError reports every problem found in the configuration in one pass,
// so the user can fix all of them before re-running.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	return strings.Join(e.Issues, "\n")
}

// NewConfigError creates a ConfigError from a single message.
func NewConfigError(msg string) *ConfigError {
	return &ConfigError{Issues: []string{msg}}
}

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// ProteinSummaryFiles is the ordered list of ProteinSummary tables to
	// consolidate.
	ProteinSummaryFiles []string

	// PeptideSummaryFiles is the ordered list of PeptideSummary tables to
	// quantify.
	PeptideSummaryFiles []string

	// QuantitationRatios is the list of iTRAQ tag ratios to quantify, each
	// a colon-separated pair of reporter-ion labels, e.g. "114:113".
	QuantitationRatios []string

	// PeptideConfThreshold is the minimum peptide confidence for an
	// identification to enter quantitation.
	PeptideConfThreshold float64

	// MinNumSpectra is the minimum number of spectra required to include
	// the quantitation results for a protein.
	MinNumSpectra int

	// CritFdr is the critical local FDR percentage used to look up the
	// identification cutoff, one of 1, 5 or 10.
	CritFdr int

	// ResultsDir is the directory within which all generated files are
	// stored.
	ResultsDir string

	// MergedFileName is the name of the consolidated cluster table.
	MergedFileName string

	// NamesFileName is the name of the accession to protein-name table.
	NamesFileName string

	// JobsNum is a number of concurrent goroutines.
	JobsNum int
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptProteinSummaryFiles sets the ProteinSummary tables to consolidate.
func OptProteinSummaryFiles(fs []string) Option {
	return func(cfg *Config) {
		cfg.ProteinSummaryFiles = fs
	}
}

// OptPeptideSummaryFiles sets the PeptideSummary tables to quantify.
func OptPeptideSummaryFiles(fs []string) Option {
	return func(cfg *Config) {
		cfg.PeptideSummaryFiles = fs
	}
}

// OptQuantitationRatios sets the iTRAQ tag ratios to quantify.
func OptQuantitationRatios(rs []string) Option {
	return func(cfg *Config) {
		cfg.QuantitationRatios = rs
	}
}

// OptPeptideConfThreshold sets the peptide confidence cutoff.
func OptPeptideConfThreshold(t float64) Option {
	return func(cfg *Config) {
		cfg.PeptideConfThreshold = t
	}
}

// OptMinNumSpectra sets the minimum spectra per protein.
func OptMinNumSpectra(n int) Option {
	return func(cfg *Config) {
		cfg.MinNumSpectra = n
	}
}

// OptCritFdr sets the critical FDR percentage.
func OptCritFdr(n int) Option {
	return func(cfg *Config) {
		cfg.CritFdr = n
	}
}

// OptResultsDir sets the directory for generated files.
func OptResultsDir(d string) Option {
	return func(cfg *Config) {
		cfg.ResultsDir = d
	}
}

// OptMergedFileName sets the name of the consolidated cluster table.
func OptMergedFileName(n string) Option {
	return func(cfg *Config) {
		cfg.MergedFileName = n
	}
}

// OptNamesFileName sets the name of the accession to protein-name table.
func OptNamesFileName(n string) Option {
	return func(cfg *Config) {
		cfg.NamesFileName = n
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// New creates a Config with defaults, modified by the given options.
func New(opts ...Option) Config {
	res := Config{
		PeptideConfThreshold: 95,
		MinNumSpectra:        4,
		CritFdr:              fdrio.DefaultThreshold,
		ResultsDir:           "results",
		MergedFileName:       "merged.csv",
		NamesFileName:        "hkuAccessionProtName.txt",
		JobsNum:              4,
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}

// CowinnerDir is where the per-file reduced identification tables go.
func (cfg Config) CowinnerDir() string {
	return filepath.Join(cfg.ResultsDir, "cowinner")
}

// MergedDir is where the consolidated cluster table goes.
func (cfg Config) MergedDir() string {
	return filepath.Join(cfg.CowinnerDir(), "merged")
}

// GroupDir is where the group quantitation artifacts go.
func (cfg Config) GroupDir() string {
	return filepath.Join(cfg.ResultsDir, "group")
}

// NamesKVDir is where the accession to protein-name key-value store lives.
func (cfg Config) NamesKVDir() string {
	return filepath.Join(cfg.ResultsDir, "names-kv")
}

// Validate checks the configuration for missing files, missing FDR
// companions, bad experiment prefixes and invalid ratios. All issues are
// collected into one ConfigError.
func (cfg Config) Validate() error {
	var issues []string
	issues = append(issues, validateFileList(cfg.ProteinSummaryFiles)...)
	issues = append(issues, validateFileList(cfg.PeptideSummaryFiles)...)
	issues = append(issues, cfg.validateRatios()...)
	if len(issues) > 0 {
		return &ConfigError{Issues: issues}
	}
	return nil
}

// validateFileList checks a list of summary files for existence, existence
// of the FDR companions and uniqueness of the 8-character file prefixes.
func validateFileList(files []string) []string {
	var issues []string

	prefixes := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	var dup bool
	for _, path := range files {
		id := accession.FileID(path)
		if len(id) < 8 {
			issues = append(issues, fmt.Sprintf(
				"failed to generate file ID for %s - name too short", path))
		} else {
			prefixes = append(prefixes, id)
			if _, ok := seen[id]; ok {
				dup = true
			}
			seen[id] = struct{}{}
		}

		exists, _ := gnsys.FileExists(path)
		if !exists {
			issues = append(issues, fmt.Sprintf("%s NOT found", path))
			continue
		}
		fdrPath, err := fdrio.CompanionPath(path)
		if err != nil {
			issues = append(issues, err.Error())
			continue
		}
		if exists, _ = gnsys.FileExists(fdrPath); !exists {
			issues = append(issues, fmt.Sprintf("%s NOT found", fdrPath))
		}
	}

	if dup {
		issues = append(issues, fmt.Sprintf(
			"duplicate id prefixes detected in %s", strings.Join(prefixes, ", ")))
	}

	return issues
}

func (cfg Config) validateRatios() []string {
	var issues []string
	for _, ratio := range cfg.QuantitationRatios {
		for _, tag := range strings.Split(ratio, ":") {
			if _, ok := schema.ITraqTags[tag]; !ok {
				issues = append(issues, fmt.Sprintf(
					"invalid quantitation ratio: %s", ratio))
				break
			}
		}
	}
	return issues
}
