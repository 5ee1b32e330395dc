package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnsys"
	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/mzlab/quantprot/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed quantprot.json
var configText string

var (
	cfgFile string
	opts    []config.Option
)

// cfgData purpose is to achieve automatic import of data from the
// configuration file, if it exists. Key names follow the JSON schema the
// summary-processing scripts around this tool already use.
type cfgData struct {
	ProteinSummaryFiles        []string
	PeptideSummaryFiles        []string
	QuantitationRatios         []string
	PeptideConfidenceThreshold float64
	MinimumNumberOfSpectra     int
	CritFdr                    int
	ResultsDirectory           string
	MergedFileName             string
	NamesFileName              string
	JobsNum                    int
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantprot",
	Short: "Consolidates identification results and quantifies iTRAQ ratios",
	Long: `quantprot takes ProteinSummary and PeptideSummary tables exported
from iTRAQ experiments, consolidates protein identifications that share
co-winning accessions across experiments, and computes weighted protein
abundance ratios with significance estimates, per experiment and pooled
across experiments.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n",
				quantprot.Version, quantprot.Build)
			os.Exit(0)
		}

		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.config/quantprot.json)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		var err error
		var homeDir, cfgDir string
		configFile := "quantprot"

		// Find home directory.
		homeDir, err = os.UserHomeDir()
		if err != nil {
			slog.Error("Cannot find home dir", "error", err)
			os.Exit(1)
		}
		cfgDir = filepath.Join(homeDir, ".config")

		// Search config in home config directory with name "quantprot"
		// (without extension).
		viper.AddConfigPath(cfgDir)
		viper.SetConfigName(configFile)
		viper.SetConfigType("json")

		configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.json", configFile))
		touchConfigFile(configPath)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file quantprot.json not found", "error", err)
		os.Exit(1)
	}
	getOpts()
}

// getOpts imports data from the configuration file. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if len(cfg.ProteinSummaryFiles) > 0 {
		opts = append(opts, config.OptProteinSummaryFiles(cfg.ProteinSummaryFiles))
	}
	if len(cfg.PeptideSummaryFiles) > 0 {
		opts = append(opts, config.OptPeptideSummaryFiles(cfg.PeptideSummaryFiles))
	}
	if len(cfg.QuantitationRatios) > 0 {
		opts = append(opts, config.OptQuantitationRatios(cfg.QuantitationRatios))
	}
	if cfg.PeptideConfidenceThreshold != 0 {
		opts = append(opts,
			config.OptPeptideConfThreshold(cfg.PeptideConfidenceThreshold))
	}
	if cfg.MinimumNumberOfSpectra != 0 {
		opts = append(opts, config.OptMinNumSpectra(cfg.MinimumNumberOfSpectra))
	}
	if cfg.CritFdr != 0 {
		opts = append(opts, config.OptCritFdr(cfg.CritFdr))
	}
	if cfg.ResultsDirectory != "" {
		opts = append(opts, config.OptResultsDir(cfg.ResultsDirectory))
	}
	if cfg.MergedFileName != "" {
		opts = append(opts, config.OptMergedFileName(cfg.MergedFileName))
	}
	if cfg.NamesFileName != "" {
		opts = append(opts, config.OptNamesFileName(cfg.NamesFileName))
	}
	if cfg.JobsNum != 0 {
		opts = append(opts, config.OptJobsNum(cfg.JobsNum))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}

// validatedConfig builds the config from file options and validates it,
// exiting on any reported issue.
func validatedConfig() config.Config {
	cfg := config.New(opts...)
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}
