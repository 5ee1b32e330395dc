package cmd

import (
	"log/slog"
	"os"

	"github.com/mzlab/quantprot/internal/io/nameio"
	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/spf13/cobra"
)

// namesCmd represents the names command
var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Extracts the accession to protein name mapping",
	Long: `Collects the protein name of every accession found in the
ProteinSummary files into a key-value store and a tab-separated table, for
use by the group quantitation output.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := validatedConfig()
		qp := quantprot.New(cfg)
		m, err := nameio.NewWithStore(cfg)
		if err != nil {
			slog.Error("Cannot create names Key-Value store", "error", err)
			os.Exit(1)
		}
		if err = qp.MapNames(m); err != nil {
			slog.Error("Cannot map protein names", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)
}
