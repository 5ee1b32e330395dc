package cmd

import (
	"log/slog"
	"os"

	"github.com/mzlab/quantprot/internal/io/quantio"
	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/spf13/cobra"
)

// quantifyCmd represents the quantify command
var quantifyCmd = &cobra.Command{
	Use:   "quantify",
	Short: "Computes weighted protein ratios per experiment",
	Long: `Runs the quantitation stages for every PeptideSummary file and
every configured tag ratio: filters peptides, weighs them by spectral
evidence, normalizes ratios by the median protein ratio and estimates the
significance of up and down regulation.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := validatedConfig()
		qp := quantprot.New(cfg)
		q := quantio.New(cfg)
		if err := qp.Quantify(q); err != nil {
			slog.Error("Cannot quantify experiments", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(quantifyCmd)
}
