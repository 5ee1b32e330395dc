package cmd

import (
	"log/slog"
	"os"

	"github.com/mzlab/quantprot/internal/io/consolidio"
	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/spf13/cobra"
)

// consolidateCmd represents the consolidate command
var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merges co-winning protein identifications across experiments",
	Long: `Reduces each ProteinSummary table to the identifications that pass
its critical FDR cutoff and merges the reduced tables into accession
clusters, so proteins identified under different co-winning accessions in
different experiments are treated as one.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := validatedConfig()
		qp := quantprot.New(cfg)
		c := consolidio.New(cfg)
		if err := qp.Consolidate(c); err != nil {
			slog.Error("Cannot consolidate identifications", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
}
