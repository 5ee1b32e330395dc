package cmd

import (
	"log/slog"
	"os"

	"github.com/mzlab/quantprot/internal/io/groupio"
	"github.com/mzlab/quantprot/internal/io/nameio"
	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/spf13/cobra"
)

// groupCmd represents the group command
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Pools per-experiment quantitation results per ratio",
	Long: `Pools the quantified peptides of every experiment for each tag
ratio, re-keys them by the consolidated accession clusters and recomputes
protein statistics over the pooled evidence. Requires consolidate, names
and quantify to have run first.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := validatedConfig()
		qp := quantprot.New(cfg)
		m, err := nameio.NewWithStore(cfg)
		if err != nil {
			slog.Error("Cannot create names Key-Value store", "error", err)
			os.Exit(1)
		}
		if err = m.Open(); err != nil {
			slog.Error("Cannot open names Key-Value store", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = m.Close()
		}()
		g := groupio.New(cfg, m)
		if err = qp.QuantifyGroups(g); err != nil {
			slog.Error("Cannot quantify groups", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
}
