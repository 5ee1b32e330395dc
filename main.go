package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mzlab/quantprot/cmd"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cmd.Execute()
}
