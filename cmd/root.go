package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexatlas/regscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "regscan",
	Short: "Regulatory document extraction pipeline",
	Long:  "Chunks legal and regulatory documents, extracts structured fields via tiered Claude models, and merges per-chunk results into one convergent record per document.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
