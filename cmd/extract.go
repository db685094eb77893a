package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lexatlas/regscan/internal/ingest"
)

var (
	extractFile string
	extractID   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured fields from a single document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		text, err := ingest.ReadDocument(extractFile, cfg.Ingest.Encoding)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return eris.Errorf("no extractable text in %s", extractFile)
		}

		docID := extractID
		if docID == "" {
			name := filepath.Base(extractFile)
			docID = strings.TrimSuffix(name, filepath.Ext(name))
		}

		rec, err := env.runExtraction(ctx, docID, extractFile, text)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "document file to extract (required)")
	extractCmd.Flags().StringVar(&extractID, "id", "", "document ID (default derived from filename)")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}
