package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexatlas/regscan/internal/export"
	"github.com/lexatlas/regscan/internal/ingest"
	"github.com/lexatlas/regscan/internal/model"
)

var (
	batchDir       string
	batchOut       string
	batchRecursive bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every eligible document in a directory",
	Long:  "Discovers eligible files (deduplicating copies), extracts each document, writes per-document CSVs plus a combined CSV and XLSX workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		dir := batchDir
		if dir == "" {
			dir = cfg.Ingest.InputDir
		}
		outDir := batchOut
		if outDir == "" {
			outDir = cfg.Export.OutDir
		}

		docs, err := ingest.DiscoverFiles(dir, cfg.Ingest.Extensions, batchRecursive || cfg.Ingest.Recursive)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return eris.Errorf("no eligible documents in %s", dir)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", outDir)
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var done []model.Record
		failed := 0
		for i, doc := range docs {
			if ctx.Err() != nil {
				return eris.Wrap(ctx.Err(), "batch cancelled")
			}

			zap.L().Info("processing document",
				zap.String("document_id", doc.DocID),
				zap.Int("position", i+1),
				zap.Int("total", len(docs)))

			text, err := ingest.ReadDocument(doc.Path, cfg.Ingest.Encoding)
			if err != nil || strings.TrimSpace(text) == "" {
				zap.L().Warn("document skipped",
					zap.String("document_id", doc.DocID),
					zap.Error(err))
				failed++
				continue
			}

			rec, err := env.runExtraction(ctx, doc.DocID, doc.Path, text)
			if err != nil {
				zap.L().Error("extraction failed",
					zap.String("document_id", doc.DocID),
					zap.Error(err))
				failed++
				continue
			}

			perDoc := filepath.Join(outDir, doc.DocID+".csv")
			if err := export.WriteCSV(perDoc, []model.Record{*rec}); err != nil {
				zap.L().Warn("per-document csv failed",
					zap.String("document_id", doc.DocID),
					zap.Error(err))
			}
			done = append(done, *rec)
		}

		if len(done) > 0 {
			if err := export.WriteCSV(filepath.Join(outDir, "combined.csv"), done); err != nil {
				return err
			}
			if err := export.WriteXLSX(filepath.Join(outDir, "combined.xlsx"), done); err != nil {
				return err
			}
		}

		zap.L().Info("batch complete",
			zap.Int("extracted", len(done)),
			zap.Int("failed", failed),
			zap.String("out_dir", outDir))
		if failed > 0 && len(done) == 0 {
			return eris.New("batch: every document failed")
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "input directory (default from config)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output directory for CSV/XLSX (default from config)")
	batchCmd.Flags().BoolVar(&batchRecursive, "recursive", false, "descend into subdirectories")
	rootCmd.AddCommand(batchCmd)
}
