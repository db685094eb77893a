package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexatlas/regscan/internal/extract"
	"github.com/lexatlas/regscan/internal/model"
	"github.com/lexatlas/regscan/internal/store"
	anthropicpkg "github.com/lexatlas/regscan/pkg/anthropic"
)

// appEnv bundles the store and extraction engine shared by the
// extract, batch, and serve commands.
type appEnv struct {
	st store.Store
	ex *extract.Extractor
}

func (e *appEnv) Close() {
	if err := e.st.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "regscan.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	tiers := extract.NewTierClient(client, extract.TierConfig{
		Profiles:      cfg.Anthropic.Profiles,
		MaxAttempts:   cfg.Extract.MaxAttempts,
		CallTimeout:   time.Duration(cfg.Extract.CallTimeoutSecs) * time.Second,
		RatePerSecond: cfg.Anthropic.RatePerSecond,
	})
	ex := extract.NewExtractor(tiers, extract.Config{
		ChunkLimit:      cfg.Extract.ChunkLimit,
		ConcurrencyCap:  cfg.Extract.ConcurrencyCap,
		WorkersPerCPU:   cfg.Extract.WorkersPerCPU,
		DateConfidence:  cfg.Extract.DateConfidence,
		ProbeMaxTokens:  cfg.Extract.ProbeMaxTokens,
		UpdateMaxTokens: cfg.Extract.UpdateMaxTokens,
	})

	return &appEnv{st: st, ex: ex}, nil
}

// runExtraction extracts one document and records the outcome,
// returning the finished record.
func (e *appEnv) runExtraction(ctx context.Context, docID, sourcePath, text string) (*model.Record, error) {
	rec, err := e.st.CreateRecord(ctx, docID, sourcePath)
	if err != nil {
		return nil, eris.Wrap(err, "create record")
	}

	chunkCount := len(extract.SplitChunks(text, cfg.Extract.ChunkLimit))
	start := time.Now()

	state, err := e.ex.Extract(ctx, docID, text)
	duration := time.Since(start)
	if err != nil {
		if ferr := e.st.FailRecord(ctx, rec.ID); ferr != nil {
			zap.L().Warn("record failure not persisted",
				zap.String("record_id", rec.ID),
				zap.Error(ferr))
		}
		return nil, eris.Wrapf(err, "extract %s", docID)
	}

	if err := e.st.CompleteRecord(ctx, rec.ID, state, chunkCount, duration); err != nil {
		return nil, eris.Wrap(err, "complete record")
	}

	rec, err = e.st.GetRecord(ctx, rec.ID)
	if err != nil {
		return nil, eris.Wrap(err, "reload record")
	}

	zap.L().Info("document extracted",
		zap.String("document_id", docID),
		zap.String("date", state.Date),
		zap.Int("chunks", chunkCount),
		zap.Duration("duration", duration))
	return rec, nil
}
