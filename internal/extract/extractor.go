// Package extract implements the chunked extraction engine: it splits a
// document, queries the classification service per chunk, and merges
// partial answers into one convergent record.
package extract

import (
	"context"
	"runtime"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexatlas/regscan/internal/model"
)

// JSONCaller is the structured-call surface the orchestrator needs from
// the model tier client.
type JSONCaller interface {
	CallJSON(ctx context.Context, prompt string, expectObject bool, maxTokens int64) (any, bool)
}

// Config carries the knobs for one extraction run.
type Config struct {
	// ChunkLimit is the maximum chunk size in bytes.
	ChunkLimit int
	// ConcurrencyCap is the hard ceiling on concurrent chunk workers.
	ConcurrencyCap int
	// WorkersPerCPU scales the pool to available parallelism, up to
	// ConcurrencyCap.
	WorkersPerCPU int
	// DateConfidence is the minimum probe confidence for a date
	// candidate to enter the merge stream.
	DateConfidence float64
	// ProbeMaxTokens bounds date-probe replies.
	ProbeMaxTokens int64
	// UpdateMaxTokens bounds state-update replies.
	UpdateMaxTokens int64
}

// DefaultConfig returns the extraction knobs used in production.
func DefaultConfig() Config {
	return Config{
		ChunkLimit:      DefaultChunkLimit,
		ConcurrencyCap:  20,
		WorkersPerCPU:   5,
		DateConfidence:  0.8,
		ProbeMaxTokens:  320,
		UpdateMaxTokens: 800,
	}
}

// Extractor drives concurrent per-chunk workers over a document and
// owns all shared-state mutation through its single merge loop.
type Extractor struct {
	caller JSONCaller
	cfg    Config
}

// NewExtractor builds an Extractor over the given tier client.
func NewExtractor(caller JSONCaller, cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = def.ChunkLimit
	}
	if cfg.ConcurrencyCap <= 0 {
		cfg.ConcurrencyCap = def.ConcurrencyCap
	}
	if cfg.WorkersPerCPU <= 0 {
		cfg.WorkersPerCPU = def.WorkersPerCPU
	}
	if cfg.DateConfidence <= 0 {
		cfg.DateConfidence = def.DateConfidence
	}
	if cfg.ProbeMaxTokens <= 0 {
		cfg.ProbeMaxTokens = def.ProbeMaxTokens
	}
	if cfg.UpdateMaxTokens <= 0 {
		cfg.UpdateMaxTokens = def.UpdateMaxTokens
	}
	return &Extractor{caller: caller, cfg: cfg}
}

func (e *Extractor) workers() int {
	n := runtime.NumCPU() * e.cfg.WorkersPerCPU
	if n > e.cfg.ConcurrencyCap {
		n = e.cfg.ConcurrencyCap
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Extract runs the full pipeline for one document and returns its
// convergent state. A chunk whose probes or updates all fail simply
// contributes nothing; an unresolved date is reported as an empty date
// string. The only error condition is context cancellation.
func (e *Extractor) Extract(ctx context.Context, docID, text string) (model.DocumentState, error) {
	log := zap.L().With(zap.String("document_id", docID))

	state := model.NewDocumentState()
	info := NewDateInfo(text)
	if info.Locked {
		log.Info("date locked from header", zap.String("date", info.Date))
	} else {
		log.Debug("no header date found")
	}

	chunks := SplitChunks(text, e.cfg.ChunkLimit)
	if len(chunks) == 0 {
		return state, nil
	}
	info.LawHeader = clip(chunks[0], lawHeaderLen)
	total := len(chunks)
	log.Info("document chunked", zap.Int("chunks", total))

	// Workers read snapshots under RLock at start; the merge loop below
	// is the only writer. A candidate accepted mid-run locks the date,
	// so workers dispatched afterward skip their probe, while in-flight
	// workers with stale snapshots still merge safely under the
	// longer-wins rule.
	var mu sync.RWMutex
	results := make(chan model.ChunkWorkResult)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	go func() {
		defer close(results)
		for i, chunk := range chunks {
			idx, chunk := i+1, chunk
			g.Go(func() error {
				mu.RLock()
				snapInfo := info.Clone()
				snapState := state.Clone()
				mu.RUnlock()
				res := e.processChunk(gctx, docID, idx, chunk, snapInfo, snapState)
				select {
				case results <- res:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	done := 0
	for res := range results {
		mu.Lock()
		if res.Candidate != nil && ApplyCandidate(&info, *res.Candidate) {
			log.Info("date candidate accepted",
				zap.Int("chunk", res.Index),
				zap.String("date", info.Date),
				zap.Int("specificity", info.Specificity))
		}
		if len(res.Update) > 0 {
			state = MergeState(state, res.Update)
		}
		mu.Unlock()
		done++
		log.Debug("chunk merged",
			zap.Int("done", done),
			zap.Int("total", total),
			zap.Int("percent", done*100/total))
	}

	if err := ctx.Err(); err != nil {
		return state, eris.Wrap(err, "extract: run canceled")
	}

	if info.Date != "" {
		state.Date = info.Date
		log.Info("date resolved", zap.String("date", info.Date))
	} else {
		log.Info("no date resolved")
	}
	return state, nil
}

// processChunk is the per-chunk worker body: an optional date probe
// followed by a categorical-field update. Both degrade to "no
// contribution" on failure.
func (e *Extractor) processChunk(ctx context.Context, docID string, idx int, chunk string, info model.DateInfo, state model.DocumentState) model.ChunkWorkResult {
	res := model.ChunkWorkResult{Index: idx}

	if !info.Locked {
		if v, ok := e.caller.CallJSON(ctx, buildDateProbePrompt(docID, info, chunk), true, e.cfg.ProbeMaxTokens); ok {
			if probe, ok := decodeProbe(v); ok {
				if cand := ToISODate(probe.Date); cand != "" && probe.SameLaw && probe.Confidence >= e.cfg.DateConfidence {
					res.Candidate = &model.DateCandidate{
						Date:        cand,
						Specificity: probe.Specificity,
						Evidence:    chunk,
					}
				}
			}
		}
	}

	if v, ok := e.caller.CallJSON(ctx, buildStatePrompt(docID, state, info, chunk), true, e.cfg.UpdateMaxTokens); ok {
		if upd, ok := decodeUpdate(v); ok {
			res.Update = upd
		}
	}
	return res
}
