package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexatlas/regscan/internal/config"
	"github.com/lexatlas/regscan/internal/extract"
	"github.com/lexatlas/regscan/internal/model"
	"github.com/lexatlas/regscan/internal/store"
)

type fakeStore struct {
	mu        sync.Mutex
	records   map[string]*model.Record
	completed chan string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   make(map[string]*model.Record),
		completed: make(chan string, 8),
	}
}

func (s *fakeStore) CreateRecord(ctx context.Context, documentID, sourcePath string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &model.Record{
		ID:         "rec-" + documentID,
		DocumentID: documentID,
		SourcePath: sourcePath,
		Status:     model.RecordStatusRunning,
		State:      model.NewDocumentState(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *fakeStore) CompleteRecord(ctx context.Context, id string, state model.DocumentState, chunkCount int, duration time.Duration) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if ok {
		rec.Status = model.RecordStatusComplete
		rec.State = state
		rec.ChunkCount = chunkCount
		rec.DurationMS = duration.Milliseconds()
	}
	s.mu.Unlock()
	if !ok {
		return eris.New("store: record not found")
	}
	s.completed <- id
	return nil
}

func (s *fakeStore) FailRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return eris.New("store: record not found")
	}
	rec.Status = model.RecordStatusFailed
	return nil
}

func (s *fakeStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, eris.New("store: record not found")
	}
	clone := *rec
	return &clone, nil
}

func (s *fakeStore) ListRecords(ctx context.Context, filter store.RecordFilter) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Record
	for _, rec := range s.records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *fakeStore) Migrate(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                      { return nil }

type staticCaller struct{}

func (staticCaller) CallJSON(ctx context.Context, prompt string, expectObject bool, maxTokens int64) (any, bool) {
	if maxTokens <= 320 {
		return map[string]any{"date": "", "same_law": false, "confidence": 0.0}, true
	}
	return map[string]any{"sector": []any{"Energy"}}, true
}

func newTestEnv(t *testing.T) (*appEnv, *fakeStore) {
	t.Helper()
	cfg = &config.Config{
		Extract: config.ExtractConfig{ChunkLimit: 4000},
	}
	st := newFakeStore()
	env := &appEnv{
		st: st,
		ex: extract.NewExtractor(staticCaller{}, extract.DefaultConfig()),
	}
	return env, st
}

func TestServeHealth(t *testing.T) {
	env, _ := newTestEnv(t)
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeRecordNotFound(t *testing.T) {
	env, _ := newTestEnv(t)
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/records/missing")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeExtractValidation(t *testing.T) {
	env, _ := newTestEnv(t)
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/extract", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/extract", "application/json", strings.NewReader(`{"text":"body only"}`))
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeExtractRunsAsync(t *testing.T) {
	env, st := newTestEnv(t)
	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	body := `{"document_id":"directive-1","text":"Article 1. Member States shall apply this directive to the energy sector."}`
	resp, err := http.Post(srv.URL+"/extract", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case id := <-st.completed:
		rec, err := st.GetRecord(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.RecordStatusComplete, rec.Status)
		assert.Equal(t, []string{"Energy"}, rec.State.Sector)
	case <-time.After(5 * time.Second):
		t.Fatal("extraction did not complete")
	}
}

func TestServeListRecords(t *testing.T) {
	env, st := newTestEnv(t)
	_, err := st.CreateRecord(context.Background(), "doc-a", "doc-a.html")
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/records")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []model.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "doc-a", records[0].DocumentID)
}
