// Package store persists extraction records behind a driver-neutral
// interface with sqlite and postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/lexatlas/regscan/internal/model"
)

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	Status     model.RecordStatus `json:"status,omitempty"`
	DocumentID string             `json:"document_id,omitempty"`
	Limit      int                `json:"limit,omitempty"`
	Offset     int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction records.
type Store interface {
	CreateRecord(ctx context.Context, documentID, sourcePath string) (*model.Record, error)
	CompleteRecord(ctx context.Context, id string, state model.DocumentState, chunkCount int, duration time.Duration) error
	FailRecord(ctx context.Context, id string) error
	GetRecord(ctx context.Context, id string) (*model.Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
