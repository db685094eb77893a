// Package model defines the shared data types for the extraction pipeline.
package model

import (
	"sort"
	"strings"
	"time"
)

// Date specificity levels, ordered so that a more precise date always
// compares greater.
const (
	SpecificityUnknown   = 0
	SpecificityYear      = 1
	SpecificityYearMonth = 2
	SpecificityFullDate  = 3
)

// FieldKeys lists the six categorical fields of a DocumentState in
// canonical output order.
var FieldKeys = []string{
	"jurisdiction_country",
	"sector",
	"activity",
	"regulatory_domain",
	"impact_type",
	"regulator_entity",
}

// DocumentState is the convergent per-document record the extraction
// engine produces. The list fields are deduplicated and sorted
// case-insensitively; they only ever grow until finalization.
type DocumentState struct {
	Date                string   `json:"date"`
	JurisdictionCountry []string `json:"jurisdiction_country"`
	Sector              []string `json:"sector"`
	Activity            []string `json:"activity"`
	RegulatoryDomain    []string `json:"regulatory_domain"`
	ImpactType          []string `json:"impact_type"`
	RegulatorEntity     []string `json:"regulator_entity"`
}

// NewDocumentState returns an empty state with non-nil list fields so
// serialized output never contains nulls.
func NewDocumentState() DocumentState {
	return DocumentState{
		JurisdictionCountry: []string{},
		Sector:              []string{},
		Activity:            []string{},
		RegulatoryDomain:    []string{},
		ImpactType:          []string{},
		RegulatorEntity:     []string{},
	}
}

// Clone returns a deep copy. Workers receive clones so they can never
// mutate the state owned by the orchestrator.
func (s DocumentState) Clone() DocumentState {
	out := s
	out.JurisdictionCountry = cloneList(s.JurisdictionCountry)
	out.Sector = cloneList(s.Sector)
	out.Activity = cloneList(s.Activity)
	out.RegulatoryDomain = cloneList(s.RegulatoryDomain)
	out.ImpactType = cloneList(s.ImpactType)
	out.RegulatorEntity = cloneList(s.RegulatorEntity)
	return out
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Field returns a pointer to the named list field, or nil for an
// unknown key.
func (s *DocumentState) Field(key string) *[]string {
	switch key {
	case "jurisdiction_country":
		return &s.JurisdictionCountry
	case "sector":
		return &s.Sector
	case "activity":
		return &s.Activity
	case "regulatory_domain":
		return &s.RegulatoryDomain
	case "impact_type":
		return &s.ImpactType
	case "regulator_entity":
		return &s.RegulatorEntity
	default:
		return nil
	}
}

// FieldUpdate is a partial, per-chunk contribution to the categorical
// fields. Values are raw model output; the aggregator trims and
// deduplicates them.
type FieldUpdate map[string][]string

// DateInfo tracks the single best effective date for a document while
// chunks are processed. Once Locked, no further date probing is
// attempted for newly started workers.
type DateInfo struct {
	Date          string
	Specificity   int
	EvidenceChunk string
	Locked        bool
	LawHeader     string
}

// Clone returns a copy for handing to a worker.
func (d DateInfo) Clone() DateInfo { return d }

// DateCandidate is a date proposed by a chunk probe, already validated
// against the same-law and confidence gates.
type DateCandidate struct {
	Date        string
	Specificity int
	Evidence    string
}

// ChunkWorkResult is the ephemeral output of one chunk worker,
// consumed exactly once by the orchestrator's merge loop.
type ChunkWorkResult struct {
	Index     int
	Candidate *DateCandidate
	Update    FieldUpdate
}

// SortCaseInsensitive sorts values by their lowercase form, with the
// original form as tie-breaker so the result is fully deterministic.
func SortCaseInsensitive(values []string) {
	sort.Slice(values, func(i, j int) bool {
		li, lj := strings.ToLower(values[i]), strings.ToLower(values[j])
		if li != lj {
			return li < lj
		}
		return values[i] < values[j]
	})
}

// RecordStatus is the lifecycle status of a stored extraction record.
type RecordStatus string

const (
	RecordStatusRunning  RecordStatus = "running"
	RecordStatusComplete RecordStatus = "complete"
	RecordStatusFailed   RecordStatus = "failed"
)

// Record is a persisted extraction result.
type Record struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	SourcePath string        `json:"source_path,omitempty"`
	Status     RecordStatus  `json:"status"`
	State      DocumentState `json:"state"`
	ChunkCount int           `json:"chunk_count"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
