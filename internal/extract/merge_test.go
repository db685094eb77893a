package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexatlas/regscan/internal/model"
)

func TestMergeState_UnionTrimSort(t *testing.T) {
	state := model.NewDocumentState()
	state.Sector = []string{"Energy"}

	state = MergeState(state, model.FieldUpdate{
		"sector":               {" banking ", "Energy", "", "agriculture"},
		"jurisdiction_country": {"France", "Germany"},
	})

	assert.Equal(t, []string{"agriculture", "banking", "Energy"}, state.Sector)
	assert.Equal(t, []string{"France", "Germany"}, state.JurisdictionCountry)
	assert.Empty(t, state.Activity)
}

func TestMergeState_Idempotent(t *testing.T) {
	upd := model.FieldUpdate{
		"regulator_entity": {"European Commission", "ACER"},
		"impact_type":      {"reporting obligation"},
	}
	once := MergeState(model.NewDocumentState(), upd)
	twice := MergeState(once.Clone(), upd)
	assert.Equal(t, once, twice)
}

func TestMergeState_OrderIndependent(t *testing.T) {
	a := model.FieldUpdate{"activity": {"trading", "clearing"}}
	b := model.FieldUpdate{"activity": {"settlement", "trading"}}

	ab := MergeState(MergeState(model.NewDocumentState(), a), b)
	ba := MergeState(MergeState(model.NewDocumentState(), b), a)
	assert.Equal(t, ab, ba)
	assert.Equal(t, []string{"clearing", "settlement", "trading"}, ab.Activity)
}

func TestMergeState_CaseInsensitiveSortKeepsDistinctCasings(t *testing.T) {
	state := MergeState(model.NewDocumentState(), model.FieldUpdate{
		"regulatory_domain": {"AML", "aml", "Banking"},
	})
	// Distinct casings are distinct values; order is by lowercase form
	// with the original form as tie-breaker.
	assert.Equal(t, []string{"AML", "aml", "Banking"}, state.RegulatoryDomain)
}

func TestMergeState_IgnoresDateAndUnknownKeys(t *testing.T) {
	state := model.NewDocumentState()
	state.Date = "2021"
	state = MergeState(state, model.FieldUpdate{
		"date":    {"2022"},
		"unknown": {"x"},
	})
	assert.Equal(t, "2021", state.Date)
}
