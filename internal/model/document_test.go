package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentState_MarshalsEmptyLists(t *testing.T) {
	state := NewDocumentState()

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sector":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestDocumentState_CloneIsIndependent(t *testing.T) {
	state := NewDocumentState()
	state.Sector = []string{"Energy"}

	clone := state.Clone()
	clone.Sector[0] = "Mutated"
	clone.Activity = append(clone.Activity, "Trading")

	assert.Equal(t, []string{"Energy"}, state.Sector)
	assert.Empty(t, state.Activity)
}

func TestDocumentState_FieldCoversAllKeys(t *testing.T) {
	state := NewDocumentState()
	for _, key := range FieldKeys {
		require.NotNil(t, state.Field(key), key)
	}
	assert.Nil(t, state.Field("not_a_field"))
}

func TestDateInfo_Clone(t *testing.T) {
	info := DateInfo{Date: "2021-03-02", Specificity: SpecificityFullDate, Locked: true}
	clone := info.Clone()
	clone.Date = "1999"
	assert.Equal(t, "2021-03-02", info.Date)
}

func TestSortCaseInsensitive(t *testing.T) {
	vals := []string{"zeta", "Alpha", "alpha", "Beta"}
	SortCaseInsensitive(vals)
	assert.Equal(t, []string{"Alpha", "alpha", "Beta", "zeta"}, vals)
}
