package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON_DirectParse(t *testing.T) {
	v, ok := RecoverJSON(`{"date":"2021-03-02"}`, true)
	require.True(t, ok)
	obj := v.(map[string]any)
	assert.Equal(t, "2021-03-02", obj["date"])
}

func TestRecoverJSON_CodeFence(t *testing.T) {
	raw := "```json\n{\"sector\": [\"energy\"]}\n```"
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	obj := v.(map[string]any)
	assert.Contains(t, obj, "sector")
}

func TestRecoverJSON_SmartQuotes(t *testing.T) {
	raw := "{“date”: “2020”}"
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	assert.Equal(t, "2020", v.(map[string]any)["date"])
}

func TestRecoverJSON_LeadingAndTrailingProse(t *testing.T) {
	raw := `Here is the result you asked for: {"same_law": true, "confidence": 0.9} I hope that helps!`
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	obj := v.(map[string]any)
	assert.Equal(t, true, obj["same_law"])
	assert.Equal(t, 0.9, obj["confidence"])
}

func TestRecoverJSON_BraceInsideString(t *testing.T) {
	// The closing brace inside the quoted value must not end the span.
	raw := `{"a":"}{"}`
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	assert.Equal(t, "}{", v.(map[string]any)["a"])
}

func TestRecoverJSON_EscapedQuoteInsideString(t *testing.T) {
	raw := `noise {"a":"say \"}\" twice"} noise`
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	assert.Equal(t, `say "}" twice`, v.(map[string]any)["a"])
}

func TestRecoverJSON_MismatchedBrackets(t *testing.T) {
	_, ok := RecoverJSON(`{"a": [1, 2}`, true)
	assert.False(t, ok)
}

func TestRecoverJSON_ExpectObjectRejectsArray(t *testing.T) {
	_, ok := RecoverJSON(`[1, 2, 3]`, true)
	assert.False(t, ok)

	v, ok := RecoverJSON(`[1, 2, 3]`, false)
	require.True(t, ok)
	assert.Len(t, v, 3)
}

func TestRecoverJSON_EmptyAndGarbage(t *testing.T) {
	_, ok := RecoverJSON("", true)
	assert.False(t, ok)

	_, ok = RecoverJSON("   \n\t", true)
	assert.False(t, ok)

	_, ok = RecoverJSON("no json here at all", true)
	assert.False(t, ok)
}

func TestRecoverJSON_NestedObjectSpan(t *testing.T) {
	raw := `prefix {"outer":{"inner":[1,{"k":"v"}]}} suffix {"second":1}`
	v, ok := RecoverJSON(raw, true)
	require.True(t, ok)
	obj := v.(map[string]any)
	assert.Contains(t, obj, "outer")
	assert.NotContains(t, obj, "second")
}

func TestFindBalancedSpan_UnterminatedString(t *testing.T) {
	assert.Empty(t, findBalancedSpan(`{"a":"never closed`))
}
