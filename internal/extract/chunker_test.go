package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks_ShortTextSingleChunk(t *testing.T) {
	chunks := SplitChunks("a short document", 4000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplitChunks_Empty(t *testing.T) {
	assert.Empty(t, SplitChunks("", 4000))
	assert.Empty(t, SplitChunks("   \n\n  ", 4000))
}

func TestSplitChunks_PrefersLatestSeparator(t *testing.T) {
	a := strings.Repeat("a", 300)
	b := strings.Repeat("b", 300)
	text := a + ". " + b
	chunks := SplitChunks(text, 400)
	require.Len(t, chunks, 2)
	assert.Equal(t, a+".", chunks[0])
	assert.Equal(t, b, chunks[1])
}

func TestSplitChunks_ParagraphBreakBeatsEarlierSentence(t *testing.T) {
	text := strings.Repeat("x", 250) + ". " + strings.Repeat("y", 100) + "\n\n" + strings.Repeat("z", 300)
	chunks := SplitChunks(text, 400)
	require.Len(t, chunks, 2)
	// The latest separator in the window wins, whatever its kind.
	assert.True(t, strings.HasSuffix(chunks[0], "y"))
	assert.Equal(t, strings.Repeat("z", 300), chunks[1])
}

func TestSplitChunks_IgnoresSeparatorBeforeMinCut(t *testing.T) {
	text := strings.Repeat("a", 50) + ". " + strings.Repeat("b", 500)
	chunks := SplitChunks(text, 300)
	require.NotEmpty(t, chunks)
	// The early separator is too close to the start, so the first cut
	// is the hard limit.
	assert.Len(t, chunks[0], 300)
}

func TestSplitChunks_FinalWindowSplitsAtSeparator(t *testing.T) {
	text := strings.Repeat("a", 250) + ". " + strings.Repeat("b", 100)
	chunks := SplitChunks(text, 4000)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 250)+".", chunks[0])
	assert.Equal(t, strings.Repeat("b", 100), chunks[1])
}

func TestSplitChunks_RespectsLimit(t *testing.T) {
	text := strings.Repeat("word word word. ", 2000)
	for _, chunk := range SplitChunks(text, 500) {
		assert.LessOrEqual(t, len(chunk), 500)
		assert.NotEmpty(t, chunk)
	}
}

func TestSplitChunks_CoversInput(t *testing.T) {
	text := strings.Repeat("the quick brown fox; jumps over. the lazy dog\n\n", 100)
	chunks := SplitChunks(text, 300)
	joined := strings.Join(chunks, " ")
	norm := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	assert.Equal(t, norm(text), norm(joined))
}

func TestSplitChunks_HardCutAvoidsSplittingRunes(t *testing.T) {
	text := strings.Repeat("é", 300)
	for _, chunk := range SplitChunks(text, 251) {
		assert.True(t, strings.HasPrefix(chunk, "é"))
		for _, r := range chunk {
			assert.Equal(t, 'é', r)
		}
	}
}

func TestSplitChunks_ZeroLimitUsesDefault(t *testing.T) {
	text := strings.Repeat("a. ", 3000)
	chunks := SplitChunks(text, 0)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), DefaultChunkLimit)
	}
}
