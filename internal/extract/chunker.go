package extract

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkLimit is the maximum chunk size in bytes.
	DefaultChunkLimit = 4000
	// minCut is the minimum distance from the window start at which a
	// separator cut is honored. Cuts closer than this fall back to the
	// hard limit so separator-dense text cannot produce tiny chunks.
	minCut = 200
)

// chunkSeparators in priority order: paragraph break, list-item break,
// clause break, sentence break. The latest occurrence of any of them
// inside the window wins.
var chunkSeparators = []string{"\n\n", "\n- ", "; ", ". "}

// SplitChunks splits text into ordered, trimmed, non-empty pieces of at
// most limit bytes each. Boundaries prefer the latest separator in the
// window; when none falls at least minCut bytes in, the text is cut at
// the hard limit (backed off to a rune boundary). Deterministic for a
// given input and limit.
func SplitChunks(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	var chunks []string
	i, n := 0, len(text)
	for i < n {
		j := i + limit
		if j > n {
			j = n
		}
		// The final window is searched too, so a document tail may split
		// into one more small chunk at its last separator.
		cut := -1
		window := text[i:j]
		for _, sep := range chunkSeparators {
			if k := strings.LastIndex(window, sep); k >= 0 && i+k+len(sep) > cut {
				cut = i + k + len(sep)
			}
		}
		if cut < i+minCut {
			cut = j
			for cut < n && cut > i && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == i {
				cut = j
			}
		}
		if piece := strings.TrimSpace(text[i:cut]); piece != "" {
			chunks = append(chunks, piece)
		}
		i = cut
	}
	return chunks
}
