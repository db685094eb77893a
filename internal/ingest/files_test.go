package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscoverFiles_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Zebra-act.html", "z")
	writeFile(t, dir, "alpha-directive.html", "a")
	writeFile(t, dir, "notes.md", "skip me")
	writeFile(t, dir, ".hidden.html", "skip me")
	writeFile(t, dir, "backup.html~", "skip me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.html"), 0o755))

	docs, err := DiscoverFiles(dir, []string{".html", ".xml", ".txt"}, false)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha-directive", docs[0].DocID)
	assert.Equal(t, "zebra-act", docs[1].DocID)
}

func TestDiscoverFiles_DedupesCopiesByNewestMtime(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "directive-2021.html", "old")
	newer := writeFile(t, dir, "directive-2021 (1).html", "new")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	docs, err := DiscoverFiles(dir, []string{".html"}, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "directive-2021", docs[0].DocID)
	assert.Equal(t, newer, docs[0].Path)
}

func TestDiscoverFiles_MissingDir(t *testing.T) {
	_, err := DiscoverFiles(filepath.Join(t.TempDir(), "nope"), []string{".html"}, false)
	assert.Error(t, err)
}

func TestDiscoverFiles_SkipsCheckpointArtifacts(t *testing.T) {
	dir := t.TempDir()
	keep := writeFile(t, dir, "directive-2021.html", "real")
	writeFile(t, dir, "directive-2021-checkpoint.html", "stale")
	writeFile(t, dir, "Directive-2021_Checkpoint.html", "stale")

	docs, err := DiscoverFiles(dir, []string{".html"}, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "directive-2021", docs[0].DocID)
	assert.Equal(t, keep, docs[0].Path)
}

func TestDiscoverFiles_SkipsCheckpointDirs(t *testing.T) {
	dir := t.TempDir()
	ckpt := filepath.Join(dir, ".ipynb_checkpoints")
	require.NoError(t, os.Mkdir(ckpt, 0o755))
	writeFile(t, dir, "act.html", "real")
	writeFile(t, ckpt, "act.html", "stale")

	docs, err := DiscoverFiles(dir, []string{".html"}, true)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "act.html"), docs[0].Path)
}

func TestDiscoverFiles_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "2021")
	hidden := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.Mkdir(hidden, 0o755))
	writeFile(t, dir, "top.html", "t")
	writeFile(t, sub, "nested.html", "n")
	writeFile(t, hidden, "ignored.html", "x")

	docs, err := DiscoverFiles(dir, []string{".html"}, true)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "nested", docs[0].DocID)
	assert.Equal(t, "top", docs[1].DocID)
}

func TestCanonStem(t *testing.T) {
	assert.Equal(t, "reg 2019-1020", canonStem("Reg  2019-1020 (3).html"))
	assert.Equal(t, "plain", canonStem("plain.txt"))
	assert.Equal(t, "directive-2021", canonStem("directive-2021-checkpoint.html"))
	assert.Equal(t, "directive-2021", canonStem("directive-2021 copy.html"))
}
