package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText_StripsChromeAndFormatsBlocks(t *testing.T) {
	doc := `<html><head><style>body{}</style></head><body>
		<nav>menu links</nav>
		<h1>DIRECTIVE (EU) 2021/555</h1>
		<p>Article 1 applies.</p>
		<ul><li>first point</li><li>second point</li></ul>
		<script>alert(1)</script>
		<footer>copyright</footer>
	</body></html>`

	text, err := HTMLToText(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Contains(t, text, "DIRECTIVE (EU) 2021/555")
	assert.Contains(t, text, "Article 1 applies.")
	assert.Contains(t, text, "\n- first point")
	assert.Contains(t, text, "\n- second point")
	assert.NotContains(t, text, "menu links")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "copyright")
	assert.NotContains(t, text, "\n\n\n")
}

func TestHTMLToText_PrefersMainContainer(t *testing.T) {
	body := strings.Repeat("The regulation text continues here. ", 12)
	doc := `<html><body>
		<div>sidebar junk that should not win</div>
		<div id="innerDocument"><p>` + body + `</p></div>
	</body></html>`

	text, err := HTMLToText(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Contains(t, text, "regulation text continues")
	assert.NotContains(t, text, "sidebar junk")
}

func TestHTMLToText_BrBecomesNewline(t *testing.T) {
	text, err := HTMLToText(strings.NewReader("<p>line one<br>line two</p>"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestHTMLToText_UnescapesEntities(t *testing.T) {
	text, err := HTMLToText(strings.NewReader("<p>R&amp;D &eacute;tat</p>"))
	require.NoError(t, err)
	assert.Equal(t, "R&D état", text)
}

func TestReadDocument_HTMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><p>hello law</p></body></html>"), 0o644))

	text, err := ReadDocument(path, "")
	require.NoError(t, err)
	assert.Equal(t, "hello law", text)
}

func TestReadDocument_PlainTextWithEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	// "état" in ISO-8859-1.
	require.NoError(t, os.WriteFile(path, []byte{0xe9, 't', 'a', 't'}, 0o644))

	text, err := ReadDocument(path, "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "état", text)
}

func TestReadDocument_UnknownEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ReadDocument(path, "not-a-charset")
	assert.Error(t, err)
}
