package ingest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// Tags whose subtree carries no document text.
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"noscript": true,
	"aside":    true,
	"form":     true,
}

// Containers that usually hold the legal text itself, in preference
// order. The first one with a meaningful amount of text wins.
var mainContainers = []struct {
	tag, id string
}{
	{"", "innerDocument"},
	{"main", "contentsLaw"},
	{"", "docHtml"},
	{"article", ""},
	{"", "content"},
	{"body", ""},
}

const containerMinText = 200

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "table": true,
	"tr": true, "ul": true, "ol": true, "blockquote": true,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"strong": true, "b": true,
}

var manyNewlinesRe = regexp.MustCompile(`\n{3,}`)

// HTMLToText renders an HTML document as plain text suitable for
// chunking: list items become "- " lines, headings get their own line,
// boilerplate chrome (nav, script, form) is dropped entirely.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", eris.Wrap(err, "ingest: parse html")
	}
	root := findMainContainer(doc)
	var b strings.Builder
	renderText(&b, root)
	return collapseText(b.String()), nil
}

func findMainContainer(doc *html.Node) *html.Node {
	for _, sel := range mainContainers {
		if n := findNode(doc, sel.tag, sel.id); n != nil {
			var b strings.Builder
			renderText(&b, n)
			if len(strings.TrimSpace(b.String())) > containerMinText {
				return n
			}
		}
	}
	return doc
}

func findNode(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode {
		tagOK := tag == "" || n.Data == tag
		idOK := id == "" || nodeID(n) == id
		if tagOK && idOK && (tag != "" || id != "") {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag, id); found != nil {
			return found
		}
	}
	return nil
}

func nodeID(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "id" {
			return a.Val
		}
	}
	return ""
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		tag := n.Data
		if strippedTags[tag] {
			return
		}
		switch {
		case tag == "br" || tag == "hr":
			b.WriteString("\n")
			return
		case tag == "li":
			b.WriteString("\n- ")
			renderChildren(b, n)
			b.WriteString("\n")
			return
		case headingTags[tag]:
			b.WriteString("\n")
			renderChildren(b, n)
			b.WriteString("\n")
			return
		case blockTags[tag]:
			b.WriteString("\n")
			renderChildren(b, n)
			b.WriteString("\n")
			return
		}
	}
	renderChildren(b, n)
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
}

func collapseText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	s = strings.Join(lines, "\n")
	s = manyNewlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// ReadDocument loads one source file and returns its plain text. HTML
// and XML files are rendered through HTMLToText; everything else is
// read verbatim. An explicit encoding name overrides charset sniffing.
func ReadDocument(path, encoding string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: read %s", path)
	}

	var r io.Reader = bytes.NewReader(raw)
	if encoding != "" {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return "", eris.Wrapf(err, "ingest: unknown encoding %s", encoding)
		}
		r = enc.NewDecoder().Reader(r)
	} else {
		r, err = charset.NewReader(r, "")
		if err != nil {
			return "", eris.Wrapf(err, "ingest: detect charset for %s", path)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xml":
		return HTMLToText(r)
	default:
		decoded, err := io.ReadAll(r)
		if err != nil {
			return "", eris.Wrapf(err, "ingest: decode %s", path)
		}
		return strings.TrimSpace(string(decoded)), nil
	}
}
