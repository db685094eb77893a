// Package ingest discovers source documents on disk and converts them
// to plain text for extraction.
package ingest

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Document points at one discovered source file. DocID is the
// canonicalized file stem and identifies the document everywhere
// downstream.
type Document struct {
	Path  string
	DocID string
}

var (
	copySuffixRe      = regexp.MustCompile(`\s*\(\d+\)$`)
	copyWordRe        = regexp.MustCompile(`(?i)(^|[-_\s])(checkpoint|copy|copie|copiar)$`)
	checkpointInfixRe = regexp.MustCompile(`(?i)[-_]checkpoint`)
)

// canonStem maps copy and checkpoint variants like
// "directive-2021 (2).html" or "directive-2021-checkpoint.html" to the
// same key as "directive-2021.html" so duplicated downloads collapse to
// one document.
func canonStem(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = copyWordRe.ReplaceAllString(stem, "")
	stem = checkpointInfixRe.ReplaceAllString(stem, "")
	stem = copySuffixRe.ReplaceAllString(stem, "")
	stem = strings.Join(strings.Fields(stem), " ")
	return strings.ToLower(stem)
}

func skippable(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "._") ||
		strings.HasSuffix(name, "~")
}

// isCheckpoint reports whether path looks like a notebook checkpoint
// artifact. Checkpoint files never enter discovery, so the original
// document always wins its canonical group.
func isCheckpoint(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	dir := strings.ToLower(filepath.Dir(path))
	return strings.Contains(name, "-checkpoint") ||
		strings.Contains(name, "_checkpoint.") ||
		strings.Contains(dir, ".ipynb_checkpoints")
}

// DiscoverFiles lists the processable documents under root: regular
// files with one of the given extensions, hidden/backup/checkpoint
// files skipped, duplicate copies collapsed to the newest file per
// canonical stem. With recursive set, hidden directories are skipped but
// everything else is walked. The result is sorted by name for
// reproducible batch order.
func DiscoverFiles(root string, exts []string, recursive bool) ([]Document, error) {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimSpace(e))] = true
	}

	if _, err := os.Stat(root); err != nil {
		return nil, eris.Wrapf(err, "ingest: read dir %s", root)
	}

	type candidate struct {
		doc     Document
		modTime time.Time
	}
	grouped := make(map[string]candidate)

	consider := func(path string, entry os.DirEntry) {
		name := entry.Name()
		if skippable(name) || isCheckpoint(path) || !allowed[strings.ToLower(filepath.Ext(name))] {
			return
		}
		info, err := entry.Info()
		if err != nil {
			return
		}
		key := canonStem(name)
		cand := candidate{
			doc:     Document{Path: path, DocID: key},
			modTime: info.ModTime(),
		}
		if best, ok := grouped[key]; !ok || cand.modTime.After(best.modTime) {
			grouped[key] = cand
		}
	}

	if recursive {
		err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if path != root && strings.HasPrefix(entry.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			consider(path, entry)
			return nil
		})
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: walk dir %s", root)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read dir %s", root)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			consider(filepath.Join(root, entry.Name()), entry)
		}
	}

	docs := make([]Document, 0, len(grouped))
	for _, c := range grouped {
		docs = append(docs, c.doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return strings.ToLower(filepath.Base(docs[i].Path)) < strings.ToLower(filepath.Base(docs[j].Path))
	})

	zap.L().Info("documents discovered",
		zap.String("dir", root),
		zap.Int("count", len(docs)))
	return docs, nil
}
