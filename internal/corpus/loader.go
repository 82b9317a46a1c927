package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNoCorpusDir is returned when the corpus directory does not exist.
	ErrNoCorpusDir = errors.New("corpus directory does not exist")
	// ErrEmptyCorpus is returned when the corpus directory contains no eligible text files.
	ErrEmptyCorpus = errors.New("corpus directory contains no text files")
)

// LoadDocuments reads every .txt file under dir, sorted by filename for
// determinism. The first line of each file is the document display name and
// the remainder is the chunkable body.
//
// DocID is derived from the 1-based position in the sorted file list, so
// ordering, not filename content, is the source of identity. Reordering the
// files changes ids; that is a documented limitation of the corpus format.
func LoadDocuments(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCorpusDir, dir)
		}
		return nil, fmt.Errorf("failed to stat corpus directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoCorpusDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, dir)
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file %s: %w", path, err)
		}

		title, body := splitTitle(string(raw))
		docs = append(docs, Document{
			DocID:   fmt.Sprintf("hetman_%02d", i+1),
			DocName: title,
			DocPath: path,
			Text:    body,
		})
	}
	return docs, nil
}

// splitTitle separates the title line from the chunkable body.
func splitTitle(text string) (title, body string) {
	trimmed := strings.TrimSpace(text)
	title, body, found := strings.Cut(trimmed, "\n")
	title = strings.TrimSpace(title)
	if !found {
		return title, ""
	}
	return title, body
}
