// Package photo resolves the "фото <name>" side command to a static image
// file. It sits outside the retrieval pipeline: the ask path routes the
// command prefix here before touching the cache or the vector store.
package photo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// commandPrefix marks a photo lookup request.
const commandPrefix = "фото "

// NotFoundMessage is the user-facing reply when no image file matches.
const NotFoundMessage = "Фото не знайдено."

// extensions are tried in order against the image directory.
var extensions = []string{".jpg", ".jpeg", ".png"}

// Lookup resolves hetman names to image files under a fixed directory.
type Lookup struct {
	dir string
}

// NewLookup creates a photo lookup over the given image directory.
func NewLookup(dir string) *Lookup {
	return &Lookup{dir: dir}
}

// IsCommand reports whether the query is a photo command.
func IsCommand(query string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), commandPrefix)
}

// Name extracts the requested name from a photo command.
func Name(query string) string {
	trimmed := strings.TrimSpace(query)
	return strings.TrimSpace(trimmed[len(commandPrefix):])
}

// Resolve tries each known extension under the image directory and returns
// the path of the first existing file plus the user-facing answer. A miss is
// reported with NotFoundMessage, never an empty reply.
func (l *Lookup) Resolve(name string) (path, answer string) {
	for _, ext := range extensions {
		candidate := filepath.Join(l.dir, name+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, fmt.Sprintf("Ось фото: %s", name)
		}
	}
	return "", NotFoundMessage
}
