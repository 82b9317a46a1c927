package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveChunkSet persists the chunk set as a pretty-printed UTF-8 JSON array.
// Non-Latin text is written verbatim (no \u escaping) so the artifact stays
// readable for a Cyrillic corpus. The write goes through a temp file and a
// rename so a crash never leaves a half-written artifact behind.
func SaveChunkSet(path string, chunks []Chunk) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		return fmt.Errorf("failed to encode chunk set: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".chunks-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp chunk set file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write chunk set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close chunk set file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace chunk set file: %w", err)
	}
	return nil
}

// LoadChunkSet reads a previously persisted chunk set verbatim.
func LoadChunkSet(path string) ([]Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk set %s: %w", path, err)
	}
	var chunks []Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunk set %s: %w", path, err)
	}
	return chunks, nil
}

// ChunkSetExists reports whether a chunk-set artifact is already present.
func ChunkSetExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
