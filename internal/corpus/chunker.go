package corpus

import "fmt"

// SplitIntoChunks splits text into overlapping fixed-size windows.
// Windows are measured in runes, not bytes: the corpus is Cyrillic and a
// byte-based window would cut UTF-8 sequences in half.
//
// Starting at offset 0 it emits text[start : start+size] and advances start
// by size-overlap until start reaches the end of the text. The final chunk
// may be shorter than size.
func SplitIntoChunks(text string, size, overlap int) ([]string, error) {
	// overlap >= size would make the window stop advancing.
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
