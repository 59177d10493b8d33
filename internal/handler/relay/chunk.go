package relay

// ChunkRunes splits text into fragments of at most size code points. Rune
// boundaries keep multi-byte characters intact even though the wire chunk
// size is fixed. Concatenating the fragments reproduces the input exactly.
func ChunkRunes(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
