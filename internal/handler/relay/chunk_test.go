package relay

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkReassembly(t *testing.T) {
	inputs := []string{
		"",
		"ab",
		"abc",
		"abcd",
		"explain big O notation in plain words",
		"héllo wörld",
		"日本語のテキストです",
		"mixed 日本語 and ascii ✓",
	}
	for _, in := range inputs {
		chunks := ChunkRunes(in, 3)
		if got := strings.Join(chunks, ""); got != in {
			t.Fatalf("reassembly mismatch for %q: got %q", in, got)
		}
	}
}

func TestChunkSizes(t *testing.T) {
	chunks := ChunkRunes("abcdefg", 3)
	want := []string{"abc", "def", "g"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d: got %q want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunkNeverSplitsRunes(t *testing.T) {
	for _, chunk := range ChunkRunes("日本語のテキスト✓です", 3) {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %q is not valid UTF-8", chunk)
		}
	}
}

func TestChunkEmptyAndBadSize(t *testing.T) {
	if got := ChunkRunes("", 3); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := ChunkRunes("abc", 0); got != nil {
		t.Fatalf("expected nil for zero size, got %v", got)
	}
}
