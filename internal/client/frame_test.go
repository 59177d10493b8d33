package client

import (
	"reflect"
	"testing"
)

func TestSplitLinesBasic(t *testing.T) {
	lines, rest := SplitLines(nil, []byte("a\nb\nc"))
	if !reflect.DeepEqual(lines, []string{"a", "b"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if string(rest) != "c" {
		t.Fatalf("unexpected carry: %q", rest)
	}
}

func TestSplitLinesCarryAcrossReads(t *testing.T) {
	// A frame split mid-payload must survive the read boundary.
	lines, rest := SplitLines(nil, []byte(`data: {"cont`))
	if len(lines) != 0 {
		t.Fatalf("incomplete line must not be emitted: %v", lines)
	}

	lines, rest = SplitLines(rest, []byte("ent\": \"hi\"}\n\n"))
	if !reflect.DeepEqual(lines, []string{`data: {"content": "hi"}`, ""}) {
		t.Fatalf("unexpected lines after reassembly: %v", lines)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected carry: %q", rest)
	}
}

func TestSplitLinesEmptyChunk(t *testing.T) {
	lines, rest := SplitLines([]byte("partial"), nil)
	if len(lines) != 0 || string(rest) != "partial" {
		t.Fatalf("unexpected result: %v %q", lines, rest)
	}
}

func TestSplitLinesPure(t *testing.T) {
	carry := []byte("abc")
	chunk := []byte("def\n")
	SplitLines(carry, chunk)
	if string(carry) != "abc" || string(chunk) != "def\n" {
		t.Fatal("inputs must not be mutated")
	}
}
