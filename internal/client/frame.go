package client

// SplitLines appends chunk to the carry-over buffer and returns every
// complete line. The trailing partial line (no newline yet) becomes the new
// carry, so frames split across two reads reassemble correctly. Pure
// function; callers own the buffers.
func SplitLines(carry, chunk []byte) (lines []string, rest []byte) {
	buf := append(append([]byte(nil), carry...), chunk...)

	start := 0
	for i, b := range buf {
		if b == '\n' {
			lines = append(lines, string(buf[start:i]))
			start = i + 1
		}
	}
	return lines, buf[start:]
}
