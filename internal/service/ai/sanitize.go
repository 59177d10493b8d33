package ai

import (
	"regexp"
	"strings"
)

// The model is instructed to reason inside <thinking> and <stage> blocks.
// Neither those blocks nor any stray markup may reach the client.
var (
	thinkingBlockRe = regexp.MustCompile(`(?s)<thinking>.*?</thinking>`)
	stageBlockRe    = regexp.MustCompile(`(?s)<stage>.*?</stage>`)
	genericTagRe    = regexp.MustCompile(`</?[a-zA-Z_][a-zA-Z0-9_-]*\s*/?>`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips internal markup from a raw model response: paired
// thinking/stage blocks including their content, then any remaining
// markup-style tag, then runs of three or more newlines down to two.
// Total and idempotent; unbalanced tags fall through to the generic-tag
// pass. Stripping a tag can expose another one, so the passes run until
// the text stops changing. Every pass shrinks the text, so this
// terminates.
func Sanitize(raw string) string {
	out := raw
	for {
		next := sanitizePass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func sanitizePass(text string) string {
	out := thinkingBlockRe.ReplaceAllString(text, "")
	out = stageBlockRe.ReplaceAllString(out, "")
	out = genericTagRe.ReplaceAllString(out, "")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
