package tdt

import (
	"regexp"
	"strings"
)

var (
	leadingPunctRun  = regexp.MustCompile(`^(?:\s*[.,\-;:!?])+\s*`)
	leadingShortWord = regexp.MustCompile(`^\s*[\p{L}\p{N}]{1,4}[.,\-;:]\s*`)
	leadingChain     = regexp.MustCompile(`^(?:\s*[.,\-;:]?\s*[\p{L}\p{N}]{1,4}[.,\-;:])+\s*`)
)

// FilterHallucination strips the three leading stray-token patterns the
// model occasionally emits at chunk boundaries where it transitions from
// silence, then trims. The three strips are repeated until a pass changes
// nothing, so it is idempotent: running it twice is the same as running it
// once.
func FilterHallucination(text string) string {
	text = strings.TrimSpace(text)
	for {
		prev := text
		text = leadingPunctRun.ReplaceAllString(text, "")
		text = leadingShortWord.ReplaceAllString(text, "")
		text = leadingChain.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if text == prev {
			return text
		}
	}
}
