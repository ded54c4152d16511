package flows

import (
	"strings"
	"unicode/utf16"
)

// maxMessageLen is the Telegram limit on message text, counted in UTF-16
// code units.
const maxMessageLen = 4096

const truncatedMark = "\n[truncated]"

// fitMessage makes text deliverable: invalid UTF-8 becomes U+FFFD, NUL bytes
// are dropped and anything past the length limit is cut with a marker.
func fitMessage(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, "\x00", "")

	limit := maxMessageLen - len(truncatedMark)
	n, cut := 0, -1
	for i, r := range text {
		n += utf16.RuneLen(r)
		if cut < 0 && n > limit {
			cut = i
		}
		if n > maxMessageLen {
			return text[:cut] + truncatedMark
		}
	}
	return text
}
