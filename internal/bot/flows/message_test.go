package flows

import (
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFitMessage(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		truncated bool
	}{
		{name: "short", in: "ok"},
		{name: "at limit", in: strings.Repeat("a", maxMessageLen)},
		{name: "over limit", in: strings.Repeat("a", maxMessageLen+1), truncated: true},
		{name: "wide runes", in: strings.Repeat("😀", maxMessageLen/2+1), truncated: true},
		{name: "invalid utf8", in: "a\xffb\x00c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitMessage(tt.in)
			assert.True(t, utf8.ValidString(got))
			assert.NotContains(t, got, "\x00")
			assert.LessOrEqual(t, len(utf16.Encode([]rune(got))), maxMessageLen)
			assert.Equal(t, tt.truncated, strings.HasSuffix(got, truncatedMark))
		})
	}

	assert.Equal(t, "a\uFFFDbc", fitMessage("a\xffb\x00c"))
}
