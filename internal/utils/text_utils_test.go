package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "no limit", tp.TruncateText("no limit", 0))

	got := tp.TruncateText(strings.Repeat("a", 50), 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
	assert.True(t, strings.HasSuffix(got, truncationMarker))
}

func TestTruncateText_DoesNotSplitUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo" with the cut landing inside the two-byte é
	got := tp.TruncateText("héllo", 2)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "h"+truncationMarker, got)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))

	dirty := "ok\xff\xfebad"
	got := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "okbad", got)
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.ProcessText("hello\xffworld", 0)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "helloworld", got)
}
