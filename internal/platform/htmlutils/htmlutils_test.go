package htmlutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("🧠"))
	assert.Equal(t, 3, UTF16Len("é🧠"))
}

func TestUTF16Slice(t *testing.T) {
	assert.Equal(t, "ab", utf16Slice("abc", 2))
	assert.Equal(t, "a", utf16Slice("a🧠", 2))
	assert.Equal(t, "a🧠", utf16Slice("a🧠", 3))
}

func TestVisibleLen(t *testing.T) {
	assert.Equal(t, 5, VisibleLen("<b>a&amp;b</b> c"))
}

func TestSplitHTML_FitsUnchanged(t *testing.T) {
	text := "<b>Title</b>\nbody"

	assert.Equal(t, []string{text}, SplitHTML(text, 100))
}

func TestSplitHTML_SplitsOnLines(t *testing.T) {
	lines := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, strings.Repeat("x", 9))
	}

	parts := SplitHTML(strings.Join(lines, "\n"), 25)
	require.Greater(t, len(parts), 1)

	for _, p := range parts {
		assert.LessOrEqual(t, VisibleLen(p), 25)
		assert.False(t, strings.HasPrefix(p, "\n"))
	}

	assert.Equal(t, strings.Repeat("x", 90), strings.ReplaceAll(strings.Join(parts, ""), "\n", ""))
}

func TestSplitHTML_ReopensTags(t *testing.T) {
	text := "<i>" + strings.Repeat("word ", 10) + "</i>"

	parts := SplitHTML(text, 12)
	require.Greater(t, len(parts), 1)

	for _, p := range parts {
		assert.True(t, strings.HasPrefix(p, "<i>"), p)
		assert.True(t, strings.HasSuffix(p, "</i>"), p)
		assert.LessOrEqual(t, VisibleLen(p), 12)
	}
}

func TestSplitHTML_HardCutWithoutBoundary(t *testing.T) {
	parts := SplitHTML(strings.Repeat("y", 30), 10)

	assert.Equal(t, []string{strings.Repeat("y", 10), strings.Repeat("y", 10), strings.Repeat("y", 10)}, parts)
}

func TestSplitHTML_KeepsEntitiesWhole(t *testing.T) {
	parts := SplitHTML(strings.Repeat("&amp;", 6), 4)

	for _, p := range parts {
		assert.NotContains(t, StripHTMLTags(p), "amp;")
		assert.LessOrEqual(t, VisibleLen(p), 4)
	}

	assert.Equal(t, strings.Repeat("&", 6), StripHTMLTags(strings.Join(parts, "")))
}
