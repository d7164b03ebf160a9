// Package htmlutils splits Telegram HTML messages into sendable parts.
//
// Telegram counts message length in UTF-16 code units of the visible text,
// so tags are free and emoji outside the BMP count twice. Parts are cut at
// paragraph, line or word boundaries, and formatting tags open at a cut are
// closed at the end of one part and reopened at the start of the next.
package htmlutils

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf16"
)

var tagRegex = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)

// boundaries are tried in order when a text run must be cut.
var boundaries = []string{"\n\n", "\n", " "}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Slice returns the longest prefix of s that fits in maxUnits code units.
func utf16Slice(s string, maxUnits int) string {
	units := 0

	for i, r := range s {
		runeUnits := 1
		if r > 0xFFFF {
			runeUnits = 2
		}

		if units+runeUnits > maxUnits {
			return s[:i]
		}

		units += runeUnits
	}

	return s
}

// VisibleLen returns the Telegram length of an HTML message: tags are
// ignored and entities count as the character they encode.
func VisibleLen(text string) int {
	return UTF16Len(StripHTMLTags(text))
}

// StripHTMLTags removes all tags and unescapes entities.
func StripHTMLTags(text string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(text, ""))
}

// SplitHTML splits text into parts whose visible length is at most limit.
// A text that already fits is returned unchanged as a single part.
func SplitHTML(text string, limit int) []string {
	if limit <= 0 || VisibleLen(text) <= limit {
		return []string{text}
	}

	s := &splitter{limit: limit}

	last := 0
	for _, idx := range tagRegex.FindAllStringSubmatchIndex(text, -1) {
		s.writeText(text[last:idx[0]])
		s.writeTag(text[idx[0]:idx[1]], text[idx[2]:idx[3]] == "/", strings.ToLower(text[idx[4]:idx[5]]))
		last = idx[1]
	}

	s.writeText(text[last:])
	s.flush()

	return s.parts
}

type openTag struct {
	name string
	raw  string
}

type splitter struct {
	parts    []string
	current  strings.Builder
	curLen   int
	openTags []openTag
	limit    int
}

func (s *splitter) writeTag(raw string, closing bool, name string) {
	if closing {
		for i := len(s.openTags) - 1; i >= 0; i-- {
			if s.openTags[i].name == name {
				s.openTags = append(s.openTags[:i], s.openTags[i+1:]...)
				break
			}
		}
	} else {
		s.openTags = append(s.openTags, openTag{name: name, raw: raw})
	}

	s.current.WriteString(raw)
}

// writeText appends escaped text, cutting it into new parts as needed.
// Entities are never split because cuts happen on unescaped text.
func (s *splitter) writeText(escaped string) {
	remaining := html.UnescapeString(escaped)

	for remaining != "" {
		room := s.limit - s.curLen
		if room <= 0 {
			s.flush()
			continue
		}

		if n := UTF16Len(remaining); n <= room {
			s.current.WriteString(html.EscapeString(remaining))
			s.curLen += n

			return
		}

		head, tail := cut(remaining, room)
		if head == "" && s.curLen > 0 {
			s.flush()
			continue
		}

		if head == "" {
			head = utf16Slice(remaining, room)
			tail = remaining[len(head):]
		}

		s.current.WriteString(html.EscapeString(head))
		s.curLen += UTF16Len(head)
		remaining = strings.TrimLeft(tail, " \n")

		s.flush()
	}
}

// cut returns the longest prefix of text ending at a boundary that fits in
// room, or an empty head when no boundary fits.
func cut(text string, room int) (head, tail string) {
	window := utf16Slice(text, room)

	for _, sep := range boundaries {
		if pos := strings.LastIndex(window, sep); pos > 0 {
			return text[:pos], text[pos+len(sep):]
		}
	}

	return "", text
}

// flush closes open tags, emits the current part and reopens the tags in
// the next one.
func (s *splitter) flush() {
	content := strings.TrimRight(s.current.String(), " \n")

	if StripHTMLTags(content) != "" {
		for i := len(s.openTags) - 1; i >= 0; i-- {
			content += "</" + s.openTags[i].name + ">"
		}

		s.parts = append(s.parts, content)
	}

	s.current.Reset()
	s.curLen = 0

	for _, t := range s.openTags {
		s.current.WriteString(t.raw)
	}
}
