package textparse

import (
	"strings"
	"unicode/utf8"
)

// DisplayUnit is one word shown on its own during playback.
type DisplayUnit struct {
	Text         string      `json:"text"`
	Type         SegmentType `json:"type"`
	SectionTitle string      `json:"sectionTitle,omitempty"`
}

// ToDisplayUnits splits every segment on whitespace. Each word inherits its
// segment's type and section title.
func ToDisplayUnits(segments []Segment) []DisplayUnit {
	var units []DisplayUnit
	for _, seg := range segments {
		for _, word := range strings.Fields(seg.Text) {
			units = append(units, DisplayUnit{Text: word, Type: seg.Type, SectionTitle: seg.SectionTitle})
		}
	}
	return units
}

// PlainUnits splits text on whitespace into Normal units with no structure.
func PlainUnits(text string) []DisplayUnit {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	units := make([]DisplayUnit, len(words))
	for i, w := range words {
		units[i] = DisplayUnit{Text: w, Type: Normal}
	}
	return units
}

// ParseUnits is the full text-to-units pipeline. Input over
// MaxStructuredBytes is cut to that size and split plainly; structured
// parsing that yields no words also falls back to the plain split.
func ParseUnits(text string) []DisplayUnit {
	text = strings.TrimSpace(text)
	if len(text) > MaxStructuredBytes {
		return PlainUnits(truncateBytes(text, MaxStructuredBytes))
	}
	if units := ToDisplayUnits(Parse(text)); len(units) > 0 {
		return units
	}
	return PlainUnits(text)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
