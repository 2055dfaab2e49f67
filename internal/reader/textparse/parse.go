package textparse

import (
	"regexp"
	"strings"
)

// MaxStructuredBytes is the largest input Parse will analyse structurally.
// Longer input is handled by the plain word split in ParseUnits.
const MaxStructuredBytes = 1 << 20

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// IsHTML reports whether text contains tag syntax.
func IsHTML(text string) bool {
	return htmlTag.MatchString(text)
}

// Parse splits text into typed segments. It returns nil for blank input and
// for input larger than MaxStructuredBytes. Malformed markup never fails; at
// worst it is read as plain text.
func Parse(text string) []Segment {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > MaxStructuredBytes {
		return nil
	}
	if IsHTML(text) {
		return parseHTML(text)
	}
	return parseMarkdown(text)
}

var (
	mdHeading    = regexp.MustCompile(`^(#{1,6})\s+(.+?)(?:\s+#+)?$`)
	mdBullet     = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	mdOrdered    = regexp.MustCompile(`^\d{1,9}[.)]\s+(.+)$`)
	mdQuote      = regexp.MustCompile(`^>[>\s]*(.+)$`)
	mdFence      = regexp.MustCompile("^(```|~~~)")
	mdImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdInlineCode = regexp.MustCompile("`([^`]+)`")
	mdBoldItalic = regexp.MustCompile(`\*\*\*([^*]+)\*\*\*`)
	mdBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	mdBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	mdItalUnder  = regexp.MustCompile(`\b_([^_]+)_\b`)
	mdStrike     = regexp.MustCompile(`~~([^~]+)~~`)
)

// stripInline removes emphasis, code and link markup, keeping link text.
func stripInline(s string) string {
	s = mdInlineCode.ReplaceAllString(s, "$1")
	s = mdImage.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdBoldItalic.ReplaceAllString(s, "$1")
	s = mdBold.ReplaceAllString(s, "$1")
	s = mdItalic.ReplaceAllString(s, "$1")
	s = mdBoldUnder.ReplaceAllString(s, "$1")
	s = mdItalUnder.ReplaceAllString(s, "$1")
	s = mdStrike.ReplaceAllString(s, "$1")
	return collapse(s)
}

type markdownParser struct {
	segments []Segment
	section  string
}

func (p *markdownParser) emit(text string, typ SegmentType) {
	if text == "" {
		return
	}
	if typ.IsHeading() {
		p.section = text
	}
	p.segments = append(p.segments, Segment{Text: text, Type: typ, SectionTitle: p.section})
}

func parseMarkdown(text string) []Segment {
	p := &markdownParser{}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if m := mdFence.FindString(line); m != "" {
			if end := closingFence(lines, i+1, m); end >= 0 {
				for _, code := range lines[i+1 : end] {
					p.emit(collapse(code), Code)
				}
				i = end
				continue
			}
			// Unterminated fence: read the marker line as ordinary text.
		}

		switch {
		case mdHeading.MatchString(line):
			m := mdHeading.FindStringSubmatch(line)
			p.emit(stripInline(m[2]), HeadingType(len(m[1])))
		case mdBullet.MatchString(line):
			p.emit(stripInline(mdBullet.FindStringSubmatch(line)[1]), ListItem)
		case mdOrdered.MatchString(line):
			p.emit(stripInline(mdOrdered.FindStringSubmatch(line)[1]), ListItem)
		case mdQuote.MatchString(line):
			p.emit(stripInline(mdQuote.FindStringSubmatch(line)[1]), Blockquote)
		default:
			p.emit(stripInline(line), Normal)
		}
	}
	return p.segments
}

// closingFence returns the index of the line closing a fence opened with
// marker, searching from start, or -1.
func closingFence(lines []string, start int, marker string) int {
	for j := start; j < len(lines); j++ {
		if strings.HasPrefix(strings.TrimSpace(lines[j]), marker) {
			return j
		}
	}
	return -1
}
