// Package textparse turns pasted or loaded text into the typed word sequence
// the playback engine paces.
//
// Parse recognises two input flavours. Text containing tag syntax is read as
// HTML and reduced to an allow-list of structural tags; anything else is read
// line by line as lightweight Markdown. Both produce Segments: runs of text
// tagged with a structural type and the title of the heading they sit under.
// ToDisplayUnits then splits segments into one DisplayUnit per word.
package textparse

import "strings"

// SegmentType is the structural role of a piece of text.
type SegmentType string

const (
	Normal     SegmentType = "normal"
	H1         SegmentType = "h1"
	H2         SegmentType = "h2"
	H3         SegmentType = "h3"
	H4         SegmentType = "h4"
	H5         SegmentType = "h5"
	H6         SegmentType = "h6"
	ListItem   SegmentType = "list-item"
	Code       SegmentType = "code"
	Blockquote SegmentType = "blockquote"
)

var headingTypes = [...]SegmentType{H1, H2, H3, H4, H5, H6}

// HeadingType returns the heading type for level 1-6, or Normal.
func HeadingType(level int) SegmentType {
	if level < 1 || level > len(headingTypes) {
		return Normal
	}
	return headingTypes[level-1]
}

// HeadingLevel returns 1-6 for heading types and 0 otherwise.
func (t SegmentType) HeadingLevel() int {
	for i, h := range headingTypes {
		if t == h {
			return i + 1
		}
	}
	return 0
}

// IsHeading reports whether t is one of h1..h6.
func (t SegmentType) IsHeading() bool {
	return t.HeadingLevel() > 0
}

// Segment is a run of text sharing one structural type.
type Segment struct {
	Text         string      `json:"text"`
	Type         SegmentType `json:"type"`
	SectionTitle string      `json:"sectionTitle,omitempty"`
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
