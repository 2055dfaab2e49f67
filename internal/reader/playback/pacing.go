package playback

import (
	"strings"
	"time"

	"rsvp-reader/internal/reader/textparse"
)

// Reading speed bounds in words per minute.
const (
	MinWPM     = 50
	MaxWPM     = 2000
	DefaultWPM = 300
)

// ClampWPM forces wpm into [MinWPM, MaxWPM].
func ClampWPM(wpm int) int {
	return min(max(wpm, MinWPM), MaxWPM)
}

// BaseDelay is the display time of an unpunctuated normal word.
func BaseDelay(wpm int) time.Duration {
	return time.Minute / time.Duration(ClampWPM(wpm))
}

// typeFloor is the minimum multiplier for each structural type. Types not
// listed have no floor.
var typeFloor = map[textparse.SegmentType]float64{
	textparse.H1:         2.5,
	textparse.H2:         2.0,
	textparse.H3:         1.8,
	textparse.H4:         1.5,
	textparse.H5:         1.5,
	textparse.H6:         1.5,
	textparse.ListItem:   1.3,
	textparse.Blockquote: 1.4,
}

// PauseMultiplier scales BaseDelay for one word. Trailing punctuation sets
// the base (, 1.3; : or ; 1.5; . ! ? 2.0) and the structural type can only
// raise it.
func PauseMultiplier(typ textparse.SegmentType, word string) float64 {
	m := 1.0
	switch {
	case strings.HasSuffix(word, ","):
		m = 1.3
	case strings.HasSuffix(word, ":"), strings.HasSuffix(word, ";"):
		m = 1.5
	case strings.HasSuffix(word, "."), strings.HasSuffix(word, "!"), strings.HasSuffix(word, "?"):
		m = 2.0
	}
	return max(m, typeFloor[typ])
}

// UnitDelay is how long unit stays on screen at wpm.
func UnitDelay(unit textparse.DisplayUnit, wpm int) time.Duration {
	return time.Duration(float64(BaseDelay(wpm)) * PauseMultiplier(unit.Type, unit.Text))
}

// WordParts splits a word around its focal letter.
type WordParts struct {
	Pre   string
	Focal string
	Post  string
}

// SplitWord returns the optimal recognition point split of word. The focal
// letter moves right as words get longer: index 0 for one letter, 1 up to
// five, 2 up to nine, 3 up to thirteen, 4 beyond.
func SplitWord(word string) WordParts {
	r := []rune(word)
	if len(r) == 0 {
		return WordParts{}
	}

	var pivot int
	switch n := len(r); {
	case n == 1:
		pivot = 0
	case n <= 5:
		pivot = 1
	case n <= 9:
		pivot = 2
	case n <= 13:
		pivot = 3
	default:
		pivot = 4
	}

	return WordParts{
		Pre:   string(r[:pivot]),
		Focal: string(r[pivot : pivot+1]),
		Post:  string(r[pivot+1:]),
	}
}

// Style holds renderer emphasis factors for a structural type.
type Style struct {
	Size       float64
	Brightness float64
	Duration   float64
}

// VisualStyle returns the emphasis for typ. Unknown types get 1/1/1.
func VisualStyle(typ textparse.SegmentType) Style {
	switch typ {
	case textparse.H1:
		return Style{Size: 1.3, Brightness: 1.5, Duration: 2.0}
	case textparse.H2:
		return Style{Size: 1.2, Brightness: 1.4, Duration: 1.8}
	case textparse.H3:
		return Style{Size: 1.15, Brightness: 1.3, Duration: 1.6}
	case textparse.H4:
		return Style{Size: 1.1, Brightness: 1.2, Duration: 1.4}
	case textparse.H5, textparse.H6:
		return Style{Size: 1.05, Brightness: 1.1, Duration: 1.2}
	case textparse.ListItem:
		return Style{Size: 1.0, Brightness: 1.1, Duration: 1.1}
	case textparse.Blockquote:
		return Style{Size: 1.0, Brightness: 0.9, Duration: 1.2}
	case textparse.Code:
		return Style{Size: 0.95, Brightness: 1.0, Duration: 1.0}
	default:
		return Style{Size: 1.0, Brightness: 1.0, Duration: 1.0}
	}
}
