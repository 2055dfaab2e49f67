package textparse

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Difficulty levels.
const (
	LevelEasy   = "easy"
	LevelMedium = "medium"
	LevelHard   = "hard"
)

// Difficulty is a rough readability estimate.
type Difficulty struct {
	// Score approximates Flesch reading ease using characters per word in
	// place of syllables. Higher is easier.
	Score        float64 `json:"score"`
	Level        string  `json:"level"`
	SuggestedWPM int     `json:"suggestedWpm"`
}

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// AnalyzeDifficulty scores text and suggests a reading speed. Blank text
// returns the zero Difficulty.
func AnalyzeDifficulty(text string) Difficulty {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Difficulty{}
	}

	chars := 0
	for _, w := range words {
		chars += utf8.RuneCountInString(w)
	}

	sentences := 0
	for _, s := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	sentences = max(sentences, 1)

	avgWordLen := float64(chars) / float64(len(words))
	avgSentenceLen := float64(len(words)) / float64(sentences)
	score := 206.835 - 1.015*avgSentenceLen - 84.6*(avgWordLen/4.7)

	switch {
	case score >= 60:
		return Difficulty{Score: score, Level: LevelEasy, SuggestedWPM: 400}
	case score >= 30:
		return Difficulty{Score: score, Level: LevelMedium, SuggestedWPM: 300}
	default:
		return Difficulty{Score: score, Level: LevelHard, SuggestedWPM: 200}
	}
}

// EstimateReadingTime is the flat words/wpm estimate rounded up to whole
// seconds. It ignores pacing pauses; playback.Engine reports the paced figure.
func EstimateReadingTime(text string, wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	secs := math.Ceil(float64(WordCount(text)) / float64(wpm) * 60)
	return time.Duration(secs) * time.Second
}
