package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"rsvp-reader/internal/reader/playback"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiFaint     = "\033[2m"
	ansiFocal     = "\033[1;31m"
	ansiClearLine = "\r\033[2K"

	// focalColumn is where the focal letter of every word lines up.
	focalColumn = 14
)

// wordRenderer draws engine state. With color it redraws a single status
// line in place; without, it prints one word per line so output can be
// piped.
type wordRenderer struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	last     int
	section  string
	finished bool
}

func newWordRenderer(w io.Writer, color bool) *wordRenderer {
	return &wordRenderer{w: w, color: color, last: -1}
}

// Render is the engine's OnChange hook.
func (r *wordRenderer) Render(s playback.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return
	}
	if r.color {
		r.renderLine(s)
		return
	}
	if !s.IsPlaying || s.CurrentWord == "" || s.CurrentIndex == r.last {
		return
	}
	r.last = s.CurrentIndex
	if s.SectionTitle != "" && s.SectionTitle != r.section {
		r.section = s.SectionTitle
		fmt.Fprintf(r.w, "== %s ==\n", s.SectionTitle)
	}
	fmt.Fprintln(r.w, s.CurrentWord)
}

func (r *wordRenderer) renderLine(s playback.State) {
	if s.CurrentWord == "" {
		return
	}
	parts := playback.SplitWord(s.CurrentWord)
	style := playback.VisualStyle(s.CurrentWordType)

	tone := ""
	switch {
	case style.Brightness > 1:
		tone = ansiBold
	case style.Brightness < 1:
		tone = ansiFaint
	}

	pad := max(focalColumn-utf8.RuneCountInString(parts.Pre), 0)

	var b strings.Builder
	b.WriteString(ansiClearLine)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(tone + parts.Pre + ansiReset)
	b.WriteString(ansiFocal + parts.Focal + ansiReset)
	b.WriteString(tone + parts.Post + ansiReset)
	b.WriteString(strings.Repeat(" ", max(focalColumn-utf8.RuneCountInString(parts.Post), 1)))
	b.WriteString(ansiFaint + statusText(s) + ansiReset)
	fmt.Fprint(r.w, b.String())
}

// Finish ends the in-place line.
func (r *wordRenderer) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true
	if r.color {
		fmt.Fprintln(r.w)
	}
}

func statusText(s playback.State) string {
	state := "playing"
	if !s.IsPlaying {
		state = "paused"
	}
	status := fmt.Sprintf("%s %d/%d %3.0f%% %dwpm %s left",
		state, s.CurrentIndex+1, s.Total, s.Progress*100, s.WPM, formatDuration(s.TimeRemaining))
	if s.SectionTitle != "" {
		status += " · " + ellipsize(s.SectionTitle, 30)
	}
	return status
}

// formatDuration renders whole seconds as m:ss or h:mm:ss.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	h, m, sec := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
