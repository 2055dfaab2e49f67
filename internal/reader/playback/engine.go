// Package playback paces a sequence of display units.
//
// Engine is a small state machine (Idle, Playing, Paused, back to Idle on
// completion) driven by a single pending timer. Every operation that changes
// what should happen next stops that timer and bumps a generation counter
// before scheduling again, so a timer that fires late against superseded
// state is ignored.
package playback

import (
	"sync"
	"time"

	"rsvp-reader/internal/reader/textparse"
)

// Timer is a pending call that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules on the runtime timer.
type SystemScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is a snapshot of the engine.
type State struct {
	CurrentIndex    int
	Total           int
	IsPlaying       bool
	WPM             int
	Progress        float64
	TimeRemaining   time.Duration
	CurrentWord     string
	CurrentWordType textparse.SegmentType
	SectionTitle    string
}

// Options configures an Engine. Zero values are usable.
type Options struct {
	// WPM is the starting speed. Default: DefaultWPM
	WPM int

	// OnComplete runs once each time playback reaches the end.
	OnComplete func()

	// OnChange receives the new state after every change, including each
	// advancement. It runs outside the engine lock and may call back in.
	OnChange func(State)

	Scheduler Scheduler
}

// Engine is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	units   []textparse.DisplayUnit
	wpm     int
	index   int
	playing bool
	closed  bool

	timer      Timer
	generation uint64

	sched      Scheduler
	onComplete func()
	onChange   func(State)
}

// New creates an idle engine over units.
func New(units []textparse.DisplayUnit, opts Options) *Engine {
	wpm := DefaultWPM
	if opts.WPM != 0 {
		wpm = ClampWPM(opts.WPM)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}
	return &Engine{
		units:      units,
		wpm:        wpm,
		sched:      sched,
		onComplete: opts.OnComplete,
		onChange:   opts.OnChange,
	}
}

// TogglePlay starts or pauses playback. Starting from the end rewinds first.
// It does nothing when there are no units.
func (e *Engine) TogglePlay() {
	e.update(func() bool {
		if len(e.units) == 0 {
			return false
		}
		if e.index >= len(e.units) {
			e.index = 0
		}
		e.playing = !e.playing
		return true
	})
}

// Play starts playback if it is not already running.
func (e *Engine) Play() {
	e.update(func() bool {
		if e.playing || len(e.units) == 0 {
			return false
		}
		if e.index >= len(e.units) {
			e.index = 0
		}
		e.playing = true
		return true
	})
}

// Pause stops playback at the current word.
func (e *Engine) Pause() {
	e.update(func() bool {
		if !e.playing {
			return false
		}
		e.playing = false
		return true
	})
}

// Restart stops playback and rewinds to the first word.
func (e *Engine) Restart() {
	e.update(func() bool {
		e.playing = false
		e.index = 0
		return true
	})
}

// SkipForward moves n words ahead, stopping at the last word.
func (e *Engine) SkipForward(n int) {
	e.update(func() bool { return e.seekLocked(e.index + n) })
}

// SkipBackward moves n words back, stopping at the first word.
func (e *Engine) SkipBackward(n int) {
	e.update(func() bool { return e.seekLocked(e.index - n) })
}

// SetCurrentIndex jumps to word i, clamped to the sequence.
func (e *Engine) SetCurrentIndex(i int) {
	e.update(func() bool { return e.seekLocked(i) })
}

// SetWPM changes speed. A running word restarts its full delay at the new rate.
func (e *Engine) SetWPM(wpm int) {
	e.update(func() bool {
		e.wpm = ClampWPM(wpm)
		return true
	})
}

// SetUnits replaces the sequence and rewinds. Playback continues over the new
// units if it was running and there is anything to play.
func (e *Engine) SetUnits(units []textparse.DisplayUnit) {
	e.update(func() bool {
		e.units = units
		e.index = 0
		if len(units) == 0 {
			e.playing = false
		}
		return true
	})
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Units returns the current sequence. Callers must not modify it.
func (e *Engine) Units() []textparse.DisplayUnit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.units
}

// Close cancels the pending timer. Later calls are no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelLocked()
}

// seekLocked clamps i into [0, len-1]. Empty sequences stay at 0.
func (e *Engine) seekLocked(i int) bool {
	if len(e.units) == 0 {
		return false
	}
	e.index = min(max(i, 0), len(e.units)-1)
	return true
}

// update applies fn under the lock and, if it reports a change, replaces the
// pending timer and notifies OnChange.
func (e *Engine) update(fn func() bool) {
	e.mu.Lock()
	if e.closed || !fn() {
		e.mu.Unlock()
		return
	}
	e.rescheduleLocked()
	state := e.stateLocked()
	onChange := e.onChange
	e.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}

func (e *Engine) cancelLocked() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) rescheduleLocked() {
	e.cancelLocked()
	if !e.playing || e.index >= len(e.units) {
		return
	}
	gen := e.generation
	delay := UnitDelay(e.units[e.index], e.wpm)
	e.timer = e.sched.AfterFunc(delay, func() { e.advance(gen) })
}

// advance is the timer callback. Stale generations are dropped.
func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation || !e.playing {
		e.mu.Unlock()
		return
	}

	e.timer = nil
	e.index++

	completed := e.index >= len(e.units)
	if completed {
		e.cancelLocked()
		e.playing = false
		e.index = 0
	} else {
		e.rescheduleLocked()
	}

	state := e.stateLocked()
	onComplete, onChange := e.onComplete, e.onChange
	e.mu.Unlock()

	if completed && onComplete != nil {
		onComplete()
	}
	if onChange != nil {
		onChange(state)
	}
}

func (e *Engine) stateLocked() State {
	s := State{
		CurrentIndex:    e.index,
		Total:           len(e.units),
		IsPlaying:       e.playing,
		WPM:             e.wpm,
		CurrentWordType: textparse.Normal,
	}
	if len(e.units) == 0 {
		return s
	}

	s.Progress = float64(e.index) / float64(len(e.units))
	for _, u := range e.units[min(e.index, len(e.units)):] {
		s.TimeRemaining += UnitDelay(u, e.wpm)
	}
	if e.index < len(e.units) {
		cur := e.units[e.index]
		s.CurrentWord = cur.Text
		s.CurrentWordType = cur.Type
		s.SectionTitle = cur.SectionTitle
	}
	return s
}
