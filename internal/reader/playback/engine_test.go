package playback

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rsvp-reader/internal/reader/textparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── fake scheduler ───────── */

type fakeTimer struct {
	s       *fakeScheduler
	due     time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler fires timers only when Advance moves its clock past them.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, due: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.due > target {
				continue
			}
			if next == nil || t.due < next.due {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.due
		next.fired = true
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func words(texts ...string) []textparse.DisplayUnit {
	return textparse.PlainUnits(joinWords(texts))
}

func joinWords(texts []string) string {
	out := ""
	for _, t := range texts {
		out += t + " "
	}
	return out
}

func newTestEngine(units []textparse.DisplayUnit, wpm int) (*Engine, *fakeScheduler, *atomic.Int32) {
	sched := &fakeScheduler{}
	completions := &atomic.Int32{}
	e := New(units, Options{
		WPM:        wpm,
		Scheduler:  sched,
		OnComplete: func() { completions.Add(1) },
	})
	return e, sched, completions
}

/* ───────── tests ───────── */

func TestEngine_PlaysToCompletionOnce(t *testing.T) {
	var seen []int
	sched := &fakeScheduler{}
	completions := 0
	e := New(words("alpha", "beta", "gamma"), Options{
		WPM:        300,
		Scheduler:  sched,
		OnComplete: func() { completions++ },
		OnChange:   func(s State) { seen = append(seen, s.CurrentIndex) },
	})

	e.TogglePlay()
	assert.True(t, e.State().IsPlaying)

	sched.Advance(599 * time.Millisecond)
	assert.Equal(t, 2, e.State().CurrentIndex)
	assert.Zero(t, completions)

	sched.Advance(time.Millisecond)
	st := e.State()
	assert.Equal(t, 1, completions)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
	assert.Zero(t, sched.Pending())

	sched.Advance(10 * time.Second)
	assert.Equal(t, 1, completions)
	assert.Equal(t, []int{0, 1, 2, 0}, seen)
}

func TestEngine_RestartCancelsPendingAdvance(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c", "d"), 300)

	e.TogglePlay()
	sched.Advance(200 * time.Millisecond)
	require.Equal(t, 1, e.State().CurrentIndex)

	e.Restart()
	st := e.State()
	assert.Equal(t, 0, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
	assert.Zero(t, sched.Pending())

	sched.Advance(5 * time.Second)
	assert.Equal(t, 0, e.State().CurrentIndex)
}

func TestEngine_StaleTimerIsIgnored(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c", "d"), 300)

	e.TogglePlay()
	stale := sched.timers[0]
	e.SetCurrentIndex(2)

	// A timer that raced its cancellation still runs its callback.
	stale.f()
	assert.Equal(t, 2, e.State().CurrentIndex)
	assert.Equal(t, 1, sched.Pending())
}

func TestEngine_PauseAndResume(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c"), 300)

	e.Play()
	sched.Advance(250 * time.Millisecond)
	e.Pause()
	assert.Zero(t, sched.Pending())
	sched.Advance(time.Second)
	assert.Equal(t, 1, e.State().CurrentIndex)

	e.Play()
	e.Play()
	assert.Equal(t, 1, sched.Pending())
	sched.Advance(200 * time.Millisecond)
	assert.Equal(t, 2, e.State().CurrentIndex)
}

func TestEngine_SkipClamps(t *testing.T) {
	e, _, _ := newTestEngine(words("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), 300)

	assert.NotPanics(t, func() { e.SkipForward(1000) })
	assert.Equal(t, 9, e.State().CurrentIndex)

	e.SkipBackward(3)
	assert.Equal(t, 6, e.State().CurrentIndex)

	e.SkipBackward(1000)
	assert.Equal(t, 0, e.State().CurrentIndex)

	e.SetCurrentIndex(-5)
	assert.Equal(t, 0, e.State().CurrentIndex)
	e.SetCurrentIndex(50)
	assert.Equal(t, 9, e.State().CurrentIndex)
	assert.False(t, e.State().IsPlaying)
}

func TestEngine_SkipWhilePlayingReschedules(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c", "d", "e"), 300)

	e.TogglePlay()
	sched.Advance(150 * time.Millisecond)
	e.SkipForward(2)

	assert.Equal(t, 1, sched.Pending())
	sched.Advance(199 * time.Millisecond)
	assert.Equal(t, 2, e.State().CurrentIndex)
	sched.Advance(time.Millisecond)
	assert.Equal(t, 3, e.State().CurrentIndex)
}

func TestEngine_SetWPMReschedulesFromNow(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c"), 300)

	e.TogglePlay()
	sched.Advance(100 * time.Millisecond)
	e.SetWPM(600)

	assert.Equal(t, 1, sched.Pending())
	sched.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, e.State().CurrentIndex)
	sched.Advance(time.Millisecond)
	assert.Equal(t, 1, e.State().CurrentIndex)
	assert.Equal(t, 600, e.State().WPM)

	e.SetWPM(1)
	assert.Equal(t, MinWPM, e.State().WPM)
}

func TestEngine_PunctuationPacing(t *testing.T) {
	e, sched, _ := newTestEngine(words("Hello,", "world.", "again"), 300)

	e.TogglePlay()
	sched.Advance(259 * time.Millisecond)
	assert.Equal(t, 0, e.State().CurrentIndex)
	sched.Advance(time.Millisecond)
	assert.Equal(t, 1, e.State().CurrentIndex)

	sched.Advance(399 * time.Millisecond)
	assert.Equal(t, 1, e.State().CurrentIndex)
	sched.Advance(time.Millisecond)
	assert.Equal(t, 2, e.State().CurrentIndex)
}

func TestEngine_StateDerivedValues(t *testing.T) {
	units := []textparse.DisplayUnit{
		{Text: "Title", Type: textparse.H1, SectionTitle: "Title"},
		{Text: "a", Type: textparse.Normal, SectionTitle: "Title"},
		{Text: "b.", Type: textparse.Normal, SectionTitle: "Title"},
	}
	e, _, _ := newTestEngine(units, 300)

	st := e.State()
	assert.Equal(t, 1100*time.Millisecond, st.TimeRemaining)
	assert.Zero(t, st.Progress)
	assert.Equal(t, "Title", st.CurrentWord)
	assert.Equal(t, textparse.H1, st.CurrentWordType)
	assert.Equal(t, 3, st.Total)

	e.SetCurrentIndex(1)
	st = e.State()
	assert.InDelta(t, 1.0/3.0, st.Progress, 1e-9)
	assert.Equal(t, 600*time.Millisecond, st.TimeRemaining)
	assert.Equal(t, "a", st.CurrentWord)
	assert.Equal(t, "Title", st.SectionTitle)
}

func TestEngine_EmptySequence(t *testing.T) {
	e, sched, completions := newTestEngine(nil, 300)

	assert.NotPanics(t, func() {
		e.TogglePlay()
		e.SkipForward(3)
		e.SkipBackward(3)
		e.SetCurrentIndex(4)
	})

	st := e.State()
	assert.False(t, st.IsPlaying)
	assert.Zero(t, st.CurrentIndex)
	assert.Zero(t, st.Progress)
	assert.Zero(t, st.TimeRemaining)
	assert.Empty(t, st.CurrentWord)
	assert.Zero(t, sched.Pending())
	assert.Zero(t, completions.Load())
}

func TestEngine_SetUnits(t *testing.T) {
	e, sched, _ := newTestEngine(words("a", "b", "c"), 300)

	e.TogglePlay()
	sched.Advance(200 * time.Millisecond)
	e.SetUnits(words("x", "y"))

	st := e.State()
	assert.Equal(t, 0, st.CurrentIndex)
	assert.True(t, st.IsPlaying)
	assert.Equal(t, "x", st.CurrentWord)
	assert.Equal(t, 1, sched.Pending())

	e.SetUnits(nil)
	assert.False(t, e.State().IsPlaying)
	assert.Zero(t, sched.Pending())
}

func TestEngine_CloseStopsEverything(t *testing.T) {
	e, sched, completions := newTestEngine(words("a", "b"), 300)

	e.TogglePlay()
	e.Close()
	assert.Zero(t, sched.Pending())

	e.TogglePlay()
	sched.Advance(time.Minute)
	assert.Zero(t, completions.Load())
	assert.Zero(t, e.State().CurrentIndex)
}

func TestEngine_SystemScheduler(t *testing.T) {
	done := make(chan struct{}, 4)
	e := New(words("one", "two", "three"), Options{
		WPM:        300,
		OnComplete: func() { done <- struct{}{} },
	})
	defer e.Close()

	start := time.Now()
	e.TogglePlay()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("playback did not complete")
	}
	assert.GreaterOrEqual(t, time.Since(start), 600*time.Millisecond)

	time.Sleep(250 * time.Millisecond)
	assert.Len(t, done, 0, "completion must fire exactly once")
	assert.False(t, e.State().IsPlaying)
	assert.Zero(t, e.State().CurrentIndex)
}
