package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rsvp-reader/internal/reader/loader"
	"rsvp-reader/internal/reader/playback"
	"rsvp-reader/internal/reader/preferences"
	"rsvp-reader/internal/reader/textparse"
)

const wpmStep = 25

const controlsHelp = "controls: <enter>/p play-pause  f/b skip  +/- speed  r restart  q quit"

type readOptions struct {
	wpm      int
	resume   bool
	noSave   bool
	controls bool
	start    int
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var opts readOptions

	cmd := &cobra.Command{
		Use:   "read [source]",
		Short: "Play a text, EPUB, or web page one word at a time",
		Long: `Play a source word by word.

The source is a file path, an .epub book, an http(s) URL fetched through the
fetch service, or '-' for standard input. With --resume the last unfinished
session is continued from where it stopped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, ctx, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.wpm, "wpm", "w", 0, "Words per minute (default from preferences)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue the saved session")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not store the session for --resume")
	cmd.Flags().BoolVar(&opts.controls, "controls", false, "Read line commands from the terminal while playing")
	cmd.Flags().IntVar(&opts.start, "start", 0, "Word index to start from")

	return cmd
}

func runRead(cmd *cobra.Command, ctx *commandContext, args []string, opts readOptions) error {
	logger := ctx.logger(cmd)

	prefsPath, prefs, err := ctx.loadPreferences()
	if err != nil {
		logger.Warn("using default preferences", slog.Any("error", err))
		prefsPath = ""
	}

	var doc *loader.Document
	start := opts.start
	if opts.resume {
		if len(args) > 0 {
			return errors.New("--resume does not take a source")
		}
		doc, err = loader.LoadText(prefs.SavedText, prefs.SavedTitle)
		if err != nil {
			return fmt.Errorf("no saved session to resume: %w", err)
		}
		if !cmd.Flags().Changed("start") {
			start = prefs.LastPosition
		}
	} else {
		doc, err = ctx.loadDocument(cmd, args)
		if err != nil {
			return err
		}
	}

	units := doc.Units()
	if len(units) == 0 {
		return loader.ErrEmpty
	}

	wpm := prefs.WPM
	if opts.wpm != 0 {
		wpm = opts.wpm
	}

	out := cmd.OutOrStdout()
	renderer := newWordRenderer(out, shouldColorize(out))
	done := newDoneSignal()

	engine := playback.New(units, playback.Options{
		WPM:        wpm,
		OnChange:   renderer.Render,
		OnComplete: done.fire,
	})
	defer engine.Close()

	if doc.Title != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s · %d words · ~%s at %d wpm\n",
			doc.Title, len(units), formatDuration(textparse.EstimateReadingTime(doc.Text, engine.State().WPM)), engine.State().WPM)
	}

	quit := make(chan struct{})
	if opts.controls {
		if doc.Kind == loader.KindStdin && !opts.resume {
			return errors.New("--controls needs standard input, so the source cannot be '-'")
		}
		fmt.Fprintln(cmd.ErrOrStderr(), controlsHelp)
		go func() {
			runControls(cmd.InOrStdin(), engine, prefs.SkipWords)
			close(quit)
		}()
	}

	if start > 0 {
		engine.SetCurrentIndex(start)
	}
	engine.Play()

	completed := false
	select {
	case <-done.ch:
		completed = true
	case <-quit:
	case <-cmd.Context().Done():
	}
	engine.Close()
	renderer.Finish()

	final := engine.State()
	if !opts.noSave {
		saveSession(logger, prefsPath, prefs, doc, final.CurrentIndex, completed)
	}

	if !completed {
		fmt.Fprintf(cmd.ErrOrStderr(), "stopped at word %d of %d\n", final.CurrentIndex+1, final.Total)
		if err := cmd.Context().Err(); err != nil {
			return err
		}
	}
	return nil
}

// doneSignal closes ch on the first fire. A restart from the controls can
// complete the engine again before it is closed.
type doneSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newDoneSignal() *doneSignal {
	return &doneSignal{ch: make(chan struct{})}
}

func (d *doneSignal) fire() {
	d.once.Do(func() { close(d.ch) })
}

// runControls applies one command per input line until "q" or EOF.
func runControls(in io.Reader, engine *playback.Engine, skip int) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "p", " ":
			engine.TogglePlay()
		case "f":
			engine.SkipForward(skip)
		case "b":
			engine.SkipBackward(skip)
		case "+", "=":
			engine.SetWPM(engine.State().WPM + wpmStep)
		case "-", "_":
			engine.SetWPM(engine.State().WPM - wpmStep)
		case "r":
			engine.Restart()
		case "q":
			return
		}
	}
}

// saveSession records the text and position so --resume can continue.
// Finished sessions rewind to the start.
func saveSession(logger *slog.Logger, path string, prefs preferences.Preferences, doc *loader.Document, index int, completed bool) {
	if path == "" {
		return
	}
	if len(doc.Text) > textparse.MaxStructuredBytes {
		logger.Debug("session too large to save", slog.Int("bytes", len(doc.Text)))
		return
	}

	prefs.SavedText = doc.Text
	prefs.SavedTitle = doc.Title
	prefs.LastPosition = index
	if completed {
		prefs.LastPosition = 0
	}
	if err := preferences.Save(path, prefs); err != nil {
		logger.Warn("failed to save session", slog.String("path", path), slog.Any("error", err))
	}
}
