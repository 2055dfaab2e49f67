package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"rsvp-reader/internal/observability/logging"
	"rsvp-reader/internal/reader/loader"
	"rsvp-reader/internal/reader/preferences"
)

type commandContext struct {
	prefsPath string
	apiURL    string
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewTextLogger(cmd.ErrOrStderr())
}

func (c *commandContext) preferencesPath() (string, error) {
	if c.prefsPath != "" {
		return c.prefsPath, nil
	}
	return preferences.DefaultPath()
}

func (c *commandContext) loadPreferences() (string, preferences.Preferences, error) {
	path, err := c.preferencesPath()
	if err != nil {
		return "", preferences.Default(), err
	}
	prefs, err := preferences.Load(path)
	return path, prefs, err
}

func (c *commandContext) newLoader(cmd *cobra.Command) *loader.Loader {
	cfg := loader.LoadClientConfigFromEnv()
	if c.apiURL != "" {
		cfg.BaseURL = c.apiURL
	}
	return loader.New(
		loader.NewAPIClient(cfg),
		loader.WithStdin(cmd.InOrStdin()),
		loader.WithLogger(c.logger(cmd)),
	)
}

// loadDocument reads the single optional source argument. With no argument
// it reads standard input, unless that is an interactive terminal.
func (c *commandContext) loadDocument(cmd *cobra.Command, args []string) (*loader.Document, error) {
	source := "-"
	if len(args) > 0 {
		source = args[0]
	} else if isTerminal(cmd.InOrStdin()) {
		return nil, fmt.Errorf("no source given: pass a file, EPUB, URL, or '-' for standard input")
	}
	return c.newLoader(cmd).Load(cmd.Context(), source)
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// shouldColorize reports whether ANSI styling can be written to w.
func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}
