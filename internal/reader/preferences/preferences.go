// Package preferences persists reader settings as a small YAML file.
package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"rsvp-reader/internal/reader/playback"
	"rsvp-reader/pkg/config"
)

const (
	appDir   = "rsvp-reader"
	fileName = "preferences.yaml"

	DefaultSkipWords = 25
	MaxSkipWords     = 1000
)

// ErrUnknownKey is returned by Set for keys that are not preferences.
var ErrUnknownKey = errors.New("unknown preference")

// Preferences are the persisted reader settings.
type Preferences struct {
	WPM          int    `yaml:"wpm"`
	DyslexicFont bool   `yaml:"dyslexic_font"`
	SkipWords    int    `yaml:"skip_words"`
	SavedText    string `yaml:"saved_text,omitempty"`
	SavedTitle   string `yaml:"saved_title,omitempty"`
	LastPosition int    `yaml:"last_position,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Preferences {
	return Preferences{
		WPM:       playback.DefaultWPM,
		SkipWords: DefaultSkipWords,
	}
}

// Validate checks value ranges.
func (p Preferences) Validate() error {
	if p.WPM < playback.MinWPM || p.WPM > playback.MaxWPM {
		return fmt.Errorf("wpm must be between %d and %d, got %d", playback.MinWPM, playback.MaxWPM, p.WPM)
	}
	if p.SkipWords < 1 || p.SkipWords > MaxSkipWords {
		return fmt.Errorf("skip_words must be between 1 and %d, got %d", MaxSkipWords, p.SkipWords)
	}
	if p.LastPosition < 0 {
		return fmt.Errorf("last_position must not be negative, got %d", p.LastPosition)
	}
	return nil
}

// DefaultPath returns $RSVP_CONFIG_DIR/preferences.yaml, falling back to
// the user config directory.
func DefaultPath() (string, error) {
	if dir := config.GetEnvString("RSVP_CONFIG_DIR", ""); dir != "" {
		return filepath.Join(dir, fileName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads preferences from path. A missing file yields defaults; keys
// absent from the file keep their default values.
func Load(path string) (Preferences, error) {
	prefs := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the local user
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Default(), fmt.Errorf("failed to parse preferences: %w", err)
	}
	if err := prefs.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid preferences in %s: %w", path, err)
	}
	return prefs, nil
}

// Save writes prefs to path, creating parent directories. The file is
// replaced atomically.
func Save(path string, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

var setters = map[string]func(*Preferences, string) error{
	"wpm": func(p *Preferences, v string) error {
		n, err := strconv.Atoi(v)
		p.WPM = n
		return err
	},
	"dyslexic_font": func(p *Preferences, v string) error {
		b, err := strconv.ParseBool(v)
		p.DyslexicFont = b
		return err
	},
	"skip_words": func(p *Preferences, v string) error {
		n, err := strconv.Atoi(v)
		p.SkipWords = n
		return err
	},
	"saved_text": func(p *Preferences, v string) error {
		p.SavedText = v
		p.LastPosition = 0
		return nil
	},
	"saved_title": func(p *Preferences, v string) error {
		p.SavedTitle = v
		return nil
	},
	"last_position": func(p *Preferences, v string) error {
		n, err := strconv.Atoi(v)
		p.LastPosition = n
		return err
	},
}

// Keys lists the settable preference names.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value into the named field. On error p is unchanged.
func (p *Preferences) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	next := *p
	if err := set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

// Fields returns key/value pairs in Keys order, for display.
func (p Preferences) Fields() [][2]string {
	values := map[string]string{
		"wpm":           strconv.Itoa(p.WPM),
		"dyslexic_font": strconv.FormatBool(p.DyslexicFont),
		"skip_words":    strconv.Itoa(p.SkipWords),
		"saved_text":    summarize(p.SavedText),
		"saved_title":   p.SavedTitle,
		"last_position": strconv.Itoa(p.LastPosition),
	}
	out := make([][2]string, 0, len(values))
	for _, k := range Keys() {
		out = append(out, [2]string{k, values[k]})
	}
	return out
}

func summarize(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	const preview = 8
	if len(words) <= preview {
		return strings.Join(words, " ")
	}
	return fmt.Sprintf("%s… (%d words)", strings.Join(words[:preview], " "), len(words))
}
