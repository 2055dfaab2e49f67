// Package loader turns a user-supplied source into text for the reader.
//
// A source is one of: "-" or "" for standard input, an http(s) URL fetched
// through the fetch service, a path ending in .epub, or any other file path.
// Loading never touches playback state; callers swap in the result only
// once Load has succeeded.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/reader/epub"
	"rsvp-reader/internal/reader/textparse"
)

// MaxFileBytes caps plain-text input read from files or stdin.
const MaxFileBytes = 16 << 20

// ErrEmpty is returned when a source yields no readable text.
var ErrEmpty = errors.New("source contains no readable text")

// Kind identifies where a document came from.
type Kind string

const (
	KindStdin Kind = "stdin"
	KindFile  Kind = "file"
	KindEPUB  Kind = "epub"
	KindURL   Kind = "url"
)

// Document is loaded reader input.
type Document struct {
	Kind   Kind
	Source string
	Title  string
	Text   string

	// Book is set for EPUB sources.
	Book *epub.Book
}

// Units parses the document into display units.
func (d *Document) Units() []textparse.DisplayUnit {
	return textparse.ParseUnits(d.Text)
}

// URLFetcher fetches readable article text for a URL.
type URLFetcher interface {
	FetchURL(ctx context.Context, pageURL string) (*entity.FetchResult, error)
}

// Loader resolves sources into documents.
type Loader struct {
	fetcher URLFetcher
	stdin   io.Reader
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithStdin overrides the reader used for "-".
func WithStdin(r io.Reader) Option {
	return func(l *Loader) { l.stdin = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader. fetcher may be nil, in which case URL sources fail.
func New(fetcher URLFetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		stdin:   os.Stdin,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Detect classifies source without reading it.
func Detect(source string) Kind {
	switch {
	case source == "" || source == "-":
		return KindStdin
	case isHTTPURL(source):
		return KindURL
	case epub.IsEPUB(source):
		return KindEPUB
	default:
		return KindFile
	}
}

// Load reads source and returns its text.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	kind := Detect(source)
	l.logger.Debug("loading source", slog.String("kind", string(kind)), slog.String("source", source))

	var (
		doc *Document
		err error
	)
	switch kind {
	case KindStdin:
		doc, err = l.loadReader(l.stdin, "Standard input")
	case KindURL:
		doc, err = l.loadURL(ctx, source)
	case KindEPUB:
		doc, err = l.loadEPUB(source)
	default:
		doc, err = l.loadFile(source)
	}
	if err != nil {
		l.logger.Warn("load failed", slog.String("source", source), slog.Any("error", err))
		return nil, err
	}

	doc.Kind = kind
	doc.Source = source
	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmpty
	}
	l.logger.Debug("source loaded",
		slog.String("kind", string(kind)),
		slog.String("title", doc.Title),
		slog.Int("words", textparse.WordCount(doc.Text)))
	return doc, nil
}

// LoadText wraps text supplied directly, such as a saved session.
func LoadText(text, title string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}
	return &Document{Kind: KindStdin, Title: title, Text: text}, nil
}

func (l *Loader) loadReader(r io.Reader, title string) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("input exceeds %d bytes", MaxFileBytes)
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &Document{Title: title, Text: text}, nil
}

func (l *Loader) loadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := l.loadReader(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (l *Loader) loadEPUB(path string) (*Document, error) {
	book, err := epub.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Title: book.Metadata.Title, Text: book.FullText, Book: book}, nil
}

func (l *Loader) loadURL(ctx context.Context, raw string) (*Document, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetch service configured", ErrUnreachable)
	}
	page, err := l.fetcher.FetchURL(ctx, raw)
	if err != nil {
		return nil, err
	}
	title := page.Title
	if title == "" {
		title = raw
	}
	return &Document{Title: title, Text: page.Content}, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
