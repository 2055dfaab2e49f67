// Package extractor turns raw HTML pages into readable articles.
//
// Two paths are tried in order:
//   - readability: Mozilla Readability via go-shiori/go-readability, which
//     locates the main article region and returns title, text, excerpt and byline
//   - fallback: goquery strips scripts and styles and keeps all remaining text
//
// The fallback has a much smaller content budget than the readability path
// and fails with fetch.ErrUnextractable when it finds too little text.
package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/observability/metrics"
	"rsvp-reader/internal/usecase/fetch"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Extractor implements fetch.Extractor.
//
// Thread safety: Extractor is stateless and safe for concurrent use.
type Extractor struct {
	config Config
}

// New creates an Extractor with the given budgets.
func New(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract returns the readable article contained in page.
// source is used to resolve relative links and as the title of last resort;
// it may be nil.
func (e *Extractor) Extract(page []byte, source *url.URL) (*entity.FetchResult, error) {
	result, err := e.extractReadability(page, source)
	if err == nil {
		metrics.RecordExtraction("readability", result.Length)
		return result, nil
	}

	slog.Debug("readability extraction failed, using fallback",
		slog.String("reason", err.Error()))

	result, err = e.extractFallback(page, source)
	if err != nil {
		metrics.RecordExtraction("failed", 0)
		return nil, err
	}

	metrics.RecordExtraction("fallback", result.Length)
	return result, nil
}

func (e *Extractor) extractReadability(page []byte, source *url.URL) (*entity.FetchResult, error) {
	pageURL := source
	if pageURL == nil {
		pageURL = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	content := normalizeText(article.TextContent)
	if content == "" {
		return nil, fmt.Errorf("readability: no readable content found")
	}
	content = truncateRunes(content, e.config.PrimaryMaxRunes)

	excerpt := collapseWhitespace(article.Excerpt)
	if excerpt == "" {
		excerpt = truncateRunes(collapseWhitespace(content), e.config.ExcerptRunes)
	}

	return entity.NewFetchResult(
		titleOrFallback(article.Title, source),
		content,
		excerpt,
		collapseWhitespace(article.Byline),
	), nil
}

func (e *Extractor) extractFallback(page []byte, source *url.URL) (*entity.FetchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", fetch.ErrUnextractable, err)
	}

	title := collapseWhitespace(doc.Find("title").First().Text())
	byline, _ := doc.Find(`meta[name="author"]`).First().Attr("content")
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	doc.Find("script, style, noscript, template, head").Remove()

	content := collapseWhitespace(nodeText(doc.Selection))
	if utf8.RuneCountInString(content) < e.config.MinContentRunes {
		return nil, fmt.Errorf("%w: %d characters of text after stripping markup",
			fetch.ErrUnextractable, utf8.RuneCountInString(content))
	}
	content = truncateRunes(content, e.config.FallbackMaxRunes)

	excerpt := collapseWhitespace(description)
	if excerpt == "" {
		excerpt = truncateRunes(content, e.config.ExcerptRunes)
	}

	return entity.NewFetchResult(
		titleOrFallback(title, source),
		content,
		excerpt,
		collapseWhitespace(byline),
	), nil
}

// nodeText concatenates every text node under sel, separated by spaces,
// so adjacent block elements do not run their words together.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

func titleOrFallback(title string, source *url.URL) string {
	if t := collapseWhitespace(title); t != "" {
		return t
	}
	if source != nil && source.Hostname() != "" {
		return source.Hostname()
	}
	return "Untitled"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeText collapses whitespace inside each line and keeps at most one
// blank line between paragraphs.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = collapseWhitespace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// truncateRunes cuts s to at most max runes without splitting a rune.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	i := 0
	for pos := range s {
		if i == max {
			return strings.TrimSpace(s[:pos])
		}
		i++
	}
	return s
}
