package extractor_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"rsvp-reader/internal/domain/entity"
	"rsvp-reader/internal/infra/extractor"
	"rsvp-reader/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articlePage(paragraphs int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Understanding Speed Reading</title>
<meta name="author" content="Ada Reader"></head><body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article><h1>Understanding Speed Reading</h1>`)
	for i := 0; i < paragraphs; i++ {
		b.WriteString(`<p>Rapid serial visual presentation shows one word at a time in a fixed place,
so the eyes never need to travel across the line. Readers who practise with it report
that comprehension holds up well at moderate speeds, although very high rates trade
understanding for raw throughput.</p>`)
	}
	b.WriteString(`</article><footer>Copyright 2024</footer><script>var tracking = "do not read";</script></body></html>`)
	return b.String()
}

func TestExtract_Readability(t *testing.T) {
	e := extractor.New(extractor.DefaultConfig())
	source, _ := url.Parse("https://blog.example.com/posts/speed-reading")

	result, err := e.Extract([]byte(articlePage(6)), source)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Contains(t, result.Title, "Speed Reading")
	assert.Contains(t, result.Content, "Rapid serial visual presentation")
	assert.NotContains(t, result.Content, "do not read")
	assert.NotEmpty(t, result.Excerpt)
	assert.Equal(t, entity.CountWords(result.Content), result.Length)
	assert.False(t, result.FromCache)
}

func TestExtract_ReadabilityRespectsBudget(t *testing.T) {
	cfg := extractor.DefaultConfig()
	cfg.PrimaryMaxRunes = 300
	cfg.FallbackMaxRunes = 300
	e := extractor.New(cfg)

	result, err := e.Extract([]byte(articlePage(20)), nil)
	require.NoError(t, err)

	assert.LessOrEqual(t, utf8.RuneCountInString(result.Content), 300)
}

func TestExtract_Unextractable(t *testing.T) {
	pages := map[string]string{
		"empty body":  `<html><head><title>Sign in</title></head><body></body></html>`,
		"only script": `<html><body><script>window.location = "/login";</script></body></html>`,
		"not html":    "",
	}

	e := extractor.New(extractor.DefaultConfig())
	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			result, err := e.Extract([]byte(page), nil)

			assert.Nil(t, result)
			assert.True(t, errors.Is(err, fetch.ErrUnextractable), "got %v", err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, extractor.DefaultConfig().Validate())

	cfg := extractor.DefaultConfig()
	cfg.FallbackMaxRunes = cfg.PrimaryMaxRunes + 1
	assert.Error(t, cfg.Validate())

	cfg = extractor.DefaultConfig()
	cfg.ExcerptRunes = 0
	assert.Error(t, cfg.Validate())

	cfg = extractor.DefaultConfig()
	cfg.MinContentRunes = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("EXTRACT_FALLBACK_MAX_RUNES", "20000")
	t.Setenv("EXTRACT_MIN_CONTENT_RUNES", "50")

	cfg, err := extractor.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 1_000_000, cfg.PrimaryMaxRunes)
	assert.Equal(t, 20000, cfg.FallbackMaxRunes)
	assert.Equal(t, 50, cfg.MinContentRunes)
	assert.Equal(t, 200, cfg.ExcerptRunes)
}
