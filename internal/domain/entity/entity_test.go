package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFetchResult(t *testing.T) {
	r := NewFetchResult("Title", "  one two\n three\tfour  ", "one two", "Jo")

	assert.True(t, r.Success)
	assert.False(t, r.FromCache)
	assert.Equal(t, 4, r.Length)
	assert.Equal(t, "Jo", r.Byline)
}

func TestCountWords(t *testing.T) {
	assert.Zero(t, CountWords(""))
	assert.Zero(t, CountWords(" \n\t "))
	assert.Equal(t, 3, CountWords("naïve café déjà"))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "url", Message: "Only HTTP and HTTPS URLs are allowed"}

	assert.Equal(t, "invalid url: Only HTTP and HTTPS URLs are allowed", err.Error())
	assert.ErrorIs(t, err, ErrRejected)

	wrapped := fmt.Errorf("fetch: %w", err)
	var got *ValidationError
	assert.True(t, errors.As(wrapped, &got))
	assert.Equal(t, "url", got.Field)
	assert.ErrorIs(t, wrapped, ErrRejected)
}
