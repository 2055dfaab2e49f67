// Package entity defines the core domain entities shared by the fetch service
// and the reader: the extracted article payload returned to clients.
package entity

import "strings"

// FetchResult is the readable article extracted from a remote page.
// It is the payload stored in the fetch cache and returned by POST /fetch-url.
type FetchResult struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt"`
	Byline    string `json:"byline"`
	Length    int    `json:"length"`
	Success   bool   `json:"success"`
	FromCache bool   `json:"fromCache,omitempty"`
}

// NewFetchResult builds a successful result and derives Length from content.
func NewFetchResult(title, content, excerpt, byline string) *FetchResult {
	return &FetchResult{
		Title:   title,
		Content: content,
		Excerpt: excerpt,
		Byline:  byline,
		Length:  CountWords(content),
		Success: true,
	}
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
