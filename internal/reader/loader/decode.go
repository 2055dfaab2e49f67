package loader

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrBinary is returned for input that does not look like text.
var ErrBinary = errors.New("input looks like a binary file")

// Decode converts raw file bytes to a UTF-8 string. A byte order mark
// selects UTF-8 or UTF-16; without one, valid UTF-8 is kept as is and
// anything else is read as Windows-1252.
func Decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if !utf8.Valid(out) {
		out, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode windows-1252: %w", err)
		}
	}

	if bytes.IndexByte(out, 0) >= 0 {
		return "", ErrBinary
	}
	return string(out), nil
}
