// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate finds a marker token inside a block of text and returns
// the text from that marker onward.
package locate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("marker not found")

// NotFoundError reports that the marker does not occur in the text.
type NotFoundError struct {
	Marker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("marker %q not found", e.Marker)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Match describes the first occurrence of a marker in a text.
type Match struct {
	// Marker is the token that was searched for.
	Marker string `json:"marker"`

	// Offset is the zero-based character (rune) index of the marker.
	Offset int `json:"offset"`

	// ByteOffset is the index of the marker in UTF-8 bytes.
	ByteOffset int `json:"byte_offset"`

	// Suffix is the text from the marker to the end, marker included.
	Suffix string `json:"suffix"`
}

// Locate returns the first occurrence of marker in text. Matching is exact
// and case-sensitive; later occurrences stay verbatim inside the suffix.
// It returns a *NotFoundError when marker does not occur.
func Locate(text, marker string) (Match, error) {
	i := strings.Index(text, marker)
	if i < 0 {
		return Match{}, &NotFoundError{Marker: marker}
	}
	return Match{
		Marker:     marker,
		Offset:     utf8.RuneCountInString(text[:i]),
		ByteOffset: i,
		Suffix:     text[i:],
	}, nil
}

// Prefix returns the part of text before the match. text must be the string
// the match was produced from.
func (m Match) Prefix(text string) string {
	return text[:m.ByteOffset]
}

// Answer returns the suffix with the marker and leading whitespace removed.
func (m Match) Answer() string {
	return strings.TrimLeft(strings.TrimPrefix(m.Suffix, m.Marker), " \t\r\n")
}
