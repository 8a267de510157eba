// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Answer is the outcome of searching one sample for the marker.
type Answer struct {
	// ID is the sample ID the answer was extracted from.
	ID string `json:"id" yaml:"id"`

	Question string `json:"question,omitempty" yaml:"question,omitempty"`

	// Marker is the token that was searched for.
	Marker string `json:"marker" yaml:"marker"`

	// Found reports whether the marker occurred in the generation.
	Found bool `json:"found" yaml:"found"`

	// Offset is the zero-based character index of the marker.
	Offset int `json:"offset" yaml:"offset"`

	// ByteOffset is the same position counted in UTF-8 bytes.
	ByteOffset int `json:"byte_offset" yaml:"byte_offset"`

	// Text is the generation from the marker to the end, marker included.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Error holds the failure message when Found is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ExtractionResult holds the answers extracted from one fixture file.
type ExtractionResult struct {
	Fixture string   `json:"fixture" yaml:"fixture"`
	Marker  string   `json:"marker" yaml:"marker"`
	Answers []Answer `json:"answers" yaml:"answers"`
}

// NotFound returns the number of answers whose marker was missing.
func (r ExtractionResult) NotFound() int {
	n := 0
	for _, a := range r.Answers {
		if !a.Found {
			n++
		}
	}
	return n
}
