// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultMarker is the label that introduces the generated answer in a
// retrieval-augmented QA prompt.
const DefaultMarker = "Helpful Answer:"

// Sample is one question together with the generated text that is searched
// for the marker. Generation usually holds the full prompt (instructions,
// retrieved context, the question again) followed by the model's answer.
type Sample struct {
	// ID identifies the sample within its fixture file.
	ID string `json:"id" yaml:"id"`

	// Question is the question the generation answers. Informational only.
	Question string `json:"question,omitempty" yaml:"question,omitempty"`

	// Generation is the text block searched for the marker.
	Generation string `json:"generation" yaml:"generation"`
}

// FixtureFile is the on-disk representation of a set of samples.
type FixtureFile struct {
	// Name is the file stem the fixture was loaded from. Not serialized.
	Name string `json:"-" yaml:"-"`

	// Marker overrides the configured marker for every sample in the file.
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`

	Samples []Sample `json:"samples" yaml:"samples"`
}
