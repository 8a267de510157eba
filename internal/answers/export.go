// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one answer as written to an export file.
type ExportEntry struct {
	Fixture    string `json:"fixture" yaml:"fixture"`
	ID         string `json:"id" yaml:"id"`
	Question   string `json:"question,omitempty" yaml:"question,omitempty"`
	Marker     string `json:"marker" yaml:"marker"`
	Found      bool   `json:"found" yaml:"found"`
	Offset     int    `json:"offset" yaml:"offset"`
	ByteOffset int    `json:"byte_offset" yaml:"byte_offset"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

const exportLimit = 100000

// ExportPath returns the export file path for format ("yaml" or "json").
func (s *Store) ExportPath(format string) string {
	return filepath.Join(s.outputDir, indexDir, "export."+format)
}

// ExportYAML writes stored answers to output/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(s.ExportPath("yaml"), data, 0o644)
}

// ExportJSON writes stored answers to output/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(s.ExportPath("json"), data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			Fixture:    r.Fixture,
			ID:         r.ID,
			Question:   r.Question,
			Marker:     r.Marker,
			Found:      r.Found,
			Offset:     r.Offset,
			ByteOffset: r.ByteOffset,
			Text:       r.Text,
			Error:      r.Error,
		}
	}
	return entries, nil
}
