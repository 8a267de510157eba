// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract runs marker extraction over fixture files and writes the
// answers to YAML result files.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-extract/internal/fixture"
	"github.com/pdiddy/answer-extract/internal/locate"
	"github.com/pdiddy/answer-extract/pkg/types"
)

const extractedDir = "extracted"

// ResultSuffix is appended to the fixture name to form its result file name.
const ResultSuffix = "-answers.yaml"

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int

	// NotFound counts samples, across extracted files, whose marker was missing.
	NotFound int
}

// Total returns the number of fixture files processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed or any marker was missing.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0 || s.NotFound > 0
}

// ResultPath returns the result file path for a fixture stem under outputDir.
func ResultPath(outputDir, stem string) string {
	return filepath.Join(outputDir, extractedDir, stem+ResultSuffix)
}

// ExtractAll processes all fixture files in cfg.FixturesDir and writes one
// result file per fixture to cfg.OutputDir/extracted/. A fixture is skipped
// when its result file is newer and was produced with the same marker;
// missing markers recorded in skipped results still count in NotFound.
func ExtractAll(ctx context.Context, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.OutputDir, extractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	paths, err := fixture.List(cfg.FixturesDir)
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		stem := fixture.Stem(path)
		outPath := ResultPath(cfg.OutputDir, stem)

		ff, err := fixture.Load(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		marker := effectiveMarker(ff, cfg.Marker)

		cached, err := cachedResult(path, outPath, marker)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		if cached != nil {
			summary.NotFound += cached.NotFound()
			fmt.Fprintf(w, "skipped %s\n", stem)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "extracting %s\n", stem)

		result, err := ExtractFixture(ctx, ff, cfg.Marker)
		if err != nil {
			return summary, err
		}

		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", stem, err)
			summary.Failed++
			continue
		}

		missing := result.NotFound()
		summary.NotFound += missing
		fmt.Fprintf(w, "extracted %s (%d answers, %d not found)\n", stem, len(result.Answers)-missing, missing)
		summary.Extracted++
	}

	return summary, nil
}

// ExtractFixture locates the marker in every sample of ff. The fixture's own
// marker takes precedence over marker. A missing marker is recorded on the
// answer rather than returned; only context cancellation returns an error.
func ExtractFixture(ctx context.Context, ff *types.FixtureFile, marker string) (*types.ExtractionResult, error) {
	marker = effectiveMarker(ff, marker)

	result := &types.ExtractionResult{
		Fixture: ff.Name,
		Marker:  marker,
		Answers: make([]types.Answer, 0, len(ff.Samples)),
	}

	for _, s := range ff.Samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Answers = append(result.Answers, ExtractSample(s, marker))
	}
	return result, nil
}

// ExtractSample locates marker in a single sample.
func ExtractSample(s types.Sample, marker string) types.Answer {
	a := types.Answer{
		ID:       s.ID,
		Question: s.Question,
		Marker:   marker,
	}

	m, err := locate.Locate(s.Generation, marker)
	if err != nil {
		a.Error = err.Error()
		return a
	}

	a.Found = true
	a.Offset = m.Offset
	a.ByteOffset = m.ByteOffset
	a.Text = m.Suffix
	return a
}

// effectiveMarker returns the fixture's own marker if it sets one, else marker.
func effectiveMarker(ff *types.FixtureFile, marker string) string {
	if ff.Marker != "" {
		return ff.Marker
	}
	return marker
}

// cachedResult returns the existing result for a fixture when it is still
// valid: newer than the fixture and extracted with marker. It returns nil
// when the fixture must be extracted again, including when the result file
// is missing or unreadable.
func cachedResult(fixturePath, outPath, marker string) (*types.ExtractionResult, error) {
	changed, err := hasChanged(fixturePath, outPath)
	if err != nil {
		return nil, err
	}
	if changed {
		return nil, nil
	}
	result, err := ReadResult(outPath)
	if err != nil || result.Marker != marker {
		return nil, nil
	}
	return result, nil
}

// hasChanged reports whether the fixture file is newer than the output file.
// Returns true if the output does not exist or the fixture is more recent.
func hasChanged(fixturePath, outPath string) (bool, error) {
	inInfo, err := os.Stat(fixturePath)
	if err != nil {
		return false, fmt.Errorf("stat fixture %s: %w", fixturePath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals the ExtractionResult to a YAML file.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads a result file written by ExtractAll.
func ReadResult(path string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &result, nil
}
