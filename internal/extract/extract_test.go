package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-extract/pkg/types"
)

const marker = "Helpful Answer:"

func testConfig(fixturesDir, outputDir string) types.ExtractionConfig {
	return types.ExtractionConfig{
		LocateConfig: types.LocateConfig{Marker: marker},
		FixturesDir:  fixturesDir,
		OutputDir:    outputDir,
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- ExtractSample ---

func TestExtractSample(t *testing.T) {
	tests := []struct {
		name       string
		generation string
		wantFound  bool
		wantOffset int
		wantText   string
	}{
		{
			name:       "found",
			generation: "Question: q?\nHelpful Answer: a",
			wantFound:  true,
			wantOffset: 13,
			wantText:   "Helpful Answer: a",
		},
		{
			name:       "missing",
			generation: "Question: q?\nNo label.",
			wantFound:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ExtractSample(types.Sample{ID: "s1", Question: "q?", Generation: tt.generation}, marker)
			if a.ID != "s1" || a.Question != "q?" || a.Marker != marker {
				t.Errorf("identity fields = %q %q %q", a.ID, a.Question, a.Marker)
			}
			if a.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", a.Found, tt.wantFound)
			}
			if !tt.wantFound {
				if a.Error != `marker "Helpful Answer:" not found` {
					t.Errorf("Error = %q", a.Error)
				}
				if a.Offset != 0 || a.Text != "" {
					t.Errorf("not-found answer carries offset %d text %q", a.Offset, a.Text)
				}
				return
			}
			if a.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", a.Offset, tt.wantOffset)
			}
			if a.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", a.Text, tt.wantText)
			}
		})
	}
}

// --- ExtractFixture ---

func TestExtractFixtureMarkerOverride(t *testing.T) {
	ff := &types.FixtureFile{
		Name:   "override",
		Marker: "Answer:",
		Samples: []types.Sample{
			{ID: "a", Generation: "Q\nAnswer: yes"},
			{ID: "b", Generation: "Q\nHelpful Answer: no"},
		},
	}

	result, err := ExtractFixture(context.Background(), ff, marker)
	if err != nil {
		t.Fatalf("ExtractFixture: %v", err)
	}
	if result.Marker != "Answer:" {
		t.Errorf("Marker = %q, want fixture override", result.Marker)
	}
	if result.Fixture != "override" {
		t.Errorf("Fixture = %q", result.Fixture)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(result.Answers))
	}
	// "Helpful Answer:" contains "Answer:" so both match.
	if result.Answers[0].Offset != 2 || result.Answers[1].Offset != 10 {
		t.Errorf("offsets = %d, %d", result.Answers[0].Offset, result.Answers[1].Offset)
	}
	if result.NotFound() != 0 {
		t.Errorf("NotFound = %d, want 0", result.NotFound())
	}
}

func TestExtractFixtureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ff := &types.FixtureFile{Samples: []types.Sample{{ID: "a", Generation: marker}}}
	_, err := ExtractFixture(ctx, ff, marker)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// --- ExtractAll ---

func TestExtractAll(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	outputDir := filepath.Join(tmpDir, "output")

	mustWrite(t, filepath.Join(fixturesDir, "qa.yaml"), `samples:
  - id: hit
    question: q?
    generation: "ctx\nHelpful Answer: yes"
  - id: miss
    generation: "ctx only"
`)
	mustWrite(t, filepath.Join(fixturesDir, "raw.txt"), "Helpful Answer: raw")
	mustWrite(t, filepath.Join(fixturesDir, "notes.md"), "ignored")

	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	if summary.Extracted != 2 {
		t.Errorf("Extracted = %d, want 2", summary.Extracted)
	}
	if summary.NotFound != 1 {
		t.Errorf("NotFound = %d, want 1", summary.NotFound)
	}
	if summary.Total() != 2 {
		t.Errorf("Total = %d, want 2", summary.Total())
	}
	if !summary.HasFailures() {
		t.Error("HasFailures = false, want true for a missing marker")
	}

	result, err := ReadResult(ResultPath(outputDir, "qa"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("qa: got %d answers, want 2", len(result.Answers))
	}
	if !result.Answers[0].Found || result.Answers[0].Text != "Helpful Answer: yes" || result.Answers[0].Offset != 4 {
		t.Errorf("qa hit = %+v", result.Answers[0])
	}
	if result.Answers[1].Found {
		t.Errorf("qa miss = %+v", result.Answers[1])
	}

	raw, err := ReadResult(ResultPath(outputDir, "raw"))
	if err != nil {
		t.Fatal(err)
	}
	if raw.Answers[0].ID != "raw" || raw.Answers[0].Offset != 0 {
		t.Errorf("raw = %+v", raw.Answers[0])
	}

	if !strings.Contains(buf.String(), "extracted qa (1 answers, 1 not found)") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestExtractAllSkipsUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	outputDir := filepath.Join(tmpDir, "output")

	mustWrite(t, filepath.Join(fixturesDir, "qa.txt"), "Helpful Answer: new")

	outPath := ResultPath(outputDir, "qa")
	existing := &types.ExtractionResult{Fixture: "qa", Marker: marker, Answers: []types.Answer{
		{ID: "qa", Marker: marker, Found: true, Text: "Helpful Answer: old"},
	}}
	data, _ := yaml.Marshal(existing)
	mustWrite(t, outPath, string(data))
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(outPath, future, future); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Skipped != 1 || summary.Extracted != 0 {
		t.Errorf("summary = %+v, want one skipped", summary)
	}

	got, err := ReadResult(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.Answers[0].Text != "Helpful Answer: old" {
		t.Errorf("skipped result was rewritten: %q", got.Answers[0].Text)
	}
}

func TestExtractAllReextractsChanged(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	outputDir := filepath.Join(tmpDir, "output")

	outPath := ResultPath(outputDir, "qa")
	mustWrite(t, outPath, "fixture: qa\nanswers: []\n")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(outPath, past, past); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(fixturesDir, "qa.txt"), "x Helpful Answer: updated")

	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Extracted != 1 {
		t.Errorf("Extracted = %d, want 1", summary.Extracted)
	}

	got, err := ReadResult(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Answers) != 1 || got.Answers[0].Text != "Helpful Answer: updated" {
		t.Errorf("answers = %+v", got.Answers)
	}
}

func TestExtractAllBadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	mustWrite(t, filepath.Join(fixturesDir, "bad.yaml"), "samples: [unclosed\n")
	mustWrite(t, filepath.Join(fixturesDir, "good.txt"), "Helpful Answer: ok")

	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), testConfig(fixturesDir, filepath.Join(tmpDir, "out")), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Failed != 1 || summary.Extracted != 1 {
		t.Errorf("summary = %+v, want 1 failed and 1 extracted", summary)
	}
	if !strings.Contains(buf.String(), "failed  bad:") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestExtractAllMissingDir(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := ExtractAll(context.Background(), testConfig(filepath.Join(tmpDir, "nope"), tmpDir), &strings.Builder{})
	if err == nil {
		t.Fatal("expected error for missing fixtures directory")
	}
}

func TestExtractAllBundledFixture(t *testing.T) {
	outputDir := t.TempDir()
	var buf strings.Builder
	summary, err := ExtractAll(context.Background(), testConfig("../../testdata", outputDir), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if summary.Extracted != 1 || summary.NotFound != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	result, err := ReadResult(ResultPath(outputDir, "active-learning"))
	if err != nil {
		t.Fatal(err)
	}
	a := result.Answers[0]
	if a.Offset != 2192 || a.ByteOffset != 2194 {
		t.Errorf("offset = %d (bytes %d), want 2192 (2194)", a.Offset, a.ByteOffset)
	}
	if !strings.HasPrefix(a.Text, "Helpful Answer: Active learning is the process") {
		t.Errorf("Text = %q", a.Text[:min(len(a.Text), 60)])
	}
}

func TestExtractAllReextractsOnMarkerChange(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	outputDir := filepath.Join(tmpDir, "output")
	mustWrite(t, filepath.Join(fixturesDir, "qa.txt"), "x Answer: y")

	first, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &strings.Builder{})
	if err != nil {
		t.Fatalf("first ExtractAll: %v", err)
	}
	if first.Extracted != 1 || first.NotFound != 1 {
		t.Fatalf("first summary = %+v, want 1 extracted with 1 not found", first)
	}

	cfg := testConfig(fixturesDir, outputDir)
	cfg.Marker = "Answer:"
	second, err := ExtractAll(context.Background(), cfg, &strings.Builder{})
	if err != nil {
		t.Fatalf("second ExtractAll: %v", err)
	}
	if second.Extracted != 1 || second.Skipped != 0 || second.NotFound != 0 {
		t.Errorf("second summary = %+v, want re-extraction with the new marker", second)
	}

	got, err := ReadResult(ResultPath(outputDir, "qa"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Marker != "Answer:" {
		t.Errorf("stored marker = %q, want %q", got.Marker, "Answer:")
	}
	if a := got.Answers[0]; !a.Found || a.Offset != 2 || a.Text != "Answer: y" {
		t.Errorf("answer = %+v", a)
	}
}

func TestExtractAllCountsNotFoundWhenSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	outputDir := filepath.Join(tmpDir, "output")
	mustWrite(t, filepath.Join(fixturesDir, "qa.txt"), "no label here")

	for run := 1; run <= 2; run++ {
		summary, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &strings.Builder{})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if summary.NotFound != 1 || !summary.HasFailures() {
			t.Errorf("run %d: summary = %+v, want 1 not found", run, summary)
		}
		if run == 2 && summary.Skipped != 1 {
			t.Errorf("run 2: Skipped = %d, want 1", summary.Skipped)
		}
	}
}

func TestExtractAllRejectsDuplicateNames(t *testing.T) {
	tmpDir := t.TempDir()
	fixturesDir := filepath.Join(tmpDir, "fixtures")
	mustWrite(t, filepath.Join(fixturesDir, "qa.txt"), "Helpful Answer: from txt")
	mustWrite(t, filepath.Join(fixturesDir, "qa.yaml"), "samples:\n  - generation: \"Helpful Answer: from yaml\"\n")

	outputDir := filepath.Join(tmpDir, "output")
	_, err := ExtractAll(context.Background(), testConfig(fixturesDir, outputDir), &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), `share the name "qa"`) {
		t.Fatalf("err = %v, want duplicate name error", err)
	}
	if _, err := os.Stat(ResultPath(outputDir, "qa")); !os.IsNotExist(err) {
		t.Errorf("result file written despite duplicate names: %v", err)
	}
}
