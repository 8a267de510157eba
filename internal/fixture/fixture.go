// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixture loads question/generation samples from disk.
//
// Two formats are accepted: YAML files (*.yaml, *.yml) holding an optional
// marker override and a list of samples, and plain text files (*.txt)
// holding a single generation.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-extract/pkg/types"
)

// IsFixture reports whether name has a fixture file extension.
func IsFixture(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".txt":
		return true
	}
	return false
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads one fixture file. Samples without an ID are numbered
// <stem>-1, <stem>-2, ... in file order.
func Load(path string) (*types.FixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}

	name := Stem(path)
	ff := &types.FixtureFile{Name: name}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		ff.Samples = []types.Sample{{ID: name, Generation: string(data)}}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, ff); err != nil {
			return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
		}
		ff.Name = name
	default:
		return nil, fmt.Errorf("unsupported fixture type %q: use .yaml, .yml, or .txt", filepath.Ext(path))
	}

	for i := range ff.Samples {
		if ff.Samples[i].ID == "" {
			ff.Samples[i].ID = fmt.Sprintf("%s-%d", name, i+1)
		}
	}
	return ff, nil
}

// LoadDir loads every fixture file in dir, sorted by file name.
// Subdirectories and files with other extensions are ignored.
func LoadDir(dir string) ([]*types.FixtureFile, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}

	fixtures := make([]*types.FixtureFile, 0, len(paths))
	for _, p := range paths {
		ff, err := Load(p)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, ff)
	}
	return fixtures, nil
}

// List returns the paths of fixture files in dir, sorted by file name.
// Results and stored answers are keyed by file stem, so two fixtures with
// the same stem (qa.txt and qa.yaml) are an error.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures directory %s: %w", dir, err)
	}

	var paths []string
	byStem := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !IsFixture(entry.Name()) {
			continue
		}
		stem := Stem(entry.Name())
		if other, ok := byStem[stem]; ok {
			return nil, fmt.Errorf("fixtures %s and %s share the name %q in %s", other, entry.Name(), stem, dir)
		}
		byStem[stem] = entry.Name()
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
