// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/answer-extract/internal/fixture"
	"github.com/pdiddy/answer-extract/internal/locate"
	"github.com/pdiddy/answer-extract/pkg/types"
)

// QueryOptions holds parameters for answer queries.
type QueryOptions struct {
	// Query is a substring matched against question and answer text,
	// ignoring case (Unicode lowercasing, so "ÜBER" matches "über").
	Query string

	// Fixture filters by fixture name.
	Fixture string

	// FoundOnly drops answers whose marker was missing.
	FoundOnly bool

	// MissingOnly keeps only answers whose marker was missing.
	MissingOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// QueryResult is a stored answer with its fixture and ingest run.
type QueryResult struct {
	types.Answer `yaml:",inline"`
	Fixture      string `json:"fixture" yaml:"fixture"`
	RunID        string `json:"run_id" yaml:"run_id"`
}

// Retrieve queries stored answers, ordered by fixture then sample ID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT fixture, id, question, marker, found, char_offset, byte_offset,
			text, error, run_id
		FROM answers
		WHERE 1=1`)

	if opts.Query != "" {
		qb.WriteString(` AND (instr(casefold(coalesce(question, '')), casefold(?)) > 0
			OR instr(casefold(coalesce(text, '')), casefold(?)) > 0)`)
		args = append(args, opts.Query, opts.Query)
	}

	if opts.Fixture != "" {
		qb.WriteString(` AND fixture = ?`)
		args = append(args, opts.Fixture)
	}

	if opts.FoundOnly {
		qb.WriteString(` AND found = 1`)
	}
	if opts.MissingOnly {
		qb.WriteString(` AND found = 0`)
	}

	qb.WriteString(` ORDER BY fixture, id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying answers: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr       QueryResult
			question sql.NullString
			text     sql.NullString
			errMsg   sql.NullString
			runID    sql.NullString
		)

		if err := rows.Scan(
			&qr.Fixture, &qr.ID, &question, &qr.Marker, &qr.Found,
			&qr.Offset, &qr.ByteOffset, &text, &errMsg, &runID,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Question = question.String
		qr.Text = text.String
		qr.Error = errMsg.String
		qr.RunID = runID.String

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Context returns the part of the source generation that precedes the
// marker for a stored answer. It reloads the fixture from the fixtures
// directory, so the fixture must still exist.
func (s *Store) Context(ctx context.Context, fixtureName, id string) (string, error) {
	var marker string
	var found bool

	err := s.db.QueryRowContext(ctx,
		`SELECT marker, found FROM answers WHERE fixture = ? AND id = ?`, fixtureName, id,
	).Scan(&marker, &found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("answer %s/%s not found", fixtureName, id)
		}
		return "", fmt.Errorf("looking up answer: %w", err)
	}

	sample, err := s.loadSample(fixtureName, id)
	if err != nil {
		return "", err
	}

	if !found {
		return sample.Generation, nil
	}

	m, err := locate.Locate(sample.Generation, marker)
	if err != nil {
		return "", fmt.Errorf("fixture %s changed since ingest: %w", fixtureName, err)
	}
	return m.Prefix(sample.Generation), nil
}

func (s *Store) loadSample(fixtureName, id string) (types.Sample, error) {
	paths, err := fixture.List(s.fixturesDir)
	if err != nil {
		return types.Sample{}, err
	}
	for _, p := range paths {
		if fixture.Stem(p) != fixtureName {
			continue
		}
		ff, err := fixture.Load(p)
		if err != nil {
			return types.Sample{}, err
		}
		for _, sample := range ff.Samples {
			if sample.ID == id {
				return sample, nil
			}
		}
	}
	return types.Sample{}, fmt.Errorf("sample %s not found in %s", id, filepath.Join(s.fixturesDir, fixtureName))
}
