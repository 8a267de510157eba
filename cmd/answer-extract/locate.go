// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-extract/internal/fixture"
	"github.com/pdiddy/answer-extract/internal/locate"
)

var locateCmd = &cobra.Command{
	Use:   "locate [file]",
	Short: "Print the offset of the marker and the text that follows it",
	Long: `Locate reads a block of text, finds the first occurrence of the marker,
and prints the marker's character offset followed by the text from the
marker to the end.

The text comes from --text, from a file argument, from a sample in a
fixture file (--fixture, --sample), or from standard input. A fixture's
own marker is used unless --marker is given explicitly.

If the marker does not occur, locate reports it and exits non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

// locateOptions selects what locate prints.
type locateOptions struct {
	offsetOnly bool
	prefix     bool
	answer     bool
	json       bool
}

func runLocate(cmd *cobra.Command, args []string) error {
	text, marker, err := locateInput(cmd, args)
	if err != nil {
		return err
	}

	log.Debugw("locating marker", "marker", marker, "bytes", len(text))

	m, err := locate.Locate(text, marker)
	if err != nil {
		return err
	}

	var opts locateOptions
	opts.offsetOnly, _ = cmd.Flags().GetBool("offset-only")
	opts.prefix, _ = cmd.Flags().GetBool("prefix")
	opts.answer, _ = cmd.Flags().GetBool("answer")
	opts.json, _ = cmd.Flags().GetBool("json")

	return writeMatch(cmd.OutOrStdout(), text, m, opts)
}

// locateInput resolves the text to search and the marker to search for.
func locateInput(cmd *cobra.Command, args []string) (string, string, error) {
	marker := loadConfig().Locate.Marker

	fixturePath, _ := cmd.Flags().GetString("fixture")
	if fixturePath != "" {
		if len(args) > 0 {
			return "", "", fmt.Errorf("--fixture and a file argument are mutually exclusive")
		}
		ff, err := fixture.Load(fixturePath)
		if err != nil {
			return "", "", err
		}
		if len(ff.Samples) == 0 {
			return "", "", fmt.Errorf("fixture %s has no samples", fixturePath)
		}
		if ff.Marker != "" && !cmd.Flags().Changed("marker") {
			marker = ff.Marker
		}

		id, _ := cmd.Flags().GetString("sample")
		if id == "" {
			return ff.Samples[0].Generation, marker, nil
		}
		for _, s := range ff.Samples {
			if s.ID == id {
				return s.Generation, marker, nil
			}
		}
		return "", "", fmt.Errorf("sample %q not found in %s", id, fixturePath)
	}

	if cmd.Flags().Changed("text") {
		if len(args) > 0 {
			return "", "", fmt.Errorf("--text and a file argument are mutually exclusive")
		}
		text, _ := cmd.Flags().GetString("text")
		return text, marker, nil
	}

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), marker, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("reading standard input: %w", err)
	}
	return string(data), marker, nil
}

// writeMatch prints the offset, then optionally the prefix, then the suffix.
func writeMatch(w io.Writer, text string, m locate.Match, opts locateOptions) error {
	if opts.json {
		out := struct {
			locate.Match
			Prefix string `json:"prefix,omitempty"`
			Answer string `json:"answer"`
		}{Match: m, Answer: m.Answer()}
		if opts.prefix {
			out.Prefix = m.Prefix(text)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, m.Offset)
	if opts.offsetOnly {
		return nil
	}
	if opts.prefix {
		fmt.Fprintln(w, m.Prefix(text))
	}
	if opts.answer {
		fmt.Fprintln(w, m.Answer())
		return nil
	}
	fmt.Fprintln(w, m.Suffix)
	return nil
}

func init() {
	locateCmd.Flags().String("text", "", "text to search (instead of a file or standard input)")
	locateCmd.Flags().String("fixture", "", "fixture file to take the text from")
	locateCmd.Flags().String("sample", "", "sample ID within --fixture (default: first sample)")
	locateCmd.Flags().Bool("offset-only", false, "print only the offset")
	locateCmd.Flags().Bool("prefix", false, "also print the text before the marker")
	locateCmd.Flags().Bool("answer", false, "print the answer without the marker instead of the full suffix")
	locateCmd.Flags().Bool("json", false, "print the match as JSON")

	rootCmd.AddCommand(locateCmd)
}
