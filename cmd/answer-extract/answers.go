// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-extract/internal/answers"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Manage the answer store (ingest, query, context, export)",
	Long: `Answers manages a local SQLite store built from extraction result
files. Use subcommands to ingest results, query them, show the text that
preceded an answer, or export the store.`,
}

// --- ingest subcommand ---

var answersIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load extraction result files into the answer store",
	Long: `Ingest reads <output-dir>/extracted/*-answers.yaml into a SQLite
database at <output-dir>/index/answers.db and refreshes export.yaml.
Unchanged result files are skipped on subsequent runs.`,
	Args: cobra.NoArgs,
	RunE: runAnswersIngest,
}

func runAnswersIngest(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	log.Infow("ingest finished", "run_id", summary.RunID, "total", summary.Total())
	if summary.Failed > 0 {
		return fmt.Errorf("%d result file(s) failed ingesting", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var answersQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query stored answers by text and filters",
	Long: `Query searches stored answers. Positional text (or --query) is matched
case-insensitively against the question and the answer text. Filters
narrow by fixture and by whether the marker was found.`,
	RunE: runAnswersQuery,
}

func runAnswersQuery(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), queryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatQueryOutput(w io.Writer, results []answers.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-20s  %-6s  %-6s  %s\n", "Fixture", "ID", "Found", "Offset", "Answer")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range results {
		text := strings.ReplaceAll(r.Text, "\n", " ")
		if !r.Found {
			text = r.Error
		}
		fmt.Fprintf(w, "%-20s  %-20s  %-6t  %-6d  %s\n",
			truncate(r.Fixture, 20), truncate(r.ID, 20), r.Found, r.Offset, truncate(text, 40))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- context subcommand ---

var answersContextCmd = &cobra.Command{
	Use:   "context <fixture> <sample-id>",
	Short: "Print the text that precedes a stored answer's marker",
	Long: `Context reloads the sample from the fixtures directory and prints the
part of the generation before the marker: the prompt, retrieved
context, and question that led to the answer.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		text, err := store.Context(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

// --- export subcommand ---

var answersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the answer store to YAML or JSON",
	Long: `Export writes stored answers (or a filtered subset) to
<output-dir>/index/export.yaml or export.json. Supports the same filter
flags as query.`,
	RunE: runAnswersExport,
}

func runAnswersExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Exported to", store.ExportPath("yaml"))
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Exported to", store.ExportPath("json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore() (*answers.Store, error) {
	cfg := loadConfig()
	return answers.NewStore(cfg.Store, cfg.Extraction.FixturesDir)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) answers.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	fixtureName, _ := cmd.Flags().GetString("fixture")
	foundOnly, _ := cmd.Flags().GetBool("found")
	missingOnly, _ := cmd.Flags().GetBool("missing")
	limit, _ := cmd.Flags().GetInt("limit")

	return answers.QueryOptions{
		Query:       queryText,
		Fixture:     fixtureName,
		FoundOnly:   foundOnly,
		MissingOnly: missingOnly,
		MaxResults:  limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "case-insensitive text filter on question and answer")
	cmd.Flags().String("fixture", "", "filter by fixture name")
	cmd.Flags().Bool("found", false, "only answers whose marker was found")
	cmd.Flags().Bool("missing", false, "only answers whose marker was missing")
	cmd.MarkFlagsMutuallyExclusive("found", "missing")
}

func init() {
	answersCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	addFilterFlags(answersQueryCmd)
	answersQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	answersQueryCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(answersExportCmd)
	answersExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	answersCmd.AddCommand(answersIngestCmd)
	answersCmd.AddCommand(answersQueryCmd)
	answersCmd.AddCommand(answersContextCmd)
	answersCmd.AddCommand(answersExportCmd)

	rootCmd.AddCommand(answersCmd)
}
