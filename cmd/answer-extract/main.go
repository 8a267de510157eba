// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the answer-extract CLI.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/answer-extract/internal/logging"
	"github.com/pdiddy/answer-extract/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is the diagnostic logger, built in PersistentPreRunE.
var log = logging.Nop()

// newLogger builds the diagnostic logger for a level name.
var newLogger = logging.New

// conf holds the settings for the current execution. initConfig replaces
// it on every Execute so flags, environment and config file are read anew.
var conf = viper.New()

// rootCmd is the base command for the answer-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "answer-extract",
	Short: "Locate an answer marker in generated text and print what follows",
	Long: `answer-extract finds the first occurrence of a marker token (by default
"Helpful Answer:") in a block of generated text, prints its character
offset, and prints the text from the marker to the end.

Single texts are handled by locate. Directories of fixture files are
processed by extract, and the results can be loaded into a SQLite store
with the answers subcommands.

Settings come from flags, ANSWER_EXTRACT_* environment variables, and
answer-extract.yaml, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		l, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		log = l
		if f := conf.ConfigFileUsed(); f != "" {
			log.Infow("using config file", "path", f)
		}
		log.Debugw("loaded config",
			"marker", cfg.Locate.Marker,
			"fixtures_dir", cfg.Extraction.FixturesDir,
			"output_dir", cfg.Extraction.OutputDir,
		)
		return nil
	},
}

// flagKeys maps config keys to the persistent flags bound to them.
var flagKeys = map[string]string{
	"marker":       "marker",
	"fixtures_dir": "fixtures-dir",
	"output_dir":   "output-dir",
	"log_level":    "log-level",
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./answer-extract.yaml or ~/.config/answer-extract/answer-extract.yaml)")
	pf.String("marker", types.DefaultMarker, "marker token that introduces the answer")
	pf.String("fixtures-dir", "fixtures", "directory holding fixture files (*.yaml, *.yml, *.txt)")
	pf.String("output-dir", "output", "base directory for results (contains extracted/, index/)")
	pf.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
}

func initConfig() {
	v := viper.New()

	pf := rootCmd.PersistentFlags()
	for key, flag := range flagKeys {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
	_ = v.BindPFlag("max_results", answersCmd.PersistentFlags().Lookup("max-results"))
	v.SetDefault("max_results", 20)

	cfgFile, _ := pf.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("answer-extract")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "answer-extract"))
		}
	}

	v.SetEnvPrefix("ANSWER_EXTRACT")
	v.AutomaticEnv()

	_ = v.ReadInConfig()
	conf = v
}

// loadConfig assembles the stage configuration from the current settings.
func loadConfig() types.Config {
	locate := types.LocateConfig{Marker: conf.GetString("marker")}
	outputDir := conf.GetString("output_dir")

	return types.Config{
		Locate: locate,
		Extraction: types.ExtractionConfig{
			LocateConfig: locate,
			FixturesDir:  conf.GetString("fixtures_dir"),
			OutputDir:    outputDir,
		},
		Store: types.StoreConfig{
			OutputDir:  outputDir,
			MaxResults: conf.GetInt("max_results"),
		},
		Log: types.LogConfig{Level: conf.GetString("log_level")},
	}
}

// run executes the root command and flushes the logger whatever the outcome.
func run() error {
	defer func() { _ = log.Sync() }()
	return rootCmd.Execute()
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}
