package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pep299/news-summarizer/internal/config"
	"github.com/pep299/news-summarizer/internal/logging"
)

var (
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "news-summarizer",
	Short: "Summarize recent news about a topic",
	Long: `news-summarizer searches recent news for a topic, keeps the relevant
articles and asks a language model for a headline, summary, sentiment and tags
for each one.

Example usage:
  news-summarizer run "Tesla earnings"
  news-summarizer run "climate policy" --pdf report.pdf
  news-summarizer run "AI regulation" --json --threshold 0.75
  news-summarizer config`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides $"+config.ConfigPathEnv+")")
}

func initConfig() error {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		if err := os.Setenv(config.ConfigPathEnv, path); err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger = logging.NewWithWriter(os.Stderr, level, cfg.LogFormat)
	return nil
}
