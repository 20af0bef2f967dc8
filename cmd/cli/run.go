package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pep299/news-summarizer/internal/app"
	"github.com/pep299/news-summarizer/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Build a report for a topic",
	Long: `Fetch, filter and summarize news for a topic and print the report.

Examples:
  news-summarizer run "Tesla earnings"             # styled terminal output
  news-summarizer run "Tesla earnings" --json      # report as JSON
  news-summarizer run "Tesla earnings" --pdf t.pdf # also write a PDF`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("pdf", "", "write the report as PDF to this file")
	runCmd.Flags().Bool("json", false, "output as JSON")
	runCmd.Flags().Float64("threshold", -1, "relevance threshold override in [0, 1]")
	runCmd.Flags().Int("max-results", 0, "results requested per search query")
	runCmd.Flags().Bool("archive", false, "upload the PDF to the configured archive")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	req := service.Request{Topic: args[0], Refresh: true}
	req.MaxResults, _ = cmd.Flags().GetInt("max-results")
	if threshold, _ := cmd.Flags().GetFloat64("threshold"); threshold >= 0 {
		req.Threshold = &threshold
	}

	rep, _, err := a.Service.Report(ctx, req)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("pdf"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := a.Service.WritePDF(f, rep); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("pdf written", "path", path)
	}

	if archive, _ := cmd.Flags().GetBool("archive"); archive {
		location, err := a.Service.Archive(ctx, rep)
		if err != nil {
			return err
		}
		logger.Info("report archived", "location", location)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderReport(rep))
	return nil
}
