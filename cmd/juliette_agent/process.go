package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nana-intelligence/agent-juliette/internal/config"
	"github.com/nana-intelligence/agent-juliette/internal/observability"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

var processVerbose bool

var processCmd = &cobra.Command{
	Use:   "process <lead.json>",
	Short: "Run the quote pipeline for one lead",
	Long: `Run the full pipeline for a single lead described in a JSON file,
bypassing the webhook. The rendered document lands in the output directory
and, when Gmail is configured, a draft is staged in the mailbox.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print stage-by-stage details")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if processVerbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read lead file: %w", err)
	}

	var lead types.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return fmt.Errorf("failed to parse lead file %s: %w", args[0], err)
	}
	if lead.ResponseID == "" {
		lead.ResponseID = "manual_" + uuid.New().String()
	}
	if lead.ReceivedAt.IsZero() {
		lead.ReceivedAt = time.Now()
	}
	if lead.Source == "" {
		lead.Source = "cli"
	}

	ctx := context.Background()
	ag, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer ag.Close()

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintLead(&lead)
	}

	result := ag.orchestrator.Run(ctx, &lead)
	printer.PrintResult(result)

	if !result.Success {
		return fmt.Errorf("run failed at %s (%s): %w", result.FailureStage, result.FailureReason, result.Err)
	}
	return nil
}
