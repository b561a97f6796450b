package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nana-intelligence/agent-juliette/internal/config"
	"github.com/nana-intelligence/agent-juliette/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Start an HTTP server that receives Tally form submissions and runs the quote pipeline for each lead.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if servePort > 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ag, err := buildAgent(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer ag.Close()

	srv := server.New(server.Config{
		Port:          cfg.Port,
		WebhookSecret: cfg.WebhookSecret,
	}, ag.orchestrator, ag.retriever)

	return srv.Start()
}
