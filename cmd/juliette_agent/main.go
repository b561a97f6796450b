// Package main provides the entry point for the Juliette quote agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "juliette_agent",
	Short: "Juliette lead-to-quote agent",
	Long:  "Juliette turns inbound Tally form submissions into priced French quote documents and stages them as Gmail drafts for human review.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
