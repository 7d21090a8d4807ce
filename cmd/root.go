package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/digest-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "digest-api",
	Short: "Video digest pipeline and API server",
	Long: `Video Digest API - Collects videos from watched channels, summarizes
them, and periodically delivers a digest email.

The pipeline watches subscribed channels for new uploads, fetches a
transcript for each video (captions first, audio transcription as a
fallback), generates a structured summary, and bundles summarized
videos into a digest that is sent by mail.

Features:
  • Channel subscriptions with periodic feed checks
  • Transcript acquisition with language preferences
  • Structured summarization with fixed categories
  • Scheduled and manual digest generation
  • Digest delivery via Resend`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it.
// Version and help runs skip it so they work without any environment.
func loadConfig() {
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
