package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tlchat",
		Short: "CLI tool for the touchline chat API",
		Long: `tlchat is a CLI tool for interacting with the touchline chat server.

It supports listing participants, fetching conversation history, and joining
chat rooms over a live websocket connection.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.ParticipantID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TLCHAT_SERVER)")
	rootCmd.PersistentFlags().Int64Var(&cfg.ParticipantID, "as", cfg.ParticipantID, "Acting participant id (env: TLCHAT_PARTICIPANT)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newConversationCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
