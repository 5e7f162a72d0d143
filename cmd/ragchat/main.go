package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	email      string
	password   string
)

var rootCmd = &cobra.Command{
	Use:          "ragchat",
	Short:        "Chat with a RAG knowledge base from the terminal",
	Version:      "1.0",
	SilenceUsage: true,
	RunE:         runChat,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ragchat/config.toml)")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("RAGCHAT_EMAIL"), "account to sign in with")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("RAGCHAT_PASSWORD"), "password for --email")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
