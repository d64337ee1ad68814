package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "cyberrag",
	Short: "cyberrag - live cybersecurity Q&A backed by official regional sources",
	Long: `cyberrag answers cybersecurity questions about Hong Kong, Japan and New York City
by fetching the official source pages at question time, ranking their sentences
against the question and composing an attributed answer.

It runs as a Dialogflow webhook / HTTP API, a Slack or Telegram bot, an MCP server
or a one-shot CLI.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("warning: failed to load %s: %v", envFile, err)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(slackCmd)
	rootCmd.AddCommand(telegramCmd)
	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(statsCmd)
}
