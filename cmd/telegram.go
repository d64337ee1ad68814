package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/telegrambot"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram-bot",
	Short: "Answer questions sent to a Telegram bot (long polling)",
	Long: `
Poll the Telegram Bot API and answer every message, or "/ask <question>".
Requires TELEGRAM_BOT_TOKEN. TELEGRAM_ALLOW_FROM restricts use to listed user ids.
`,
	RunE: runTelegram,
}

func runTelegram(cmd *cobra.Command, args []string) error {
	tcfg, err := appcfg.LoadTelegram()
	if err != nil {
		return fmt.Errorf("failed to load telegram config: %w", err)
	}
	allow, err := tcfg.AllowedUserIDs()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, "telegram-bot")
	if err != nil {
		return err
	}
	defer a.Close()

	bot, err := telegrambot.New(tcfg.BotToken, a.service, telegrambot.Options{
		AllowFrom:       allow,
		ResponseTimeout: tcfg.ResponseTimeout,
		PollTimeout:     tcfg.PollTimeout,
	})
	if err != nil {
		return err
	}
	return bot.Start(ctx)
}
