package cmd

import (
	"fmt"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/slackbot"
)

var slackCmd = &cobra.Command{
	Use:   "slack-bot",
	Short: "Answer questions asked in Slack (Socket Mode)",
	Long: `
Connect to Slack over Socket Mode and answer questions that mention the bot
or arrive by direct message. Requires SLACK_BOT_TOKEN (xoxb-) and SLACK_APP_TOKEN (xapp-).
`,
	RunE: runSlack,
}

func runSlack(cmd *cobra.Command, args []string) error {
	scfg, err := appcfg.LoadSlack()
	if err != nil {
		return fmt.Errorf("failed to load slack config: %w", err)
	}
	if !scfg.SocketMode || scfg.AppToken == "" {
		return fmt.Errorf("slack-bot requires Socket Mode: set SLACK_APP_TOKEN")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, "slack-bot")
	if err != nil {
		return err
	}
	defer a.Close()

	client := slack.New(scfg.BotToken, slack.OptionAppLevelToken(scfg.AppToken))
	processor := slackbot.NewProcessor(a.service, &slackbot.Formatter{Footer: "cyberrag · live official sources"})
	bot, err := slackbot.NewSocketBot(client, processor, slackbot.Options{
		Threading:       scfg.EnableThreading,
		ResponseTimeout: scfg.ResponseTimeout,
		RateLimiter:     slackbot.NewRateLimiter(scfg.RateUserPerMinute, scfg.RateChannelPerMinute, scfg.RateGlobalPerMinute),
	})
	if err != nil {
		return err
	}

	a.logger.Printf("event=slack_start threading=%t timeout=%s", scfg.EnableThreading, scfg.ResponseTimeout)
	return bot.Start(ctx)
}
