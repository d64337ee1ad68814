package slackbot

import (
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

var userMention = regexp.MustCompile(`<@([A-Z0-9]+)(\|[^>]*)?>`)

// mentionsBot reports whether text contains <@botUserID>.
func mentionsBot(botUserID, text string) bool {
	if botUserID == "" {
		return false
	}
	for _, m := range userMention.FindAllStringSubmatch(text, -1) {
		if m[1] == botUserID {
			return true
		}
	}
	return false
}

// isDirectMessage reports whether the channel is a DM. DM channel ids start with D.
func isDirectMessage(channel string) bool {
	return strings.HasPrefix(channel, "D")
}

// addressedToBot reports whether the bot should answer msg.
func addressedToBot(botUserID string, msg *slack.MessageEvent) bool {
	if msg == nil || msg.User == "" || msg.User == botUserID || msg.BotID != "" {
		return false
	}
	return mentionsBot(botUserID, msg.Text) || isDirectMessage(msg.Channel)
}

// extractQuery removes user mentions and collapses whitespace.
func extractQuery(text string) string {
	cleaned := userMention.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
