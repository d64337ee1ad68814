package slackbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// Slack rejects section text longer than 3000 characters.
const maxSectionRunes = 2900

// Formatter builds Block Kit replies.
type Formatter struct {
	Footer string
}

// BuildUsage renders a usage tip.
func (f *Formatter) BuildUsage(tip string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ":information_source: *How to ask*", false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, tip, false, false), nil, nil),
	}
}

// BuildAnswer renders an answer with routing details.
func (f *Formatter) BuildAnswer(query, answerText string, regions []string, passages int, elapsed time.Duration) []slack.Block {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Q: "+truncate(query, 140), false, false))

	var meta string
	if passages > 0 {
		meta = fmt.Sprintf("Regions: %s · %d passages · %.0f ms", strings.Join(regions, ", "), passages, elapsed.Seconds()*1000)
	} else {
		meta = fmt.Sprintf("Regions: %s · no matching passages · %.0f ms", strings.Join(regions, ", "), elapsed.Seconds()*1000)
	}
	blocks := []slack.Block{
		header,
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, meta, false, false)),
	}
	for _, chunk := range splitRunes(answerText, maxSectionRunes) {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, chunk, false, false), nil, nil))
	}
	if f.Footer != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, f.Footer, false, false)))
	}
	return blocks
}

// BuildError renders a failure notice.
func (f *Formatter) BuildError(message string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, ":warning: Something went wrong", false, false), nil, nil),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message, false, false), nil, nil),
	}
}

// splitRunes cuts s into chunks of at most n runes, preferring line breaks.
func splitRunes(s string, n int) []string {
	var chunks []string
	runes := []rune(s)
	for len(runes) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
