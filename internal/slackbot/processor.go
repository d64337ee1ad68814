package slackbot

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/metrics"
)

var slackTracer = otel.Tracer("cyberrag/slackbot")

// Answerer is the answer pipeline as seen by the bot.
type Answerer interface {
	AnswerDetailed(ctx context.Context, query string) answer.Result
}

// Reply is a transport-agnostic response, turned into slack.MsgOption by the bot.
type Reply struct {
	Channel  string
	ThreadTS string
	Text     string
	Blocks   []slack.Block
}

// Processor turns an addressed Slack message into a reply.
type Processor struct {
	answerer Answerer
	format   *Formatter
}

func NewProcessor(answerer Answerer, formatter *Formatter) *Processor {
	if formatter == nil {
		formatter = &Formatter{}
	}
	return &Processor{answerer: answerer, format: formatter}
}

// ShouldRespond reports whether msg mentions the bot or arrived by DM.
func (p *Processor) ShouldRespond(botUserID string, msg *slack.MessageEvent) bool {
	return addressedToBot(botUserID, msg)
}

// ProcessMessage answers msg, or returns nil when the bot is not addressed.
func (p *Processor) ProcessMessage(ctx context.Context, botUserID string, msg *slack.MessageEvent) *Reply {
	if !addressedToBot(botUserID, msg) {
		return nil
	}

	ctx, span := slackTracer.Start(ctx, "slackbot.process_message")
	defer span.End()

	dm := isDirectMessage(msg.Channel)
	attrs := []attribute.KeyValue{
		attribute.Bool("slack.is_dm", dm),
		attribute.Bool("slack.is_thread", msg.ThreadTimestamp != ""),
	}
	span.SetAttributes(append(attrs, attribute.String("slack.channel", msg.Channel))...)

	start := time.Now()
	metrics.RecordInvocation(metrics.ChannelSlack)
	query := extractQuery(msg.Text)

	reply := &Reply{Channel: msg.Channel, ThreadTS: msg.ThreadTimestamp}
	if reply.ThreadTS == "" {
		reply.ThreadTS = msg.Timestamp
	}

	if query == "" {
		reply.Text = answer.NoQueryText
		reply.Blocks = p.format.BuildUsage(answer.NoQueryText)
		recordSlackMetrics(ctx, append(attrs, attribute.String("slack.outcome", "no_query")), time.Since(start))
		return reply
	}

	res := p.answerer.AnswerDetailed(ctx, query)
	outcome := "evidence"
	if len(res.Evidence) == 0 {
		outcome = "fallback"
	}
	span.SetAttributes(
		attribute.Int("slack.evidence", len(res.Evidence)),
		attribute.String("slack.outcome", outcome),
	)

	reply.Text = res.Answer
	reply.Blocks = p.format.BuildAnswer(query, res.Answer, res.Regions, len(res.Evidence), time.Since(start))
	recordSlackMetrics(ctx, append(attrs, attribute.String("slack.outcome", outcome)), time.Since(start))
	return reply
}
