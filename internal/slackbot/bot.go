package slackbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Options tune the bot.
type Options struct {
	Threading       bool
	ResponseTimeout time.Duration
	RateLimiter     *RateLimiter
	Reporter        ErrorReporter
	Logger          *log.Logger
}

// SocketBot receives events over Socket Mode and replies via the Web API.
type SocketBot struct {
	poster    messagePoster
	sm        *socketmode.Client
	processor *Processor
	botUserID string
	opts      Options
	metrics   Metrics
}

// NewSocketBot authenticates the bot token and prepares a Socket Mode client.
// client must be built with slack.OptionAppLevelToken.
func NewSocketBot(client *slack.Client, processor *Processor, opts Options) (*SocketBot, error) {
	if client == nil {
		return nil, fmt.Errorf("nil slack client")
	}
	auth, err := client.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack auth test failed: %w", err)
	}
	b := newBot(client, processor, auth.UserID, opts)
	b.sm = socketmode.New(client)
	return b, nil
}

func newBot(poster messagePoster, processor *Processor, botUserID string, opts Options) *SocketBot {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "slackbot ", log.LstdFlags)
	}
	if opts.Reporter == nil {
		opts.Reporter = &logReporter{logger: opts.Logger}
	}
	if opts.ResponseTimeout <= 0 {
		opts.ResponseTimeout = 60 * time.Second
	}
	return &SocketBot{poster: poster, processor: processor, botUserID: botUserID, opts: opts}
}

// Metrics exposes in-process counters.
func (b *SocketBot) Metrics() *Metrics { return &b.metrics }

// Start runs the event loop until ctx is cancelled.
func (b *SocketBot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := b.sm.RunContext(ctx); err != nil && ctx.Err() == nil {
			b.opts.Logger.Printf("event=socketmode status=error err=%v", err)
			cancel()
		}
	}()

	b.opts.Logger.Printf("event=start bot_user=%s threading=%t", b.botUserID, b.opts.Threading)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-b.sm.Events:
			if !ok {
				return nil
			}
			b.handleEvent(ctx, ev)
		}
	}
}

func (b *SocketBot) handleEvent(ctx context.Context, ev socketmode.Event) {
	switch ev.Type {
	case socketmode.EventTypeConnected:
		b.opts.Logger.Printf("event=connected")
	case socketmode.EventTypeInvalidAuth:
		b.opts.Logger.Printf("event=invalid_auth hint=\"verify SLACK_APP_TOKEN and SLACK_BOT_TOKEN\"")
	case socketmode.EventTypeConnectionError, socketmode.EventTypeIncomingError:
		b.opts.Logger.Printf("event=%s err=%v", ev.Type, ev.Data)
	case socketmode.EventTypeEventsAPI:
		if ev.Request != nil {
			b.sm.Ack(*ev.Request)
		}
		payload, ok := ev.Data.(slackevents.EventsAPIEvent)
		if !ok || payload.Type != slackevents.CallbackEvent {
			return
		}
		if msg := toMessageEvent(payload.InnerEvent.Data); msg != nil {
			go b.handleMessage(ctx, msg)
		}
	}
}

func toMessageEvent(data interface{}) *slack.MessageEvent {
	switch e := data.(type) {
	case *slackevents.AppMentionEvent:
		return &slack.MessageEvent{Msg: slack.Msg{
			Channel: e.Channel, User: e.User, BotID: e.BotID, Text: e.Text,
			Timestamp: e.TimeStamp, ThreadTimestamp: e.ThreadTimeStamp,
		}}
	case *slackevents.MessageEvent:
		// App mentions in channels arrive as both events; only DMs are taken from here.
		if e.SubType != "" || !isDirectMessage(e.Channel) {
			return nil
		}
		return &slack.MessageEvent{Msg: slack.Msg{
			Channel: e.Channel, User: e.User, BotID: e.BotID, Text: e.Text,
			Timestamp: e.TimeStamp, ThreadTimestamp: e.ThreadTimeStamp,
		}}
	}
	return nil
}

func (b *SocketBot) handleMessage(ctx context.Context, msg *slack.MessageEvent) {
	if !b.processor.ShouldRespond(b.botUserID, msg) {
		return
	}
	if b.opts.RateLimiter != nil {
		if ok, scope := b.opts.RateLimiter.Allow(msg.User, msg.Channel); !ok {
			b.metrics.RecordRateLimited()
			b.opts.Logger.Printf("event=rate_limited scope=%s user=%s channel=%s", scope, msg.User, msg.Channel)
			return
		}
	}

	b.metrics.RecordRequest()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, b.opts.ResponseTimeout)
	defer cancel()

	reply := b.processor.ProcessMessage(ctx, b.botUserID, msg)
	if reply == nil {
		return
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(reply.Text, false),
		slack.MsgOptionBlocks(reply.Blocks...),
	}
	if b.opts.Threading && reply.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(reply.ThreadTS))
	}
	// The post gets its own deadline.
	postCtx, postCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer postCancel()
	if _, _, err := b.poster.PostMessageContext(postCtx, reply.Channel, opts...); err != nil {
		b.metrics.RecordError()
		b.opts.Reporter.Report(err, map[string]string{"channel": reply.Channel})
		return
	}
	b.metrics.RecordResponse(time.Since(start))
	b.opts.Logger.Printf("event=reply channel=%s duration=%s", reply.Channel, time.Since(start))
}
