package telegrambot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/composer"
	"github.com/ca-srg/cyberrag/internal/metrics"
)

// Telegram rejects messages over 4096 characters.
const maxMessageLen = 4000

var telegramTracer = otel.Tracer("cyberrag/telegrambot")

// Answerer produces answer text for a query.
type Answerer interface {
	Answer(ctx context.Context, query string) string
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options tune the bot.
type Options struct {
	AllowFrom       []int64
	ResponseTimeout time.Duration
	PollTimeout     int
	Logger          *log.Logger
}

// Bot answers questions sent to a Telegram bot by long polling.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	answerer Answerer
	allow    map[int64]struct{}
	opts     Options
}

// New authenticates token against the Bot API.
func New(token string, answerer Answerer, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	b := newBot(api, answerer, opts)
	b.api = api
	return b, nil
}

func newBot(s sender, answerer Answerer, opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "telegrambot ", log.LstdFlags)
	}
	if opts.ResponseTimeout <= 0 {
		opts.ResponseTimeout = 60 * time.Second
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30
	}
	allow := make(map[int64]struct{}, len(opts.AllowFrom))
	for _, id := range opts.AllowFrom {
		allow[id] = struct{}{}
	}
	return &Bot{sender: s, answerer: answerer, allow: allow, opts: opts}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.opts.Logger.Printf("event=start username=%s allow_from=%d", b.api.Self.UserName, len(b.allow))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) allowed(userID int64) bool {
	if len(b.allow) == 0 {
		return true
	}
	_, ok := b.allow[userID]
	return ok
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return
	}
	chatID := msg.Chat.ID
	if !b.allowed(msg.From.ID) {
		b.opts.Logger.Printf("event=unauthorized user_id=%d", msg.From.ID)
		b.send(chatID, msg.MessageID, "Sorry, this bot is restricted to approved users.")
		return
	}

	query := strings.TrimSpace(msg.Text)
	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.send(chatID, msg.MessageID, composer.CapabilityHint)
			return
		case "ask":
			query = strings.TrimSpace(msg.CommandArguments())
		default:
			b.send(chatID, msg.MessageID, "Unknown command. Send a question, or /help.")
			return
		}
	}

	ctx, span := telegramTracer.Start(ctx, "telegrambot.answer")
	defer span.End()
	span.SetAttributes(attribute.Int64("telegram.chat_id", chatID))

	ctx, cancel := context.WithTimeout(ctx, b.opts.ResponseTimeout)
	defer cancel()

	_, _ = b.sender.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	start := time.Now()
	metrics.RecordInvocation(metrics.ChannelTelegram)
	text := answer.NoQueryText
	if query != "" {
		text = b.answerer.Answer(ctx, query)
	}
	b.send(chatID, msg.MessageID, text)
	b.opts.Logger.Printf("event=reply chat_id=%d duration=%s", chatID, time.Since(start))
}

// send delivers text as plain messages, splitting long answers.
func (b *Bot) send(chatID int64, replyTo int, text string) {
	for i, chunk := range splitMessage(text, maxMessageLen) {
		m := tgbotapi.NewMessage(chatID, chunk)
		m.DisableWebPagePreview = true
		if i == 0 {
			m.ReplyToMessageID = replyTo
		}
		if _, err := b.sender.Send(m); err != nil {
			b.opts.Logger.Printf("event=send chat_id=%d status=error err=%v", chatID, err)
			return
		}
	}
}

// splitMessage cuts text into chunks of at most n runes, preferring line breaks.
func splitMessage(text string, n int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
