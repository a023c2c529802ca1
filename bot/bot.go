// Package bot serves the assistant over Telegram
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Chatter answers a chat message
type Chatter interface {
	Chat(ctx context.Context, chatID int64, message string) (string, error)
}

const (
	startText = "Hi %s! I'm an AI agent bot with three capabilities:\n\n" +
		"1️⃣ <b>Calculator</b>: Ask me math questions like 'What is 125 * 48?'\n" +
		"2️⃣ <b>Mark Six Extractor</b>: Send me an image of Mark Six lottery results\n" +
		"3️⃣ <b>Mark Six History</b>: Ask me about past draws like 'How often has 7 appeared?'\n\n" +
		"Try it out!"
	helpText = "I can help you with:\n" +
		"• Math calculations (e.g., 'Calculate 1000 divided by 25')\n" +
		"• Extract Mark Six lottery results from images (just send me a photo)\n" +
		"• Mark Six history (e.g., 'Show me the last 5 draws')\n\n" +
		"Just send me a message or image!"
	photoPrompt = "Please extract the Mark Six lottery results from the image at: %s. Format the response in a clear, readable way for the user."
	// maxTextLength keeps replies under the Telegram message limit
	maxTextLength = 3900
)

// Stats counters of handled updates
type Stats struct {
	Updates  int64
	Messages int64
	Photos   int64
	Failures int64
}

// Bot dispatches Telegram updates to the assistant
type Bot struct {
	Config
	api       *tgbotapi.BotAPI
	assistant Chatter
	updates   *atomic.Int64
	messages  *atomic.Int64
	photos    *atomic.Int64
	failures  *atomic.Int64
}

// New returns a Bot, api must be authorized
func New(api *tgbotapi.BotAPI, assistant Chatter, opts ...Option) *Bot {
	ret := &Bot{
		Config: Config{
			logger:       slog.Default(),
			tempDir:      DefaultTempDir,
			workers:      DefaultWorkers,
			pollTimeout:  DefaultPollTimeout,
			httpClient:   http.DefaultClient,
			fileEndpoint: tgbotapi.FileEndpoint,
		},
		api:       api,
		assistant: assistant,
		updates:   atomic.NewInt64(0),
		messages:  atomic.NewInt64(0),
		photos:    atomic.NewInt64(0),
		failures:  atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	return ret
}

// Stats returns the counters since start
func (b *Bot) Stats() Stats {
	return Stats{
		Updates:  b.updates.Load(),
		Messages: b.messages.Load(),
		Photos:   b.photos.Load(),
		Failures: b.failures.Load(),
	}
}

// Run long polls updates until ctx is done, at most workers updates are handled at once
func (b *Bot) Run(ctx context.Context) error {
	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	defer g.Wait()
	b.logger.Info("bot started", slog.String("username", b.api.Self.UserName), slog.Int("workers", b.workers))
	var (
		offset   int
		failures int
	)
	for {
		if err := ctx.Err(); err != nil {
			b.logger.Info("polling stopped", slog.Any("stats", b.Stats()))
			return nil
		}
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = b.pollTimeout
		updates, err := b.api.GetUpdates(u)
		if err != nil {
			failures++
			d := retryDelay(err, failures)
			b.logger.Warn("polling error", slog.String("error", err.Error()), slog.Duration("retry", d))
			sleep(ctx, d)
			continue
		}
		failures = 0
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			g.Go(func() error {
				b.HandleUpdate(ctx, upd)
				return nil
			})
		}
		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

const (
	baseRetryDelay = time.Second
	maxRetryDelay  = 15 * time.Second
)

// retryDelay honors the retry_after of rate limited responses and backs off exponentially otherwise
func retryDelay(err error, failures int) time.Duration {
	d := baseRetryDelay
	var apiErr *tgbotapi.Error
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.RetryAfter > 0:
		return time.Duration(apiErr.RetryAfter) * time.Second
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests:
		d = 3 * time.Second
	case errors.As(err, &netErr) && netErr.Timeout():
		d = 2 * time.Second
	}
	if failures > 1 {
		d = max(d, baseRetryDelay<<min(failures-1, 4))
	}
	return min(d, maxRetryDelay)
}

// sleep returns false when ctx is done first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// HandleUpdate answers a single update
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	b.updates.Inc()
	msg := upd.Message
	if msg == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case len(msg.Photo) > 0:
		b.photos.Inc()
		b.handlePhoto(ctx, msg)
	case msg.Text != "":
		b.messages.Inc()
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		name := "there"
		if msg.From != nil {
			name = fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, msg.From.ID, html.EscapeString(msg.From.FirstName))
		}
		reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(startText, name))
		reply.ParseMode = tgbotapi.ModeHTML
		b.send(reply)
	case "help":
		b.send(tgbotapi.NewMessage(msg.Chat.ID, helpText))
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.logger.Info("user message", slog.Int64("chat", chatID), slog.String("text", msg.Text))
	b.typing(chatID)
	answer, err := b.assistant.Chat(ctx, chatID, msg.Text)
	if err != nil {
		b.failures.Inc()
		b.logger.Error("process message failed", slog.Int64("chat", chatID), slog.String("error", err.Error()))
		b.reply(chatID, fmt.Sprintf("Sorry, I encountered an error: %v", err))
		return
	}
	b.reply(chatID, answer)
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.typing(chatID)
	path, err := b.downloadPhoto(ctx, msg.Photo[len(msg.Photo)-1])
	if err == nil {
		defer b.removeFile(path)
		b.logger.Info("downloaded image", slog.Int64("chat", chatID), slog.String("path", path))
		var answer string
		if answer, err = b.assistant.Chat(ctx, chatID, fmt.Sprintf(photoPrompt, path)); err == nil {
			b.logger.Info("agent response", slog.Int64("chat", chatID), slog.String("text", answer))
			b.reply(chatID, answer)
			return
		}
	}
	b.failures.Inc()
	b.logger.Error("process image failed", slog.Int64("chat", chatID), slog.String("error", err.Error()))
	b.reply(chatID, fmt.Sprintf("Sorry, I couldn't process the image: %v", err))
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Warn("send chat action failed", slog.Int64("chat", chatID), slog.String("error", err.Error()))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, truncate(text, maxTextLength)))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("send message failed", slog.String("error", err.Error()))
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// SendDocument implements scheduler.Notifier
func (b *Bot) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := b.api.Send(doc)
	return err
}
