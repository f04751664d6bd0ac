// Package telegram exposes the advisor over a Telegram bot. Single-owner:
// messages from anyone but the configured owner are ignored.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/service/advisor"
	"github.com/sandevgo/guardian/pkg/conv"
	"github.com/sandevgo/guardian/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// telegramMessageLimit is the hard cap Telegram places on one message.
const telegramMessageLimit = 4096

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	advisor *advisor.Advisor
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	adv *advisor.Advisor,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		advisor: adv,
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleQuestion)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(fmt.Sprintf("%s here. Ask me anything about practical climate action: energy, transport, food, water, waste.", core.GuardianName))
}

func (b *Bot) handleQuestion(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	answer := b.advisor.Answer(ctx, c.Text(), nil)

	for _, chunk := range splitMarkdown(renderAnswer(answer), telegramMessageLimit) {
		htmlContent := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(chunk)))
		if htmlContent == "" {
			continue
		}
		if err := c.Send(htmlContent, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Msg("failed to send telegram message")
			return nil
		}
	}
	return nil
}

func renderAnswer(answer core.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Text)

	if len(answer.Sources) > 0 {
		sb.WriteString("\n\n**Sources:**\n")
		for _, src := range answer.Sources {
			fmt.Fprintf(&sb, "- %s (%s)\n", src.Title, src.Source)
		}
	}

	if answer.Degraded {
		sb.WriteString("\n_The answer service was unreachable, this is offline guidance._")
	}
	return sb.String()
}

// splitMarkdown breaks text into chunks under limit, preferring paragraph
// boundaries so formatting survives rendering. A single paragraph over the
// limit is split hard.
func splitMarkdown(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		for len(para) > limit {
			chunks = append(chunks, flush(&cur), para[:limit])
			para = para[limit:]
		}
		if cur.Len()+len(para)+2 > limit {
			chunks = append(chunks, flush(&cur))
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
	}
	chunks = append(chunks, flush(&cur))

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func flush(b *strings.Builder) string {
	s := b.String()
	b.Reset()
	return s
}
