// Package share publishes shareable run summaries to a Discord channel via
// an incoming webhook.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var ErrNotConfigured = errors.New("share publisher not configured")

const (
	maxContentLen = 2000
	embedColor    = 0xE4572E
	username      = "The Notice Period"
)

type Post struct {
	Title string
	Text  string
	URL   string
}

// executor is the slice of *discordgo.Session the publisher needs.
type executor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Publisher struct {
	exec      executor
	webhookID string
	token     string
	log       *slog.Logger
}

// NewDiscordPublisher returns ErrNotConfigured when either credential is
// empty so callers can treat sharing as optional.
func NewDiscordPublisher(webhookID, token string, logger *slog.Logger) (*Publisher, error) {
	webhookID = strings.TrimSpace(webhookID)
	token = strings.TrimSpace(token)
	if webhookID == "" || token == "" {
		return nil, ErrNotConfigured
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return newPublisher(session, webhookID, token, logger), nil
}

func newPublisher(exec executor, webhookID, token string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{exec: exec, webhookID: webhookID, token: token, log: logger}
}

func (p *Publisher) Publish(ctx context.Context, post Post) (string, error) {
	if p == nil {
		return "", ErrNotConfigured
	}
	text := strings.TrimSpace(post.Text)
	if text == "" {
		return "", errors.New("share text is empty")
	}
	params := &discordgo.WebhookParams{
		Username: username,
		Embeds: []*discordgo.MessageEmbed{{
			Title:       truncate(post.Title, 256),
			Description: truncate(text, maxContentLen),
			URL:         post.URL,
			Color:       embedColor,
			Footer:      &discordgo.MessageEmbedFooter{Text: "#TheNoticePeriod"},
		}},
	}
	msg, err := p.exec.WebhookExecute(p.webhookID, p.token, true, params, discordgo.WithContext(ctx))
	if err != nil {
		p.log.Error("discord webhook failed", "err", err)
		return "", fmt.Errorf("publish: %w", err)
	}
	if msg == nil {
		return "", nil
	}
	p.log.Info("shared to discord", "message_id", msg.ID)
	return msg.ID, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
