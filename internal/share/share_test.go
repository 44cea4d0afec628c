package share

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	gotID, gotToken string
	got             *discordgo.WebhookParams
	err             error
}

func (f *fakeExec) WebhookExecute(webhookID, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.gotID, f.gotToken, f.got = webhookID, token, data
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "m-1"}, nil
}

func TestNewDiscordPublisherRequiresCredentials(t *testing.T) {
	_, err := NewDiscordPublisher("", "tok", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewDiscordPublisher("123", " ", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, err := NewDiscordPublisher("123", "tok", nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPublish(t *testing.T) {
	fake := &fakeExec{}
	p := newPublisher(fake, "123", "tok", nil)

	id, err := p.Publish(context.Background(), Post{Title: "Day 12", Text: "survived", URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
	assert.Equal(t, "123", fake.gotID)
	assert.Equal(t, "tok", fake.gotToken)
	require.Len(t, fake.got.Embeds, 1)
	assert.Equal(t, "survived", fake.got.Embeds[0].Description)
	assert.Equal(t, "Day 12", fake.got.Embeds[0].Title)
}

func TestPublishErrors(t *testing.T) {
	var nilPub *Publisher
	_, err := nilPub.Publish(context.Background(), Post{Text: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	p := newPublisher(&fakeExec{}, "1", "t", nil)
	_, err = p.Publish(context.Background(), Post{Text: "  "})
	assert.Error(t, err)

	boom := errors.New("429")
	p = newPublisher(&fakeExec{err: boom}, "1", "t", nil)
	_, err = p.Publish(context.Background(), Post{Text: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 3000)
	assert.Len(t, []rune(truncate(long, maxContentLen)), maxContentLen)
	assert.Equal(t, "short", truncate("short", 10))
}
