package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDiscordIntents(t *testing.T) {
	d, err := NewDiscord(context.Background(), zap.NewNop(), "token", NewConfig("!", nil, nil), nil, nil)
	require.NoError(t, err)

	got := d.session.Identify.Intents
	assert.Equal(t, intentMessageContent, got&intentMessageContent, "message content")
	for _, want := range []discordgo.Intent{discordgo.IntentsGuilds, discordgo.IntentsGuildMessages, discordgo.IntentsGuildMessageReactions} {
		assert.Equal(t, want, got&want)
	}
	assert.Equal(t, "Bot token", d.session.Token)
}
