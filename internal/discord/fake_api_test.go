package discord

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/revampbot/revampbot/internal/leveling"
	"github.com/revampbot/revampbot/internal/storage"
)

type fakeAPI struct {
	mu sync.Mutex

	perms    int64
	permsErr error
	nextID   int

	sent      []string
	embeds    []*discordgo.MessageEmbed
	reactions []string

	kicked  []string
	banned  []string
	failMod error

	history []*discordgo.Message
	deleted []string

	channels     []*discordgo.Channel
	roles        []*discordgo.Role
	createdChans []discordgo.GuildChannelCreateData
	createdRoles []string
}

func (f *fakeAPI) id() string {
	f.nextID++
	return fmt.Sprintf("%d", 9000+f.nextID)
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: f.id(), ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: f.id(), ChannelID: channelID}, nil
}

func (f *fakeAPI) ChannelMessages(_ string, limit int, _, _, _ string) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.history) {
		limit = len(f.history)
	}
	return f.history[:limit], nil
}

func (f *fakeAPI) ChannelMessageDelete(_, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeAPI) ChannelMessagesBulkDelete(_ string, messages []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messages...)
	return nil
}

func (f *fakeAPI) MessageReactionAdd(_, _, emojiID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeAPI) UserChannelPermissions(_, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perms, f.permsErr
}

func (f *fakeAPI) GuildMemberDeleteWithReason(_, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMod != nil {
		return f.failMod
	}
	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeAPI) GuildBanCreateWithReason(_, userID, _ string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMod != nil {
		return f.failMod
	}
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeAPI) GuildChannels(_ string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels, nil
}

func (f *fakeAPI) GuildChannelCreateComplex(_ string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdChans = append(f.createdChans, data)
	return &discordgo.Channel{ID: f.id(), Name: data.Name, Type: data.Type, ParentID: data.ParentID}, nil
}

func (f *fakeAPI) GuildRoles(_ string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, nil
}

func (f *fakeAPI) GuildRoleCreate(_ string) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &discordgo.Role{ID: f.id(), Name: "new role"}, nil
}

func (f *fakeAPI) GuildRoleEdit(_, roleID, name string, color int, _ bool, _ int64, _ bool) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRoles = append(f.createdRoles, name)
	return &discordgo.Role{ID: roleID, Name: name, Color: color}, nil
}

func (f *fakeAPI) lastSent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastEmbed() *discordgo.MessageEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.embeds) == 0 {
		return nil
	}
	return f.embeds[len(f.embeds)-1]
}

var errFake = errors.New("discord said no")

func newTestDiscord(t *testing.T) (*Discord, *fakeAPI, *storage.Storage) {
	t.Helper()
	s := storage.NewStorage(zap.NewNop())
	require.NoError(t, s.Connect(filepath.Join(t.TempDir(), "discord.db")))
	require.NoError(t, s.InitSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	api := &fakeAPI{}
	tracker := leveling.NewTracker(zap.NewNop(), s, leveling.Config{MaxXPPerMessage: 1})
	d := newDiscord(context.Background(), zap.NewNop(), api, NewConfig("!", []uint64{555}, nil), s, tracker)
	return d, api, s
}

func message(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "700",
		GuildID:   "1",
		ChannelID: "10",
		Content:   content,
		Author:    &discordgo.User{ID: "100"},
	}
}

func atomicFalse() *atomic.Bool {
	return atomic.NewBool(false)
}
