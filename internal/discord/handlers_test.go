package discord

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revampbot/revampbot/internal/storage/model"
)

func TestWarnCommand(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionKickMembers
	ctx := context.Background()

	d.handleMessage(message("!warn <@200> spamming links"))

	warnings, err := s.UserWarnings(ctx, 200, 1)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "spamming links", warnings[0].Reason)
	assert.Equal(t, model.Snowflake(100), warnings[0].ModeratorID)
	assert.Contains(t, api.lastSent(), "(1 active)")

	logs, err := s.ModerationLogs(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionWarn, logs[0].Action)
	assert.Equal(t, model.Snowflake(200), logs[0].TargetUserID)

	d.handleMessage(message("!warnings <@200>"))
	e := api.lastEmbed()
	require.NotNil(t, e)
	assert.Contains(t, e.Description, "spamming links")

	d.handleMessage(message("!warn"))
	assert.Contains(t, api.lastSent(), "Usage: `!warn @member [reason]`")
	d.handleMessage(message("!warn <@100> me"))
	assert.Contains(t, api.lastSent(), "can't warn yourself")
}

func TestCommandPermissionDenied(t *testing.T) {
	d, api, s := newTestDiscord(t)

	d.handleMessage(message("!kick <@200> bye"))
	assert.Contains(t, api.lastSent(), "permission")
	assert.Empty(t, api.kicked)

	logs, err := s.ModerationLogs(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)

	api.permsErr = errFake
	api.perms = discordgo.PermissionAdministrator
	d.handleMessage(message("!kick <@200> bye"))
	assert.Empty(t, api.kicked)
}

func TestKickAndBan(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator

	d.handleMessage(message("!kick <@!200> being rude"))
	assert.Equal(t, []string{"200"}, api.kicked)
	assert.Equal(t, "<@200> has been kicked. Reason: being rude", api.lastSent())

	d.handleMessage(message("!ban <@201>"))
	assert.Equal(t, []string{"201"}, api.banned)
	assert.Equal(t, "<@201> has been banned. Reason: None", api.lastSent())

	api.failMod = errFake
	d.handleMessage(message("!ban <@202>"))
	assert.Contains(t, api.lastSent(), "couldn't ban")

	logs, err := s.ModerationLogs(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionBan, logs[0].Action)
	assert.Equal(t, model.ActionKick, logs[1].Action)
	assert.Equal(t, "being rude", logs[1].Reason)
}

func TestModerationMirroredToLogChannel(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator
	cfg := model.DefaultGuildConfig()
	cfg.LogChannel = 77
	require.NoError(t, s.SetGuildConfig(context.Background(), 1, cfg))

	d.handleMessage(message("!warn <@200> off topic"))
	require.Len(t, api.embeds, 1)
	assert.Contains(t, api.embeds[0].Description, "**warn** by <@100> on <@200>")
	assert.Equal(t, "off topic", api.embeds[0].Fields[0].Value)
}

func TestClearCommand(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionManageMessages
	for i := 0; i < 10; i++ {
		api.history = append(api.history, &discordgo.Message{ID: fmt.Sprint(i)})
	}

	d.handleMessage(message("!clear 5"))
	assert.Len(t, api.deleted, 6)
	assert.Equal(t, "Cleared 5 messages.", api.lastSent())

	for _, bad := range []string{"!clear", "!clear 0", "!clear 101", "!clear lots"} {
		d.handleMessage(message(bad))
		assert.Contains(t, api.lastSent(), "Usage", bad)
	}

	logs, err := s.ModerationLogs(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionClear, logs[0].Action)
	assert.Zero(t, logs[0].TargetUserID)
}

func TestClearCountsOnlyOtherMessages(t *testing.T) {
	d, api, _ := newTestDiscord(t)
	api.perms = discordgo.PermissionManageMessages
	// the newest message in the channel is the command itself
	api.history = append(api.history, &discordgo.Message{ID: "700"})
	for i := 0; i < 150; i++ {
		api.history = append(api.history, &discordgo.Message{ID: fmt.Sprint(i)})
	}

	d.handleMessage(message("!clear 100"))
	assert.Len(t, api.deleted, 100)
	assert.Contains(t, api.deleted, "700")
	assert.Equal(t, "Cleared 99 messages.", api.lastSent())

	api.deleted = nil
	api.history = api.history[:4]
	d.handleMessage(message("!clear 10"))
	assert.Len(t, api.deleted, 4)
	assert.Equal(t, "Cleared 3 messages.", api.lastSent())
}

func TestCustomCommandLifecycle(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator

	d.handleMessage(message("!addcmd Rules Be nice to each other."))
	assert.Equal(t, "✅ Added `!rules`.", api.lastSent())

	d.handleMessage(message("!rules"))
	assert.Equal(t, "Be nice to each other.", api.lastSent())

	d.handleMessage(message("!addcmd rules Something else"))
	assert.Contains(t, api.lastSent(), "already exists")
	d.handleMessage(message("!addcmd ping pong"))
	assert.Contains(t, api.lastSent(), "built-in")
	d.handleMessage(message("!addcmd lonely"))
	assert.Contains(t, api.lastSent(), "Usage")

	d.handleMessage(message("!cmds"))
	e := api.lastEmbed()
	require.NotNil(t, e)
	assert.Contains(t, e.Description, "`!rules` by <@100>")

	// custom commands do not earn XP
	u, err := s.UserXP(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUnknownCommandEarnsXP(t *testing.T) {
	d, api, s := newTestDiscord(t)
	d.handleMessage(message("!nothing here"))
	assert.Empty(t, api.sent)

	u, err := s.UserXP(context.Background(), 100, 1)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(1), u.XP)
}

func TestXPFilters(t *testing.T) {
	d, _, s := newTestDiscord(t)
	ctx := context.Background()

	ignored := message("hello")
	ignored.ChannelID = "555"
	d.handleMessage(ignored)

	bot := message("beep")
	bot.Author.Bot = true
	d.handleMessage(bot)

	dm := message("hi")
	dm.GuildID = ""
	d.handleMessage(dm)

	u, err := s.UserXP(ctx, 100, 1)
	require.NoError(t, err)
	assert.Nil(t, u)

	d.handleMessage(message("hello"))
	d.handleMessage(message("hello again"))
	u, err = s.UserXP(ctx, 100, 1)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(2), u.XP)
	assert.Equal(t, int64(2), u.TotalMessages)
}

func TestLevelUpNotification(t *testing.T) {
	d, api, s := newTestDiscord(t)
	ctx := context.Background()
	require.NoError(t, s.UpdateUserXP(ctx, 100, 1, 99, 1))

	d.handleMessage(message("hello"))
	assert.Equal(t, "🎉 <@100> reached level **2**!", api.lastSent())

	u, err := s.UserXP(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Level)

	cfg := model.DefaultGuildConfig()
	cfg.LevelUpNotifications = false
	require.NoError(t, s.SetGuildConfig(ctx, 1, cfg))
	require.NoError(t, s.UpdateUserXP(ctx, 100, 1, 399, 2))
	sent := len(api.sent)
	d.handleMessage(message("hello"))
	assert.Len(t, api.sent, sent)

	u, err = s.UserXP(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Level)
}

func TestRankAndLeaderboard(t *testing.T) {
	d, api, s := newTestDiscord(t)
	ctx := context.Background()

	d.handleMessage(message("!rank"))
	assert.Contains(t, api.lastSent(), "hasn't earned any XP")
	d.handleMessage(message("!leaderboard"))
	assert.Equal(t, "Nobody has earned XP here yet.", api.lastSent())

	require.NoError(t, s.UpdateUserXP(ctx, 100, 1, 250, 2))
	require.NoError(t, s.UpdateUserXP(ctx, 200, 1, 500, 3))

	d.handleMessage(message("!rank <@200>"))
	e := api.lastEmbed()
	require.NotNil(t, e)
	assert.Equal(t, "<@200>", e.Description)
	assert.Equal(t, "3", e.Fields[0].Value)

	d.handleMessage(message("!leaderboard"))
	e = api.lastEmbed()
	assert.Equal(t, "🥇 <@200> - level 3, 500 XP\n🥈 <@100> - level 2, 250 XP", e.Description)

	d.handleMessage(message("!leaderboard many"))
	assert.Contains(t, api.lastSent(), "Usage")
}

func TestConfigCommand(t *testing.T) {
	d, api, s := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator
	ctx := context.Background()

	d.handleMessage(message("!config"))
	e := api.lastEmbed()
	require.NotNil(t, e)
	assert.Equal(t, "⚙️ Server Configuration", e.Title)

	d.handleMessage(message("!config log_channel <#77>"))
	assert.Equal(t, "✅ Updated `log_channel`.", api.lastSent())
	cfg, err := s.GuildConfig(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, model.Snowflake(77), cfg.LogChannel)
	assert.True(t, cfg.LevelUpNotifications)

	d.handleMessage(message("!config volume 11"))
	assert.Contains(t, api.lastSent(), "unknown setting")
}

func TestShowcaseCommands(t *testing.T) {
	d, api, s := newTestDiscord(t)

	d.handleMessage(message("!showcases"))
	assert.Contains(t, api.lastSent(), "No projects yet")

	d.handleMessage(message("!showcase RevampBot | https://example.com | A bot | go"))
	e := api.lastEmbed()
	require.NotNil(t, e)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "RevampBot", e.Fields[0].Name)

	projects, err := s.Showcases(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, model.Snowflake(100), projects[0].UserID)

	d.handleMessage(message("!showcase Thing | not a link"))
	assert.Contains(t, api.lastSent(), "not a valid link")

	d.handleMessage(message("!showcases"))
	e = api.lastEmbed()
	require.Len(t, e.Fields, 1)
	assert.Contains(t, e.Fields[0].Value, "https://example.com")
}

func TestRSVPCommands(t *testing.T) {
	d, api, s := newTestDiscord(t)

	d.handleMessage(message(`!rsvp "Game Night" maybe 2024-06-01`))
	assert.Equal(t, "✅ RSVP recorded: **maybe** for *Game Night*.", api.lastSent())

	other := message(`!rsvp "Game Night"`)
	other.Author.ID = "101"
	d.handleMessage(other)

	d.handleMessage(message(`!rsvp "Game Night" someday`))
	assert.Contains(t, api.lastSent(), "going, maybe or declined")

	rsvps, err := s.EventRSVPs(context.Background(), 1, "Game Night")
	require.NoError(t, err)
	require.Len(t, rsvps, 2)
	require.NotNil(t, rsvps[0].EventDate)

	d.handleMessage(message(`!rsvps "Game Night"`))
	e := api.lastEmbed()
	require.NotNil(t, e)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "going (1)", e.Fields[0].Name)
	assert.Equal(t, "<@101>", e.Fields[0].Value)
	assert.Equal(t, "maybe (1)", e.Fields[1].Name)
	assert.Equal(t, "declined (0)", e.Fields[2].Name)

	d.handleMessage(message(`!rsvps "Nothing"`))
	assert.Contains(t, api.lastSent(), "Nobody has responded")
}

func TestEnsureGuildConfig(t *testing.T) {
	d, api, s := newTestDiscord(t)
	ctx := context.Background()

	d.ensureGuildConfig(&discordgo.Guild{ID: "1", Name: "Test", SystemChannelID: "5"})
	cfg, err := s.GuildConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGuildConfig(), cfg)
	require.Len(t, api.embeds, 1)
	assert.Equal(t, "👋 Welcome to RevampBot!", api.embeds[0].Title)

	cfg.LogChannel = 9
	require.NoError(t, s.SetGuildConfig(ctx, 1, cfg))
	d.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "1", SystemChannelID: "5"}})
	cfg, err = s.GuildConfig(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.Snowflake(9), cfg.LogChannel)
	assert.Len(t, api.embeds, 1)

	d.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "2", Unavailable: true}})
	cfg, err = s.GuildConfig(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func pendingPromptID(t *testing.T, d *Discord) string {
	t.Helper()
	items := d.setups.Items()
	require.Len(t, items, 1)
	for k := range items {
		return k
	}
	return ""
}

func TestSetupWizard(t *testing.T) {
	d, api, _ := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator
	api.channels = []*discordgo.Channel{
		{ID: "c1", Name: "🏠 Community", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "t1", Name: "🏠・general", Type: discordgo.ChannelTypeGuildText},
	}
	api.roles = []*discordgo.Role{{ID: "r1", Name: "Member"}}

	d.handleMessage(message("!setup"))
	assert.Equal(t, []string{emojiConfirm, emojiCancel}, api.reactions)
	id := pendingPromptID(t, d)

	// someone else reacting does nothing
	d.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "999", MessageID: id, Emoji: discordgo.Emoji{Name: emojiConfirm},
	}})
	assert.Empty(t, api.createdChans)

	d.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "100", MessageID: id, Emoji: discordgo.Emoji{Name: emojiConfirm},
	}})
	// 3 new categories, 13 missing text channels
	assert.Len(t, api.createdChans, 16)
	assert.Equal(t, []string{"Web Dev", "ML/AI Enthusiast", "Community Helper"}, api.createdRoles)
	for _, c := range api.createdChans {
		if c.Name == "🥤・lounge" {
			assert.Equal(t, "c1", c.ParentID)
		}
	}
	e := api.lastEmbed()
	require.NotNil(t, e)
	assert.Equal(t, "🎉 Setup Completed!", e.Title)
	assert.Empty(t, d.setups.Items())

	// a late second reaction is ignored
	d.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "100", MessageID: id, Emoji: discordgo.Emoji{Name: emojiConfirm},
	}})
	assert.Len(t, api.createdChans, 16)
}

func TestSetupWizardCancel(t *testing.T) {
	d, api, _ := newTestDiscord(t)
	api.perms = discordgo.PermissionAdministrator

	d.handleMessage(message("!setup"))
	id := pendingPromptID(t, d)
	d.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "100", MessageID: id, Emoji: discordgo.Emoji{Name: emojiCancel},
	}})
	assert.Equal(t, "Setup cancelled.", api.lastSent())
	assert.Empty(t, api.createdChans)
	assert.NotContains(t, api.sent, "Setup timed out.")
}

func TestSetupWizardTimeout(t *testing.T) {
	d, api, _ := newTestDiscord(t)
	d.setups.Set("42", &pendingSetup{guildID: "1", channelID: "10", authorID: "100", resolved: atomicFalse()}, 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	d.setups.DeleteExpired()
	assert.Equal(t, "Setup timed out.", api.lastSent())

	d.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "100", MessageID: "42", Emoji: discordgo.Emoji{Name: emojiConfirm},
	}})
	assert.Empty(t, api.createdChans)
}

func TestMaintenancePrunesRSVPs(t *testing.T) {
	d, _, s := newTestDiscord(t)
	ctx := context.Background()
	r := &model.EventRSVP{UserID: 1, EventName: "Old Meetup"}
	r.GuildID = 1
	_, err := s.AddRSVP(ctx, r)
	require.NoError(t, err)

	d.maintain()
	rsvps, err := s.EventRSVPs(ctx, 1, "Old Meetup")
	require.NoError(t, err)
	assert.Len(t, rsvps, 1)

	// a negative retention puts the cutoff in the future
	d.config.rsvpRetention = -time.Hour
	d.maintain()
	rsvps, err = s.EventRSVPs(ctx, 1, "Old Meetup")
	require.NoError(t, err)
	assert.Empty(t, rsvps)
}

func TestMaintenanceLoopStops(t *testing.T) {
	d, _, _ := newTestDiscord(t)
	ctx, cancel := context.WithCancel(context.Background())
	d.ctx = ctx
	d.config.maintenanceInt = time.Millisecond

	done := make(chan struct{})
	go func() {
		d.runMaintenance()
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop")
	}
}
