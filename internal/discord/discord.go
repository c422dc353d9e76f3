package discord

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/revampbot/revampbot/internal/leveling"
	"github.com/revampbot/revampbot/internal/storage"
)

const Version = "2.1"

type Config struct {
	prefix         string
	ignoredChans   *Uint64Set
	ignoreRegexp   *regexp.Regexp
	maintenanceInt time.Duration
	rsvpRetention  time.Duration
}

func NewConfig(prefix string, ignoredChannels []uint64, ignoreRegexp *regexp.Regexp) *Config {
	return &Config{
		prefix:         prefix,
		ignoredChans:   NewUint64Set(ignoredChannels),
		ignoreRegexp:   ignoreRegexp,
		maintenanceInt: 24 * time.Hour,
		rsvpRetention:  30 * 24 * time.Hour,
	}
}

// discordAPI is the subset of the REST client the bot calls. *discordgo.Session implements it.
type discordAPI interface {
	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string) error
	ChannelMessagesBulkDelete(channelID string, messages []string) error
	MessageReactionAdd(channelID, messageID, emojiID string) error
	UserChannelPermissions(userID, channelID string) (int64, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int) error
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string) (*discordgo.Role, error)
	GuildRoleEdit(guildID, roleID, name string, color int, hoist bool, perm int64, mention bool) (*discordgo.Role, error)
}

type Discord struct {
	ctx     context.Context
	logger  *zap.SugaredLogger
	session *discordgo.Session
	api     discordAPI
	config  *Config
	storage *storage.Storage
	tracker *leveling.Tracker

	commands map[string]*command
	setups   *cache.Cache
	started  time.Time
	wg       sync.WaitGroup
}

// intentMessageContent is the privileged MESSAGE_CONTENT intent, which discordgo v0.23 has no name for.
// Without it guild messages arrive with empty content.
const intentMessageContent discordgo.Intent = 1 << 15

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions | intentMessageContent

func NewDiscord(ctx context.Context, log *zap.Logger, token string, config *Config, store *storage.Storage, tracker *leveling.Tracker) (*Discord, error) {
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	s, err := discordgo.New(token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = intents
	d := newDiscord(ctx, log, s, config, store, tracker)
	d.session = s
	return d, nil
}

func newDiscord(ctx context.Context, log *zap.Logger, api discordAPI, config *Config, store *storage.Storage, tracker *leveling.Tracker) *Discord {
	d := &Discord{
		ctx:     ctx,
		logger:  log.Sugar(),
		api:     api,
		config:  config,
		storage: store,
		tracker: tracker,
		started: time.Now(),
	}
	d.commands = d.registerCommands()
	d.setups = newSetupCache(d.onSetupExpired)
	return d
}

func (d *Discord) addHandlers() {
	d.session.AddHandlerOnce(d.onReady)
	d.session.AddHandler(d.onGuildCreate)
	d.session.AddHandler(d.onMessageCreate)
	d.session.AddHandler(d.onMessageReactionAdd)
}

func (d *Discord) Connect() error {
	d.addHandlers()
	if err := d.session.Open(); err != nil {
		return err
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runMaintenance()
	}()
	return nil
}

// Close disconnects from the gateway. The maintenance loop exits with the context passed to NewDiscord.
func (d *Discord) Close() error {
	err := d.session.Close()
	d.wg.Wait()
	return err
}
