package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage/model"
	"github.com/revampbot/revampbot/internal/util"
)

func (d *Discord) shouldLogError(err error) bool {
	return !(err == nil || errors.Is(err, context.Canceled))
}

func (d *Discord) onReady(s *discordgo.Session, e *discordgo.Ready) {
	d.logger.Infof("Logged in Discord API as %s.", e.User)
	d.logger.Infof("Connected to %d guilds.", len(e.Guilds))
	d.updatePresence(s, len(e.Guilds))
}

func (d *Discord) updatePresence(s *discordgo.Session, guilds int) {
	if s == nil {
		return
	}
	if err := s.UpdateGameStatus(0, fmt.Sprintf("%d servers | %shelp", guilds, d.config.prefix)); err != nil {
		d.logger.Errorf("Failed to update presence: %s.", err)
	}
}

// onGuildCreate stores the default configuration for guilds that have none. Discord sends this event for
// every guild at startup, so guilds that are already configured are left untouched.
func (d *Discord) onGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	if e.Guild == nil || e.Unavailable {
		return
	}
	d.ensureGuildConfig(e.Guild)
}

func (d *Discord) ensureGuildConfig(g *discordgo.Guild) {
	guildID, err := util.ParseSnowflake(g.ID)
	if err != nil {
		d.logger.Errorf("Failed to parse guild ID: %s.", err)
		return
	}

	cfg, err := d.storage.GuildConfig(d.ctx, guildID)
	if err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to load configuration of guild %d: %s.", guildID, err)
		}
		return
	}
	if cfg != nil {
		return
	}

	d.logger.Infof("Joined new guild %s (ID: %d), storing default configuration.", g.Name, guildID)
	if err := d.storage.SetGuildConfig(d.ctx, guildID, model.DefaultGuildConfig()); err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to create default config for guild %d: %s.", guildID, err)
		}
		return
	}

	if g.SystemChannelID != "" {
		d.sendEmbed(g.SystemChannelID, welcomeEmbed(d.config.prefix))
	}
}

func (d *Discord) onMessageCreate(_ *discordgo.Session, e *discordgo.MessageCreate) {
	d.handleMessage(e.Message)
}

func (d *Discord) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if d.maybeRunCommand(m) {
		return
	}
	d.maybeAwardXP(m)
}

func (d *Discord) onMessageReactionAdd(_ *discordgo.Session, e *discordgo.MessageReactionAdd) {
	if e.MessageReaction == nil {
		return
	}
	d.handleSetupReaction(e.MessageReaction)
}

func (d *Discord) send(channelID, content string) {
	if _, err := d.api.ChannelMessageSend(channelID, content); err != nil {
		d.logger.Errorf("Failed to send message to channel %s: %s.", channelID, err)
	}
}

func (d *Discord) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := d.api.ChannelMessageSendEmbed(channelID, embed); err != nil {
		d.logger.Errorf("Failed to send embed to channel %s: %s.", channelID, err)
	}
}
