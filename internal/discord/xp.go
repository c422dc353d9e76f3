package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/util"
)

// shouldAwardXP filters messages that never earn XP.
func (d *Discord) shouldAwardXP(m *discordgo.Message) bool {
	chanID, err := util.ParseSnowflake(m.ChannelID)
	if err != nil {
		return false
	}
	if d.config.ignoredChans.Contains(chanID) {
		d.logger.Debugf("Not awarding XP for message %s in ignored channel.", m.ID)
		return false
	}
	if d.config.ignoreRegexp != nil && d.config.ignoreRegexp.MatchString(m.Content) {
		d.logger.Debugf("Not awarding XP for message %s that matches ignore pattern.", m.ID)
		return false
	}
	return true
}

func (d *Discord) maybeAwardXP(m *discordgo.Message) {
	if d.tracker == nil || !d.shouldAwardXP(m) {
		return
	}
	guildID, gerr := util.ParseSnowflake(m.GuildID)
	userID, uerr := util.ParseSnowflake(m.Author.ID)
	if gerr != nil || uerr != nil {
		return
	}

	award, ok, err := d.tracker.Award(d.ctx, guildID, userID)
	if err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to award XP to user %d in guild %d: %s.", userID, guildID, err)
		}
		return
	}
	if !ok || !award.LeveledUp() {
		return
	}

	cfg, err := d.storage.GuildConfig(d.ctx, guildID)
	if err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to load configuration of guild %d: %s.", guildID, err)
		}
		return
	}
	if cfg != nil && !cfg.LevelUpNotifications {
		return
	}
	d.send(m.ChannelID, fmt.Sprintf("🎉 %s reached level **%d**!", userMention(userID), award.Level))
}
