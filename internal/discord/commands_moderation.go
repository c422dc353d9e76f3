package discord

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage/model"
	"github.com/revampbot/revampbot/internal/util"
)

const maxClear = 100

// moderationTarget parses "@member [reason]" arguments.
func (c *commandContext) moderationTarget() (model.Snowflake, string, error) {
	if len(c.args) == 0 {
		return 0, "", errUsage
	}
	target, ok := util.ParseMention(c.args[0])
	if !ok {
		return 0, "", errUsage
	}
	return target, restAfter(c.rest, 1), nil
}

func reasonText(reason string) string {
	if reason == "" {
		return "None"
	}
	return reason
}

// recordAction appends to the moderation log and mirrors the entry into the guild's log channel. A
// failure to record never undoes the action itself.
func (d *Discord) recordAction(c *commandContext, action model.ModerationAction, target model.Snowflake, reason string) {
	if err := d.storage.LogModerationAction(c.ctx, c.guildID, c.authorID, target, action, reason); err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to log %s action in guild %d: %s.", action, c.guildID, err)
		}
	}

	cfg, err := d.storage.GuildConfig(c.ctx, c.guildID)
	if err != nil || cfg == nil || cfg.LogChannel == 0 {
		return
	}
	desc := fmt.Sprintf("**%s** by %s", action, userMention(c.authorID))
	if target != 0 {
		desc += " on " + userMention(target)
	}
	d.sendEmbed(util.FormatSnowflake(cfg.LogChannel), &discordgo.MessageEmbed{
		Title:       "🛡️ Moderation",
		Description: desc,
		Color:       colorOrange,
		Fields:      []*discordgo.MessageEmbedField{{Name: "Reason", Value: truncate(reasonText(reason), maxFieldLength)}},
	})
}

func (d *Discord) cmdKick(c *commandContext) error {
	target, reason, err := c.moderationTarget()
	if err != nil {
		return err
	}
	if err := d.api.GuildMemberDeleteWithReason(c.msg.GuildID, util.FormatSnowflake(target), reason); err != nil {
		d.logger.Errorf("Failed to kick user %d from guild %d: %s.", target, c.guildID, err)
		d.reply(c, "❌ I couldn't kick that member.")
		return nil
	}
	d.recordAction(c, model.ActionKick, target, reason)
	d.reply(c, fmt.Sprintf("%s has been kicked. Reason: %s", userMention(target), reasonText(reason)))
	return nil
}

func (d *Discord) cmdBan(c *commandContext) error {
	target, reason, err := c.moderationTarget()
	if err != nil {
		return err
	}
	if err := d.api.GuildBanCreateWithReason(c.msg.GuildID, util.FormatSnowflake(target), reason, 0); err != nil {
		d.logger.Errorf("Failed to ban user %d from guild %d: %s.", target, c.guildID, err)
		d.reply(c, "❌ I couldn't ban that member.")
		return nil
	}
	d.recordAction(c, model.ActionBan, target, reason)
	d.reply(c, fmt.Sprintf("%s has been banned. Reason: %s", userMention(target), reasonText(reason)))
	return nil
}

func (d *Discord) cmdClear(c *commandContext) error {
	if len(c.args) != 1 {
		return errUsage
	}
	amount, err := strconv.Atoi(c.args[0])
	if err != nil || amount < 1 || amount > maxClear {
		return errUsage
	}

	// the command message itself goes too
	limit := amount + 1
	if limit > maxClear {
		limit = maxClear
	}
	msgs, err := d.api.ChannelMessages(c.msg.ChannelID, limit, "", "", "")
	if err != nil {
		return fmt.Errorf("fetch messages: %w", err)
	}
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	switch len(ids) {
	case 0:
	case 1:
		err = d.api.ChannelMessageDelete(c.msg.ChannelID, ids[0])
	default:
		err = d.api.ChannelMessagesBulkDelete(c.msg.ChannelID, ids)
	}
	if err != nil {
		d.logger.Errorf("Failed to clear messages in channel %d: %s.", c.channelID, err)
		d.reply(c, "❌ I couldn't delete those messages. Messages older than two weeks can't be bulk deleted.")
		return nil
	}

	deleted := 0
	for _, id := range ids {
		if id != c.msg.ID {
			deleted++
		}
	}
	if deleted > amount {
		deleted = amount
	}
	d.recordAction(c, model.ActionClear, 0, fmt.Sprintf("%d messages in %s", deleted, channelMention(c.channelID)))
	d.reply(c, fmt.Sprintf("Cleared %d messages.", deleted))
	return nil
}

func (d *Discord) cmdWarn(c *commandContext) error {
	target, reason, err := c.moderationTarget()
	if err != nil {
		return err
	}
	if target == c.authorID {
		d.reply(c, "❌ You can't warn yourself.")
		return nil
	}
	if _, err := d.storage.AddWarning(c.ctx, target, c.guildID, c.authorID, reason); err != nil {
		return err
	}
	d.recordAction(c, model.ActionWarn, target, reason)

	warnings, err := d.storage.UserWarnings(c.ctx, target, c.guildID)
	if err != nil {
		return err
	}
	d.reply(c, fmt.Sprintf("⚠️ %s has been warned (%d active). Reason: %s", userMention(target), len(warnings), reasonText(reason)))
	return nil
}

func (d *Discord) cmdWarnings(c *commandContext) error {
	target, ok := c.targetUser()
	if !ok {
		return errUsage
	}
	warnings, err := d.storage.UserWarnings(c.ctx, target, c.guildID)
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		d.reply(c, fmt.Sprintf("%s has no active warnings.", userMention(target)))
		return nil
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚠️ %d active warnings", len(warnings)),
		Description: userMention(target) + "\n" + joinLines(warningLines(warnings)),
		Color:       colorOrange,
	})
	return nil
}

func (d *Discord) cmdModlog(c *commandContext) error {
	limit := 0
	if len(c.args) > 0 {
		n, err := strconv.Atoi(c.args[0])
		if err != nil || n < 1 {
			return errUsage
		}
		limit = n
	}
	logs, err := d.storage.ModerationLogs(c.ctx, c.guildID, limit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		d.reply(c, "No moderation actions recorded yet.")
		return nil
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:       "🛡️ Moderation log",
		Description: joinLines(moderationLogLines(logs)),
		Color:       colorOrange,
	})
	return nil
}
