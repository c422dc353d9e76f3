package discord

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage/model"
	"github.com/revampbot/revampbot/internal/util"
)

func (d *Discord) cmdHelp(c *commandContext) error {
	if len(c.args) > 0 {
		name := strings.TrimPrefix(strings.ToLower(c.args[0]), d.config.prefix)
		cmd, ok := d.commands[name]
		if !ok {
			d.reply(c, fmt.Sprintf("Unknown command `%s`.", name))
			return nil
		}
		d.replyEmbed(c, &discordgo.MessageEmbed{
			Title:       d.config.prefix + cmd.name,
			Description: cmd.description,
			Color:       colorBlue,
			Fields:      []*discordgo.MessageEmbedField{{Name: "Usage", Value: "`" + d.config.prefix + cmd.usage + "`"}},
		})
		return nil
	}
	d.replyEmbed(c, helpEmbed(d.config.prefix, d.commands))
	return nil
}

func (d *Discord) latency() time.Duration {
	if d.session == nil {
		return 0
	}
	return d.session.HeartbeatLatency()
}

func (d *Discord) guildCount() int {
	if d.session == nil || d.session.State == nil {
		return 0
	}
	d.session.State.RLock()
	defer d.session.State.RUnlock()
	return len(d.session.State.Guilds)
}

func (d *Discord) cmdPing(c *commandContext) error {
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:       "🏓 Pong!",
		Description: fmt.Sprintf("Bot latency: %dms", d.latency().Milliseconds()),
		Color:       colorGreen,
	})
	return nil
}

func (d *Discord) cmdInfo(c *commandContext) error {
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title: "🤖 RevampBot Information",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: Version, Inline: true},
			{Name: "Servers", Value: fmt.Sprint(d.guildCount()), Inline: true},
			{Name: "Uptime", Value: formatDuration(time.Since(d.started)), Inline: true},
			{Name: "Language", Value: runtime.Version(), Inline: true},
			{Name: "Library", Value: "discordgo " + discordgo.VERSION, Inline: true},
			{Name: "Latency", Value: fmt.Sprintf("%dms", d.latency().Milliseconds()), Inline: true},
		},
	})
	return nil
}

func (d *Discord) cmdConfig(c *commandContext) error {
	cfg, err := d.storage.GuildConfig(c.ctx, c.guildID)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = model.DefaultGuildConfig()
	}
	if len(c.args) == 0 {
		d.replyEmbed(c, configEmbed(cfg))
		return nil
	}
	if err := applyConfigSetting(cfg, strings.ToLower(c.args[0]), c.args[1:]); err != nil {
		d.reply(c, "❌ "+err.Error())
		return nil
	}
	if err := d.storage.SetGuildConfig(c.ctx, c.guildID, cfg); err != nil {
		return err
	}
	d.reply(c, fmt.Sprintf("✅ Updated `%s`.", strings.ToLower(c.args[0])))
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// parseChannelSetting accepts a channel mention, a bare ID or "none" to unset.
func parseChannelSetting(s string) (model.Snowflake, error) {
	if strings.EqualFold(s, "none") {
		return 0, nil
	}
	id, ok := util.ParseMention(s)
	if !ok {
		return 0, fmt.Errorf("expected a channel, got %q", s)
	}
	return id, nil
}

// applyConfigSetting changes one key of cfg. Keys use the names shown by the config command.
func applyConfigSetting(cfg *model.GuildConfig, key string, values []string) error {
	if key == "auto_roles" {
		roles := make([]model.Snowflake, 0, len(values))
		for _, v := range values {
			if strings.EqualFold(v, "none") {
				continue
			}
			id, ok := util.ParseMention(v)
			if !ok {
				return fmt.Errorf("expected roles, got %q", v)
			}
			roles = append(roles, id)
		}
		cfg.AutoRoles = roles
		return nil
	}

	if len(values) != 1 {
		return fmt.Errorf("`%s` takes exactly one value", key)
	}
	v := values[0]
	var err error
	switch key {
	case "welcome_channel":
		cfg.WelcomeChannel, err = parseChannelSetting(v)
	case "log_channel":
		cfg.LogChannel, err = parseChannelSetting(v)
	case "level_up_notifications":
		cfg.LevelUpNotifications, err = parseSwitch(v)
	case "auto_setup":
		cfg.AutoSetup, err = parseSwitch(v)
	case "auto_mod":
		cfg.Moderation.AutoMod, err = parseSwitch(v)
	case "spam_detection":
		cfg.Moderation.SpamDetection, err = parseSwitch(v)
	case "invite_filtering":
		cfg.Moderation.InviteFiltering, err = parseSwitch(v)
	default:
		return fmt.Errorf("unknown setting `%s`", key)
	}
	return err
}
