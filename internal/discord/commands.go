package discord

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage/model"
	"github.com/revampbot/revampbot/internal/util"
)

type category string

const (
	categoryCore       category = "Core"
	categoryModeration category = "Moderation"
	categoryLeveling   category = "Leveling"
	categoryCommunity  category = "Community"
)

var categories = []category{categoryCore, categoryModeration, categoryLeveling, categoryCommunity}

type command struct {
	name        string
	usage       string
	description string
	category    category
	// permission bits the author needs in the channel, 0 for everyone
	permission int64
	run        func(c *commandContext) error
}

type commandContext struct {
	ctx       context.Context
	msg       *discordgo.Message
	guildID   model.Snowflake
	channelID model.Snowflake
	authorID  model.Snowflake
	args      []string
	rest      string
}

// errUsage makes the dispatcher answer with the command's usage line.
var errUsage = errors.New("usage")

func (d *Discord) registerCommands() map[string]*command {
	all := []*command{
		{name: "help", usage: "help [command]", description: "Show the available commands", category: categoryCore, run: d.cmdHelp},
		{name: "ping", usage: "ping", description: "Check bot latency", category: categoryCore, run: d.cmdPing},
		{name: "info", usage: "info", description: "Bot information", category: categoryCore, run: d.cmdInfo},
		{name: "setup", usage: "setup", description: "Server setup wizard", category: categoryCore, permission: discordgo.PermissionAdministrator, run: d.cmdSetup},
		{name: "config", usage: "config [key value...]", description: "Show or change the server configuration", category: categoryCore, permission: discordgo.PermissionAdministrator, run: d.cmdConfig},

		{name: "kick", usage: "kick @member [reason]", description: "Kick a member from the server", category: categoryModeration, permission: discordgo.PermissionKickMembers, run: d.cmdKick},
		{name: "ban", usage: "ban @member [reason]", description: "Ban a member from the server", category: categoryModeration, permission: discordgo.PermissionBanMembers, run: d.cmdBan},
		{name: "clear", usage: "clear <1-100>", description: "Delete recent messages in this channel", category: categoryModeration, permission: discordgo.PermissionManageMessages, run: d.cmdClear},
		{name: "warn", usage: "warn @member [reason]", description: "Warn a member", category: categoryModeration, permission: discordgo.PermissionKickMembers, run: d.cmdWarn},
		{name: "warnings", usage: "warnings [@member]", description: "List active warnings", category: categoryModeration, run: d.cmdWarnings},
		{name: "modlog", usage: "modlog [count]", description: "Show recent moderation actions", category: categoryModeration, permission: discordgo.PermissionKickMembers, run: d.cmdModlog},

		{name: "rank", usage: "rank [@member]", description: "Show XP and level", category: categoryLeveling, run: d.cmdRank},
		{name: "leaderboard", usage: "leaderboard [count]", description: "Show the XP leaderboard", category: categoryLeveling, run: d.cmdLeaderboard},

		{name: "showcase", usage: "showcase <name> | <url> | <description> | <tags>", description: "Showcase your project", category: categoryCommunity, run: d.cmdShowcase},
		{name: "showcases", usage: "showcases [count]", description: "Browse showcased projects", category: categoryCommunity, run: d.cmdShowcases},
		{name: "rsvp", usage: `rsvp "<event>" [going|maybe|declined] [YYYY-MM-DD]`, description: "RSVP to an event", category: categoryCommunity, run: d.cmdRSVP},
		{name: "rsvps", usage: `rsvps "<event>"`, description: "List RSVPs of an event", category: categoryCommunity, run: d.cmdRSVPs},
		{name: "addcmd", usage: "addcmd <name> <response>", description: "Create a custom command", category: categoryCommunity, permission: discordgo.PermissionAdministrator, run: d.cmdAddCommand},
		{name: "cmds", usage: "cmds", description: "List custom commands", category: categoryCommunity, run: d.cmdListCommands},
	}

	cmds := make(map[string]*command, len(all))
	for _, c := range all {
		cmds[c.name] = c
	}
	return cmds
}

// parseCommand splits "<prefix>name rest..." into the lowercased name and the raw remainder.
func parseCommand(content, prefix string) (name, rest string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	body := strings.TrimSpace(content[len(prefix):])
	if body == "" {
		return "", "", false
	}
	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(body), "", true
	}
	return strings.ToLower(body[:i]), strings.TrimSpace(body[i:]), true
}

// splitArgs splits on whitespace, keeping double-quoted sections together.
func splitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuotes, started := false, false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case unicode.IsSpace(r) && !inQuotes:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}

// restAfter returns the remainder of s after skipping n whitespace separated fields.
func restAfter(s string, n int) string {
	s = strings.TrimSpace(s)
	for i := 0; i < n && s != ""; i++ {
		j := strings.IndexFunc(s, unicode.IsSpace)
		if j < 0 {
			return ""
		}
		s = strings.TrimSpace(s[j:])
	}
	return s
}

func hasPermission(granted, required int64) bool {
	if required == 0 || granted&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return granted&required == required
}

// maybeRunCommand runs a built-in or custom command. It reports whether the message was a command.
func (d *Discord) maybeRunCommand(m *discordgo.Message) bool {
	name, rest, ok := parseCommand(m.Content, d.config.prefix)
	if !ok {
		return false
	}

	guildID, gerr := util.ParseSnowflake(m.GuildID)
	channelID, cerr := util.ParseSnowflake(m.ChannelID)
	authorID, aerr := util.ParseSnowflake(m.Author.ID)
	if gerr != nil || cerr != nil || aerr != nil {
		d.logger.Debugf("Ignoring command in message %s with malformed IDs.", m.ID)
		return true
	}
	c := &commandContext{
		ctx:       d.ctx,
		msg:       m,
		guildID:   guildID,
		channelID: channelID,
		authorID:  authorID,
		args:      splitArgs(rest),
		rest:      rest,
	}

	cmd, builtin := d.commands[name]
	if !builtin {
		return d.runCustomCommand(c, name)
	}

	if cmd.permission != 0 {
		perms, err := d.api.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil {
			d.logger.Errorf("Failed to resolve permissions of user %s: %s.", m.Author.ID, err)
			return true
		}
		if !hasPermission(perms, cmd.permission) {
			d.send(m.ChannelID, "❌ You don't have permission to use this command.")
			return true
		}
	}

	d.logger.Debugf("Running command %s for user %s in guild %s.", name, m.Author.ID, m.GuildID)
	if err := cmd.run(c); err != nil {
		if errors.Is(err, errUsage) {
			d.send(m.ChannelID, "Usage: `"+d.config.prefix+cmd.usage+"`")
			return true
		}
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to run command %s: %s.", name, err)
		}
		d.send(m.ChannelID, "❌ Something went wrong while running that command.")
	}
	return true
}

// runCustomCommand answers with a stored custom command. Unknown names are not treated as commands, so the
// message still earns XP.
func (d *Discord) runCustomCommand(c *commandContext, name string) bool {
	cc, err := d.storage.CustomCommand(c.ctx, c.guildID, name)
	if err != nil {
		if d.shouldLogError(err) {
			d.logger.Errorf("Failed to look up custom command %s: %s.", name, err)
		}
		return false
	}
	if cc == nil {
		return false
	}
	d.reply(c, cc.Response)
	return true
}

func (d *Discord) reply(c *commandContext, content string) {
	d.send(c.msg.ChannelID, content)
}

func (d *Discord) replyEmbed(c *commandContext, embed *discordgo.MessageEmbed) {
	d.sendEmbed(c.msg.ChannelID, embed)
}

// targetUser resolves the first argument as a member mention, falling back to the author.
func (c *commandContext) targetUser() (model.Snowflake, bool) {
	if len(c.args) == 0 {
		return c.authorID, true
	}
	return util.ParseMention(c.args[0])
}
