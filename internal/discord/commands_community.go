package discord

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage"
	"github.com/revampbot/revampbot/internal/storage/model"
)

const maxShowcases = 10

// parseShowcase reads "<name> | <url> | <description> | <tags>". Only the name is required.
func parseShowcase(rest string) (*model.ShowcaseProject, error) {
	parts := strings.Split(rest, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 4 || parts[0] == "" {
		return nil, errUsage
	}
	p := &model.ShowcaseProject{ProjectName: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		u, err := url.Parse(parts[1])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%q is not a valid link", parts[1])
		}
		p.URL = parts[1]
	}
	if len(parts) > 2 {
		p.Description = parts[2]
	}
	if len(parts) > 3 {
		p.Tags = model.SplitTags(parts[3])
	}
	return p, nil
}

func (d *Discord) cmdShowcase(c *commandContext) error {
	p, err := parseShowcase(c.rest)
	if errors.Is(err, errUsage) {
		return err
	}
	if err != nil {
		d.reply(c, "❌ "+err.Error())
		return nil
	}
	p.GuildID, p.UserID = c.guildID, c.authorID
	if _, err := d.storage.AddShowcase(c.ctx, p); err != nil {
		return err
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:  "🏆 Project showcased!",
		Color:  colorGreen,
		Fields: showcaseFields([]*model.ShowcaseProject{p}),
	})
	return nil
}

func (d *Discord) cmdShowcases(c *commandContext) error {
	limit := storage.DefaultShowcaseLimit
	if len(c.args) > 0 {
		n, err := strconv.Atoi(c.args[0])
		if err != nil || n < 1 {
			return errUsage
		}
		limit = n
	}
	if limit > maxShowcases {
		limit = maxShowcases
	}
	projects, err := d.storage.Showcases(c.ctx, c.guildID, limit)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		d.reply(c, fmt.Sprintf("No projects yet. Be the first with `%sshowcase`!", d.config.prefix))
		return nil
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:  "🏆 Community showcase",
		Color:  colorBlue,
		Fields: showcaseFields(projects),
	})
	return nil
}

// parseRSVP reads `"<event>" [status] [YYYY-MM-DD]` from split arguments.
func parseRSVP(args []string) (*model.EventRSVP, error) {
	if len(args) == 0 || len(args) > 3 || strings.TrimSpace(args[0]) == "" {
		return nil, errUsage
	}
	r := &model.EventRSVP{EventName: strings.TrimSpace(args[0])}
	for _, a := range args[1:] {
		if t, err := time.Parse("2006-01-02", a); err == nil {
			if r.EventDate != nil {
				return nil, errUsage
			}
			r.EventDate = &t
			continue
		}
		status, err := model.ParseRSVPStatus(a)
		if err != nil {
			return nil, err
		}
		r.Status = status
	}
	if r.Status == "" {
		r.Status = model.RSVPGoing
	}
	return r, nil
}

func (d *Discord) cmdRSVP(c *commandContext) error {
	r, err := parseRSVP(c.args)
	if errors.Is(err, errUsage) {
		return err
	}
	if err != nil {
		d.reply(c, "❌ "+err.Error()+". Use going, maybe or declined.")
		return nil
	}
	r.GuildID, r.UserID = c.guildID, c.authorID
	if _, err := d.storage.AddRSVP(c.ctx, r); err != nil {
		return err
	}
	d.reply(c, fmt.Sprintf("✅ RSVP recorded: **%s** for *%s*.", r.Status, r.EventName))
	return nil
}

func (d *Discord) cmdRSVPs(c *commandContext) error {
	if len(c.args) != 1 {
		return errUsage
	}
	rsvps, err := d.storage.EventRSVPs(c.ctx, c.guildID, c.args[0])
	if err != nil {
		return err
	}
	if len(rsvps) == 0 {
		d.reply(c, fmt.Sprintf("Nobody has responded to *%s* yet.", c.args[0]))
		return nil
	}

	summary := rsvpSummary(rsvps)
	e := &discordgo.MessageEmbed{Title: "🎫 " + truncate(c.args[0], 200), Color: colorBlue}
	for _, st := range []model.RSVPStatus{model.RSVPGoing, model.RSVPMaybe, model.RSVPDeclined} {
		users := summary[st]
		lines := make([]string, len(users))
		for i, u := range users {
			lines[i] = userMention(u)
		}
		value := "-"
		if len(lines) > 0 {
			value = joinLines(lines)
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: fmt.Sprintf("%s (%d)", st, len(users)), Value: value, Inline: true})
	}
	d.replyEmbed(c, e)
	return nil
}

func (d *Discord) cmdAddCommand(c *commandContext) error {
	if len(c.args) < 2 {
		return errUsage
	}
	name := strings.ToLower(strings.TrimPrefix(c.args[0], d.config.prefix))
	if _, builtin := d.commands[name]; builtin {
		d.reply(c, fmt.Sprintf("❌ `%s` is a built-in command.", name))
		return nil
	}
	cmd := &model.CustomCommand{Name: name, Response: restAfter(c.rest, 1), CreatedBy: c.authorID}
	cmd.GuildID = c.guildID
	if _, err := d.storage.AddCustomCommand(c.ctx, cmd); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			d.reply(c, fmt.Sprintf("❌ A command named `%s` already exists.", name))
			return nil
		}
		return err
	}
	d.reply(c, fmt.Sprintf("✅ Added `%s%s`.", d.config.prefix, cmd.Name))
	return nil
}

func (d *Discord) cmdListCommands(c *commandContext) error {
	cmds, err := d.storage.CustomCommands(c.ctx, c.guildID)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		d.reply(c, "This server has no custom commands.")
		return nil
	}
	lines := make([]string, len(cmds))
	for i, cmd := range cmds {
		lines[i] = fmt.Sprintf("`%s%s` by %s", d.config.prefix, cmd.Name, userMention(cmd.CreatedBy))
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:       "📝 Custom commands",
		Description: joinLines(lines),
		Color:       colorBlue,
	})
	return nil
}
