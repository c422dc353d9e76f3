package discord

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/leveling"
	"github.com/revampbot/revampbot/internal/storage/model"
)

const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorOrange = 0xe67e22
	colorRed    = 0xe74c3c
	colorGold   = 0xf1c40f

	// embed field values are capped by Discord
	maxFieldLength = 1024
)

func userMention(id model.Snowflake) string {
	return fmt.Sprintf("<@%d>", id)
}

func channelMention(id model.Snowflake) string {
	if id == 0 {
		return "not set"
	}
	return fmt.Sprintf("<#%d>", id)
}

func roleMention(id model.Snowflake) string {
	return fmt.Sprintf("<@&%d>", id)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// joinLines joins lines until the next one would overflow an embed field.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		extra := len(l)
		if i > 0 {
			extra++
		}
		if b.Len()+extra > maxFieldLength {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	}
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// progressBar draws how far xp is between the current level and the next one.
func progressBar(xp int64, level int, width int) string {
	lo, hi := leveling.XPForLevel(level), leveling.XPForLevel(level+1)
	filled := 0
	if hi > lo && xp > lo {
		filled = int((xp - lo) * int64(width) / (hi - lo))
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func welcomeEmbed(prefix string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "👋 Welcome to RevampBot!",
		Description: fmt.Sprintf("Thank you for adding RevampBot to your server! Use `%ssetup` to configure the bot for your community.", prefix),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{{
			Name:  "Getting Started",
			Value: fmt.Sprintf("`%shelp` - View all commands\n`%ssetup` - Server setup wizard", prefix, prefix),
		}},
	}
}

func helpEmbed(prefix string, cmds map[string]*command) *discordgo.MessageEmbed {
	byCategory := map[category][]*command{}
	for _, c := range cmds {
		byCategory[c.category] = append(byCategory[c.category], c)
	}

	e := &discordgo.MessageEmbed{
		Title:       "🤖 RevampBot Commands",
		Description: "Here are all available commands organized by category:",
		Color:       colorBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Use %shelp [command] for detailed information", prefix)},
	}
	for _, cat := range categories {
		list := byCategory[cat]
		if len(list) == 0 {
			continue
		}
		sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
		lines := make([]string, len(list))
		for i, c := range list {
			lines[i] = fmt.Sprintf("`%s%s` - %s", prefix, c.name, c.description)
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: string(cat), Value: joinLines(lines)})
	}
	return e
}

func configEmbed(cfg *model.GuildConfig) *discordgo.MessageEmbed {
	roles := "none"
	if len(cfg.AutoRoles) > 0 {
		r := make([]string, len(cfg.AutoRoles))
		for i, id := range cfg.AutoRoles {
			r[i] = roleMention(id)
		}
		roles = strings.Join(r, " ")
	}
	return &discordgo.MessageEmbed{
		Title: "⚙️ Server Configuration",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "welcome_channel", Value: channelMention(cfg.WelcomeChannel), Inline: true},
			{Name: "log_channel", Value: channelMention(cfg.LogChannel), Inline: true},
			{Name: "level_up_notifications", Value: onOff(cfg.LevelUpNotifications), Inline: true},
			{Name: "auto_roles", Value: roles, Inline: true},
			{Name: "auto_mod", Value: onOff(cfg.Moderation.AutoMod), Inline: true},
			{Name: "spam_detection", Value: onOff(cfg.Moderation.SpamDetection), Inline: true},
			{Name: "invite_filtering", Value: onOff(cfg.Moderation.InviteFiltering), Inline: true},
		},
	}
}

func rankEmbed(u *model.UserXP) *discordgo.MessageEmbed {
	next := leveling.XPForLevel(u.Level + 1)
	return &discordgo.MessageEmbed{
		Title:       "📈 Rank",
		Description: userMention(u.UserID),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprint(u.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d / %d", u.XP, next), Inline: true},
			{Name: "Messages", Value: fmt.Sprint(u.TotalMessages), Inline: true},
			{Name: "Progress", Value: progressBar(u.XP, u.Level, 20)},
		},
	}
}

func leaderboardLines(entries []*model.LeaderboardEntry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		medal := fmt.Sprintf("**%d.**", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		lines[i] = fmt.Sprintf("%s %s - level %d, %d XP", medal, userMention(e.UserID), e.Level, e.XP)
	}
	return lines
}

func warningLines(warnings []*model.UserWarning) []string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		reason := w.Reason
		if reason == "" {
			reason = "no reason given"
		}
		lines[i] = fmt.Sprintf("`#%d` %s by %s: %s", w.ID, w.CreatedAt.Format("2006-01-02"), userMention(w.ModeratorID), truncate(reason, 200))
	}
	return lines
}

func moderationLogLines(logs []*model.ModerationLog) []string {
	lines := make([]string, len(logs))
	for i, l := range logs {
		target := "-"
		if l.TargetUserID != 0 {
			target = userMention(l.TargetUserID)
		}
		line := fmt.Sprintf("%s **%s** %s by %s", l.Timestamp.Format("2006-01-02 15:04"), l.Action, target, userMention(l.ModeratorID))
		if l.Reason != "" {
			line += ": " + truncate(l.Reason, 120)
		}
		lines[i] = line
	}
	return lines
}

func showcaseFields(projects []*model.ShowcaseProject) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, len(projects))
	for _, p := range projects {
		var b strings.Builder
		if p.Description != "" {
			b.WriteString(truncate(p.Description, 300))
			b.WriteByte('\n')
		}
		if p.URL != "" {
			b.WriteString(p.URL)
			b.WriteByte('\n')
		}
		if len(p.Tags) > 0 {
			b.WriteString("`" + strings.Join(p.Tags, "` `") + "`\n")
		}
		b.WriteString("by " + userMention(p.UserID))
		fields = append(fields, &discordgo.MessageEmbedField{Name: truncate(p.ProjectName, 256), Value: truncate(b.String(), maxFieldLength)})
	}
	return fields
}

// rsvpSummary groups the latest response of every user by status. Earlier responses by the same user
// are superseded by later ones.
func rsvpSummary(rsvps []*model.EventRSVP) map[model.RSVPStatus][]model.Snowflake {
	latest := map[model.Snowflake]model.RSVPStatus{}
	var order []model.Snowflake
	for _, r := range rsvps {
		if _, seen := latest[r.UserID]; !seen {
			order = append(order, r.UserID)
		}
		latest[r.UserID] = r.Status
	}
	out := map[model.RSVPStatus][]model.Snowflake{}
	for _, u := range order {
		out[latest[u]] = append(out[latest[u]], u)
	}
	return out
}
