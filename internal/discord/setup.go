package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"go.uber.org/atomic"
)

const (
	setupTimeout = 60 * time.Second
	emojiConfirm = "✅"
	emojiCancel  = "❌"
)

type layoutCategory struct {
	name     string
	channels []string
}

var serverLayout = []layoutCategory{
	{"👋 Welcome", []string{"👋・welcome", "📜・rules", "😎・introductions", "🌟・role-selection"}},
	{"📣 Announcements", []string{"📣・announcements", "🎫・events"}},
	{"🏠 Community", []string{"🏠・general", "🥤・lounge", "🏆・showcase", "🤝・collaborations"}},
	{"💻 Tech Hub", []string{"💻・coding-help", "📚・resources", "🌐・web-dev", "🧠・ml-ai"}},
}

type layoutRole struct {
	name  string
	color int
}

var serverRoles = []layoutRole{
	{"Member", colorBlue},
	{"Web Dev", colorGreen},
	{"ML/AI Enthusiast", 0x9b59b6},
	{"Community Helper", colorOrange},
}

// pendingSetup is a setup prompt waiting for its author to react. resolved flips exactly once, either on
// a reaction or on expiry.
type pendingSetup struct {
	guildID   string
	channelID string
	authorID  string
	resolved  *atomic.Bool
}

func newSetupCache(onExpired func(*pendingSetup)) *cache.Cache {
	c := cache.New(setupTimeout, 5*time.Second)
	c.OnEvicted(func(_ string, v interface{}) {
		if p, ok := v.(*pendingSetup); ok && p.resolved.CAS(false, true) {
			onExpired(p)
		}
	})
	return c
}

func (d *Discord) onSetupExpired(p *pendingSetup) {
	d.send(p.channelID, "Setup timed out.")
}

func (d *Discord) cmdSetup(c *commandContext) error {
	msg, err := d.api.ChannelMessageSendEmbed(c.msg.ChannelID, &discordgo.MessageEmbed{
		Title:       "🔧 Server Setup Wizard",
		Description: "This will help you configure RevampBot for your server.",
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚠️ Important", Value: "This setup creates missing channels and roles. Nothing existing is changed or deleted."},
			{Name: "Options", Value: fmt.Sprintf("React with %s to proceed with setup\nReact with %s to cancel", emojiConfirm, emojiCancel)},
		},
	})
	if err != nil {
		return fmt.Errorf("send setup prompt: %w", err)
	}

	d.setups.SetDefault(msg.ID, &pendingSetup{
		guildID:   c.msg.GuildID,
		channelID: c.msg.ChannelID,
		authorID:  c.msg.Author.ID,
		resolved:  atomic.NewBool(false),
	})
	for _, e := range []string{emojiConfirm, emojiCancel} {
		if err := d.api.MessageReactionAdd(msg.ChannelID, msg.ID, e); err != nil {
			d.logger.Errorf("Failed to add setup reaction: %s.", err)
		}
	}
	return nil
}

// handleSetupReaction resolves a pending setup prompt when its author answers.
func (d *Discord) handleSetupReaction(r *discordgo.MessageReaction) {
	v, ok := d.setups.Get(r.MessageID)
	if !ok {
		return
	}
	p := v.(*pendingSetup)
	if r.UserID != p.authorID || (r.Emoji.Name != emojiConfirm && r.Emoji.Name != emojiCancel) {
		return
	}
	if !p.resolved.CAS(false, true) {
		return
	}
	d.setups.Delete(r.MessageID)

	if r.Emoji.Name == emojiCancel {
		d.send(p.channelID, "Setup cancelled.")
		return
	}
	d.performSetup(p)
}

type setupPlan struct {
	// channels to create per category, keyed by category name, in layout order
	categories []layoutCategory
	// existing category IDs by name
	existing map[string]string
	roles    []layoutRole
}

func (p *setupPlan) empty() bool {
	return len(p.categories) == 0 && len(p.roles) == 0
}

// planSetup works out what is missing from the guild. Existing channels and roles are matched by name and
// never touched.
func planSetup(channels []*discordgo.Channel, roles []*discordgo.Role) *setupPlan {
	plan := &setupPlan{existing: map[string]string{}}
	text := map[string]bool{}
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildCategory:
			plan.existing[ch.Name] = ch.ID
		case discordgo.ChannelTypeGuildText:
			text[ch.Name] = true
		}
	}
	for _, cat := range serverLayout {
		missing := layoutCategory{name: cat.name}
		for _, name := range cat.channels {
			if !text[name] {
				missing.channels = append(missing.channels, name)
			}
		}
		_, hasCategory := plan.existing[cat.name]
		if !hasCategory || len(missing.channels) > 0 {
			plan.categories = append(plan.categories, missing)
		}
	}

	have := map[string]bool{}
	for _, r := range roles {
		have[r.Name] = true
	}
	for _, r := range serverRoles {
		if !have[r.name] {
			plan.roles = append(plan.roles, r)
		}
	}
	return plan
}

func (d *Discord) performSetup(p *pendingSetup) {
	channels, err := d.api.GuildChannels(p.guildID)
	if err != nil {
		d.setupFailed(p, err)
		return
	}
	roles, err := d.api.GuildRoles(p.guildID)
	if err != nil {
		d.setupFailed(p, err)
		return
	}

	plan := planSetup(channels, roles)
	if plan.empty() {
		d.sendEmbed(p.channelID, &discordgo.MessageEmbed{
			Title:       "🎉 Setup Completed!",
			Description: "Everything was already in place, nothing to change.",
			Color:       colorGreen,
		})
		return
	}

	var changes []string
	for _, cat := range plan.categories {
		parentID, ok := plan.existing[cat.name]
		if !ok {
			ch, err := d.api.GuildChannelCreateComplex(p.guildID, discordgo.GuildChannelCreateData{Name: cat.name, Type: discordgo.ChannelTypeGuildCategory})
			if err != nil {
				d.setupFailed(p, err)
				return
			}
			parentID = ch.ID
			changes = append(changes, "✅ Created category: "+cat.name)
		}
		for _, name := range cat.channels {
			if _, err := d.api.GuildChannelCreateComplex(p.guildID, discordgo.GuildChannelCreateData{Name: name, Type: discordgo.ChannelTypeGuildText, ParentID: parentID}); err != nil {
				d.setupFailed(p, err)
				return
			}
			changes = append(changes, "✅ Created text channel: "+name)
		}
	}
	for _, r := range plan.roles {
		role, err := d.api.GuildRoleCreate(p.guildID)
		if err != nil {
			d.setupFailed(p, err)
			return
		}
		if _, err := d.api.GuildRoleEdit(p.guildID, role.ID, r.name, r.color, false, role.Permissions, false); err != nil {
			d.setupFailed(p, err)
			return
		}
		changes = append(changes, "✅ Created role: "+r.name)
	}

	e := &discordgo.MessageEmbed{
		Title:       "🎉 Setup Completed!",
		Description: "Your server has been configured successfully.",
		Color:       colorGreen,
	}
	d.logger.Infof("Setup completed for guild %s with %d changes.", p.guildID, len(changes))
	if len(changes) > 10 {
		changes = append(changes[:10], fmt.Sprintf("…and %d more", len(changes)-10))
	}
	e.Fields = []*discordgo.MessageEmbedField{{Name: "Changes Made", Value: joinLines(changes)}}
	d.sendEmbed(p.channelID, e)
}

func (d *Discord) setupFailed(p *pendingSetup, err error) {
	d.logger.Errorf("Setup failed for guild %s: %s.", p.guildID, err)
	d.send(p.channelID, "❌ Setup failed: "+err.Error())
}
