package discord

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/revampbot/revampbot/internal/storage"
)

const maxLeaderboard = 25

func (d *Discord) cmdRank(c *commandContext) error {
	target, ok := c.targetUser()
	if !ok {
		return errUsage
	}
	u, err := d.storage.UserXP(c.ctx, target, c.guildID)
	if err != nil {
		return err
	}
	if u == nil {
		d.reply(c, fmt.Sprintf("%s hasn't earned any XP yet.", userMention(target)))
		return nil
	}
	d.replyEmbed(c, rankEmbed(u))
	return nil
}

func (d *Discord) cmdLeaderboard(c *commandContext) error {
	limit := storage.DefaultLeaderboardLimit
	if len(c.args) > 0 {
		n, err := strconv.Atoi(c.args[0])
		if err != nil || n < 1 {
			return errUsage
		}
		limit = n
	}
	if limit > maxLeaderboard {
		limit = maxLeaderboard
	}

	entries, err := d.storage.Leaderboard(c.ctx, c.guildID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		d.reply(c, "Nobody has earned XP here yet.")
		return nil
	}
	d.replyEmbed(c, &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: joinLines(leaderboardLines(entries)),
		Color:       colorGold,
	})
	return nil
}
