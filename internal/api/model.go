package api

import (
	"time"

	"github.com/revampbot/revampbot/internal/storage/model"
)

// Snowflakes are rendered as strings, as Discord does, since they overflow JavaScript numbers.

type leaderboardEntryModel struct {
	Rank          int             `json:"rank"`
	UserID        model.Snowflake `json:"user_id,string"`
	XP            int64           `json:"xp"`
	Level         int             `json:"level"`
	TotalMessages int64           `json:"total_messages"`
}

type userXPModel struct {
	UserID        model.Snowflake `json:"user_id,string"`
	GuildID       model.Snowflake `json:"guild_id,string"`
	XP            int64           `json:"xp"`
	Level         int             `json:"level"`
	TotalMessages int64           `json:"total_messages"`
	LastMessageAt *time.Time      `json:"last_message_at,omitempty"`
}

type warningModel struct {
	ID          model.ID        `json:"id"`
	ModeratorID model.Snowflake `json:"moderator_id,string"`
	Reason      string          `json:"reason"`
	CreatedAt   time.Time       `json:"created_at"`
}

type guildParam struct {
	Guild string `uri:"guild" binding:"required"`
}

type guildUserParam struct {
	Guild string `uri:"guild" binding:"required"`
	User  string `uri:"user" binding:"required"`
}
