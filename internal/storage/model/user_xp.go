package model

import (
	"time"
)

type UserXP struct {
	UserID        Snowflake
	GuildID       Snowflake
	XP            int64
	Level         int
	LastMessageAt time.Time
	TotalMessages int64
}

// LeaderboardEntry is one row of a guild's XP ranking.
type LeaderboardEntry struct {
	UserID        Snowflake
	XP            int64
	Level         int
	TotalMessages int64
}
