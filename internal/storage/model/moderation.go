package model

import (
	"time"
)

// ModerationAction is the free-text action type recorded in the moderation log.
type ModerationAction = string

const (
	ActionKick  ModerationAction = "kick"
	ActionBan   ModerationAction = "ban"
	ActionWarn  ModerationAction = "warn"
	ActionClear ModerationAction = "clear"
)

type ModerationLog struct {
	IdentifiableEntity
	GuildID      Snowflake
	ModeratorID  Snowflake
	TargetUserID Snowflake
	Action       ModerationAction
	Reason       string
	Timestamp    time.Time
}

type UserWarning struct {
	GuildScopedEntity
	UserID      Snowflake
	ModeratorID Snowflake
	Reason      string
	Active      bool
}
