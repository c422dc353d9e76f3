package model

import (
	"time"
)

// ID is the auto-increment row identifier of append-only records.
type ID = int64

type IdentifiableEntity struct {
	ID ID
}

// Snowflake is an opaque Discord identifier (guilds, users, channels, roles).
type Snowflake = uint64

type GuildScopedEntity struct {
	IdentifiableEntity
	GuildID   Snowflake
	CreatedAt time.Time
}
