package model

type CustomCommand struct {
	GuildScopedEntity
	Name      string
	Response  string
	CreatedBy Snowflake
}
