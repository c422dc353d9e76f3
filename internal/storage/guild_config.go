package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/revampbot/revampbot/internal/storage/model"
)

// GuildConfigRecord is a stored guild configuration with its bookkeeping timestamps.
type GuildConfigRecord struct {
	GuildID   model.Snowflake
	Config    *model.GuildConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GuildConfig returns the configuration document of a guild, or nil when none is stored.
func (s *Storage) GuildConfig(ctx context.Context, guildID model.Snowflake) (*model.GuildConfig, error) {
	rec, err := s.GuildConfigRecord(ctx, guildID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Config, nil
}

// GuildConfigRecord is GuildConfig with timestamps. A stored document that cannot be decoded or migrated
// is rejected with model.ErrInvalidConfig rather than reported as absent.
func (s *Storage) GuildConfigRecord(ctx context.Context, guildID model.Snowflake) (*GuildConfigRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var (
		raw                  string
		createdAt, updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT config_data, created_at, updated_at FROM guild_config WHERE guild_id = ?`,
		guildID,
	).Scan(&raw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.readFailed(ctx, "get guild config", err)
	}

	c, err := model.DecodeGuildConfig([]byte(raw))
	if err != nil {
		s.logger.Sugar().Warnf("Rejected stored config of guild %d: %s.", guildID, err)
		return nil, err
	}
	return &GuildConfigRecord{
		GuildID:   guildID,
		Config:    c,
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}, nil
}

// SetGuildConfig replaces the configuration of a guild. Nothing of the previous document is kept.
func (s *Storage) SetGuildConfig(ctx context.Context, guildID model.Snowflake, c *model.GuildConfig) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	raw, err := model.EncodeGuildConfig(c)
	if err != nil {
		return err
	}

	now := s.now()
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO guild_config (guild_id, config_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET
		   config_data = excluded.config_data,
		   updated_at = excluded.updated_at`,
		guildID, string(raw), now, now,
	); err != nil {
		return s.writeFailed(ctx, fmt.Sprintf("set config of guild %d", guildID), err)
	}
	return nil
}
