package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/revampbot/revampbot/internal/storage/model"
)

const DefaultLeaderboardLimit = 10

// UserXP returns the XP record of a user in a guild, or nil when the user has none yet.
func (s *Storage) UserXP(ctx context.Context, userID, guildID model.Snowflake) (*model.UserXP, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	u := &model.UserXP{UserID: userID, GuildID: guildID}
	var last sql.NullTime
	err := s.db.QueryRowContext(
		ctx,
		`SELECT xp, level, last_message, total_messages FROM user_xp WHERE user_id = ? AND guild_id = ?`,
		userID, guildID,
	).Scan(&u.XP, &u.Level, &last, &u.TotalMessages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.readFailed(ctx, "get user xp", err)
	}
	if last.Valid {
		u.LastMessageAt = last.Time
	}
	return u, nil
}

// UpdateUserXP stores xp and level for a user. A new row starts at one message; an existing row has its
// message count incremented and its last message time refreshed, in a single statement.
func (s *Storage) UpdateUserXP(ctx context.Context, userID, guildID model.Snowflake, xp int64, level int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if xp < 0 || level < 1 {
		return fmt.Errorf("%w: xp %d level %d", ErrInvalidArgument, xp, level)
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_xp (user_id, guild_id, xp, level, last_message, total_messages)
		 VALUES (?, ?, ?, ?, ?, 1)
		 ON CONFLICT(user_id, guild_id) DO UPDATE SET
		   xp = excluded.xp,
		   level = excluded.level,
		   last_message = excluded.last_message,
		   total_messages = user_xp.total_messages + 1`,
		userID, guildID, xp, level, s.now(),
	); err != nil {
		return s.writeFailed(ctx, "update user xp", err)
	}
	return nil
}

// Leaderboard returns the top users of a guild by XP. Equal XP is ordered by user ID.
func (s *Storage) Leaderboard(ctx context.Context, guildID model.Snowflake, limit int) ([]*model.LeaderboardEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, xp, level, total_messages FROM user_xp
		 WHERE guild_id = ?
		 ORDER BY xp DESC, user_id ASC
		 LIMIT ?`,
		guildID, limitOrDefault(limit, DefaultLeaderboardLimit),
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get leaderboard", err)
	}
	defer rows.Close()

	var entries []*model.LeaderboardEntry
	for rows.Next() {
		e := &model.LeaderboardEntry{}
		if err := rows.Scan(&e.UserID, &e.XP, &e.Level, &e.TotalMessages); err != nil {
			return nil, s.readFailed(ctx, "scan leaderboard", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get leaderboard", err)
	}
	return entries, nil
}
