package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/revampbot/revampbot/internal/storage/model"
)

const DefaultModerationLogLimit = 20

// AddWarning records an active warning and returns its ID. The ID is 0 when the insert failed.
func (s *Storage) AddWarning(ctx context.Context, userID, guildID, moderatorID model.Snowflake, reason string) (model.ID, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO user_warnings (user_id, guild_id, moderator_id, reason, created_at, active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		userID, guildID, moderatorID, nullString(strings.TrimSpace(reason)), s.now(),
	)
	if err != nil {
		return 0, s.writeFailed(ctx, "add warning", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.writeFailed(ctx, "read warning id", err)
	}
	return id, nil
}

// UserWarnings lists the active warnings of a user in a guild, newest first.
func (s *Storage) UserWarnings(ctx context.Context, userID, guildID model.Snowflake) ([]*model.UserWarning, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, moderator_id, reason, created_at, active FROM user_warnings
		 WHERE user_id = ? AND guild_id = ? AND active = 1
		 ORDER BY created_at DESC, id DESC`,
		userID, guildID,
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get user warnings", err)
	}
	defer rows.Close()

	var warnings []*model.UserWarning
	for rows.Next() {
		w := &model.UserWarning{UserID: userID}
		w.GuildID = guildID
		var reason sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&w.ID, &w.ModeratorID, &reason, &createdAt, &w.Active); err != nil {
			return nil, s.readFailed(ctx, "scan user warning", err)
		}
		w.Reason, w.CreatedAt = reason.String, createdAt.Time
		warnings = append(warnings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get user warnings", err)
	}
	return warnings, nil
}

// LogModerationAction appends an entry to the guild's moderation audit trail.
func (s *Storage) LogModerationAction(ctx context.Context, guildID, moderatorID, targetUserID model.Snowflake, action model.ModerationAction, reason string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("%w: action type is required", ErrInvalidArgument)
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO moderation_logs (guild_id, moderator_id, target_user_id, action_type, reason, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		guildID, moderatorID, targetUserID, action, nullString(strings.TrimSpace(reason)), s.now(),
	); err != nil {
		return s.writeFailed(ctx, "log moderation action", err)
	}
	return nil
}

// ModerationLogs returns the most recent moderation actions of a guild, newest first.
func (s *Storage) ModerationLogs(ctx context.Context, guildID model.Snowflake, limit int) ([]*model.ModerationLog, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, moderator_id, target_user_id, action_type, reason, timestamp FROM moderation_logs
		 WHERE guild_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		guildID, limitOrDefault(limit, DefaultModerationLogLimit),
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get moderation logs", err)
	}
	defer rows.Close()

	var logs []*model.ModerationLog
	for rows.Next() {
		l := &model.ModerationLog{GuildID: guildID}
		var reason sql.NullString
		var ts sql.NullTime
		if err := rows.Scan(&l.ID, &l.ModeratorID, &l.TargetUserID, &l.Action, &reason, &ts); err != nil {
			return nil, s.readFailed(ctx, "scan moderation log", err)
		}
		l.Reason, l.Timestamp = reason.String, ts.Time
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get moderation logs", err)
	}
	return logs, nil
}
