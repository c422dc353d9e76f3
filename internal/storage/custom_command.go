package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/revampbot/revampbot/internal/storage/model"
)

func normalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddCustomCommand creates a guild command. A second command with the same name in the same guild fails
// with ErrAlreadyExists.
func (s *Storage) AddCustomCommand(ctx context.Context, c *model.CustomCommand) (model.ID, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if c == nil || normalizeCommandName(c.Name) == "" || strings.TrimSpace(c.Response) == "" {
		return 0, fmt.Errorf("%w: command name and response are required", ErrInvalidArgument)
	}

	c.Name, c.CreatedAt = normalizeCommandName(c.Name), s.now()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO custom_commands (guild_id, command_name, response, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.GuildID, c.Name, c.Response, c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("custom command %q: %w", c.Name, ErrAlreadyExists)
		}
		return 0, s.writeFailed(ctx, "add custom command", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return 0, s.writeFailed(ctx, "read custom command id", err)
	}
	return c.ID, nil
}

// CustomCommand looks a command up by name, returning nil when the guild has no such command.
func (s *Storage) CustomCommand(ctx context.Context, guildID model.Snowflake, name string) (*model.CustomCommand, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	c := &model.CustomCommand{}
	c.GuildID = guildID
	var createdAt sql.NullTime
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, command_name, response, created_by, created_at FROM custom_commands
		 WHERE guild_id = ? AND command_name = ?`,
		guildID, normalizeCommandName(name),
	).Scan(&c.ID, &c.Name, &c.Response, &c.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.readFailed(ctx, "get custom command", err)
	}
	c.CreatedAt = createdAt.Time
	return c, nil
}

// CustomCommands lists the commands of a guild by name.
func (s *Storage) CustomCommands(ctx context.Context, guildID model.Snowflake) ([]*model.CustomCommand, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, command_name, response, created_by, created_at FROM custom_commands
		 WHERE guild_id = ?
		 ORDER BY command_name ASC`,
		guildID,
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get custom commands", err)
	}
	defer rows.Close()

	var cmds []*model.CustomCommand
	for rows.Next() {
		c := &model.CustomCommand{}
		c.GuildID = guildID
		var createdAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Response, &c.CreatedBy, &createdAt); err != nil {
			return nil, s.readFailed(ctx, "scan custom command", err)
		}
		c.CreatedAt = createdAt.Time
		cmds = append(cmds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get custom commands", err)
	}
	return cmds, nil
}
