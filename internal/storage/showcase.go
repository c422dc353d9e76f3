package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/revampbot/revampbot/internal/storage/model"
)

const DefaultShowcaseLimit = 10

// AddShowcase stores a project and fills in its ID and creation time.
func (s *Storage) AddShowcase(ctx context.Context, p *model.ShowcaseProject) (model.ID, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if p == nil || strings.TrimSpace(p.ProjectName) == "" {
		return 0, fmt.Errorf("%w: project name is required", ErrInvalidArgument)
	}

	p.CreatedAt = s.now()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO showcase_projects (user_id, guild_id, project_name, description, github_url, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.GuildID, strings.TrimSpace(p.ProjectName), nullString(p.Description), nullString(p.URL),
		nullString(model.JoinTags(p.Tags)), p.CreatedAt,
	)
	if err != nil {
		return 0, s.writeFailed(ctx, "add showcase project", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return 0, s.writeFailed(ctx, "read showcase project id", err)
	}
	return p.ID, nil
}

// Showcases lists the most recent projects of a guild, newest first.
func (s *Storage) Showcases(ctx context.Context, guildID model.Snowflake, limit int) ([]*model.ShowcaseProject, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, project_name, description, github_url, tags, created_at FROM showcase_projects
		 WHERE guild_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		guildID, limitOrDefault(limit, DefaultShowcaseLimit),
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get showcase projects", err)
	}
	defer rows.Close()

	var projects []*model.ShowcaseProject
	for rows.Next() {
		p := &model.ShowcaseProject{}
		p.GuildID = guildID
		var desc, url, tags sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProjectName, &desc, &url, &tags, &createdAt); err != nil {
			return nil, s.readFailed(ctx, "scan showcase project", err)
		}
		p.Description, p.URL, p.Tags, p.CreatedAt = desc.String, url.String, model.SplitTags(tags.String), createdAt.Time
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get showcase projects", err)
	}
	return projects, nil
}
