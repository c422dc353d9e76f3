package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/revampbot/revampbot/internal/storage/model"
)

// AddRSVP records a response to an event. Repeated RSVPs by the same user are kept as separate rows.
func (s *Storage) AddRSVP(ctx context.Context, r *model.EventRSVP) (model.ID, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if r == nil || strings.TrimSpace(r.EventName) == "" {
		return 0, fmt.Errorf("%w: event name is required", ErrInvalidArgument)
	}
	status, err := model.ParseRSVPStatus(string(r.Status))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	r.Status, r.EventName, r.CreatedAt = status, strings.TrimSpace(r.EventName), s.now()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO event_rsvp (user_id, guild_id, event_name, event_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.GuildID, r.EventName, nullTime(r.EventDate), string(r.Status), r.CreatedAt,
	)
	if err != nil {
		return 0, s.writeFailed(ctx, "add rsvp", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return 0, s.writeFailed(ctx, "read rsvp id", err)
	}
	return r.ID, nil
}

// EventRSVPs lists the responses to an event in the order they were made.
func (s *Storage) EventRSVPs(ctx context.Context, guildID model.Snowflake, eventName string) ([]*model.EventRSVP, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, event_name, event_date, status, created_at FROM event_rsvp
		 WHERE guild_id = ? AND event_name = ?
		 ORDER BY created_at ASC, id ASC`,
		guildID, strings.TrimSpace(eventName),
	)
	if err != nil {
		return nil, s.readFailed(ctx, "get event rsvps", err)
	}
	defer rows.Close()

	var rsvps []*model.EventRSVP
	for rows.Next() {
		r := &model.EventRSVP{}
		r.GuildID = guildID
		var eventDate, createdAt sql.NullTime
		var status sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.EventName, &eventDate, &status, &createdAt); err != nil {
			return nil, s.readFailed(ctx, "scan event rsvp", err)
		}
		if eventDate.Valid {
			t := eventDate.Time
			r.EventDate = &t
		}
		r.Status, r.CreatedAt = model.RSVPStatus(status.String), createdAt.Time
		if r.Status == "" {
			r.Status = model.RSVPGoing
		}
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readFailed(ctx, "get event rsvps", err)
	}
	return rsvps, nil
}

// PruneRSVPs deletes RSVPs created before cutoff and reports how many were removed.
func (s *Storage) PruneRSVPs(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM event_rsvp WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, s.writeFailed(ctx, "prune rsvps", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.writeFailed(ctx, "count pruned rsvps", err)
	}
	return n, nil
}
