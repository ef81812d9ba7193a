package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"miheater/internal/models"
)

// sqliteTimestamp matches SQLite's TIMESTAMP text form so range filters
// compare lexically.
const sqliteTimestamp = "2006-01-02 15:04:05"

const insertEventSQL = `INSERT INTO heater_events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`

// EventFilter narrows List. Zero fields do not filter.
type EventFilter struct {
	From  time.Time
	To    time.Time
	Type  string
	Limit int
}

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append stores e, assigning an ID and timestamp when missing.
func (r *EventSQLite) Append(ctx context.Context, e models.HeaterEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestamp),
		normalizeType(e.Type),
		e.Description,
		meta,
	)
	if err != nil {
		return fmt.Errorf("append %s event: %w", normalizeType(e.Type), err)
	}
	return nil
}

// List returns matching events oldest first. With a Limit, the newest
// Limit events are kept.
func (r *EventSQLite) List(ctx context.Context, f EventFilter) ([]models.HeaterEvent, error) {
	q, args := buildListQuery(f)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]models.HeaterEvent, 0, 32)
	for rows.Next() {
		var (
			ev   models.HeaterEvent
			meta sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if meta.Valid && meta.String != "" {
			var v any
			if err := json.Unmarshal([]byte(meta.String), &v); err != nil {
				ev.Metadata = meta.String
			} else {
				ev.Metadata = v
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func buildListQuery(f EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC().Format(sqliteTimestamp))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC().Format(sqliteTimestamp))
	}
	if typ := normalizeType(f.Type); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, message, meta FROM heater_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Limit > 0 {
		q = `SELECT * FROM (` + q + ` ORDER BY occurred_at DESC LIMIT ?) ORDER BY occurred_at ASC`
		args = append(args, f.Limit)
		return q, args
	}
	return q + " ORDER BY occurred_at ASC", args
}

func normalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
