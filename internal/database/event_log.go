package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pingball/backend/internal/models"
)

const maxListLimit = 500

// EventLog persists relay events: handoffs go to the handoffs table,
// everything else to relay_events.
type EventLog struct {
	db *sqlx.DB
}

func NewEventLog(db *sqlx.DB) *EventLog {
	return &EventLog{db: db}
}

// Publish stores one relay event.
func (l *EventLog) Publish(ctx context.Context, ev models.RelayEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Handoff != nil {
		h := *ev.Handoff
		h.CreatedAt = ev.Timestamp
		return l.InsertHandoff(ctx, &h)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO relay_events (type, board, peer, wall, roster, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.Type, ev.Board, ev.Peer, ev.Wall, strings.Join(ev.Roster, " "), ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert relay event: %w", err)
	}
	return nil
}

// InsertHandoff records a forwarded (or dropped) ball and sets its ID.
func (l *EventLog) InsertHandoff(ctx context.Context, h *models.Handoff) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	rows, err := l.db.NamedQueryContext(ctx, `
		INSERT INTO handoffs (kind, from_board, to_board, wall, portal, x, y, vx, vy, delivered, created_at)
		VALUES (:kind, :from_board, :to_board, :wall, :portal, :x, :y, :vx, :vy, :delivered, :created_at)
		RETURNING id
	`, h)
	if err != nil {
		return fmt.Errorf("insert handoff: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&h.ID); err != nil {
			return fmt.Errorf("scan handoff id: %w", err)
		}
	}
	return rows.Err()
}

// RecentHandoffs returns the newest handoffs first.
func (l *EventLog) RecentHandoffs(ctx context.Context, limit int) ([]models.Handoff, error) {
	handoffs := []models.Handoff{}
	err := l.db.SelectContext(ctx, &handoffs, `
		SELECT id, kind, from_board, to_board, wall, portal, x, y, vx, vy, delivered, created_at
		FROM handoffs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query handoffs: %w", err)
	}
	return handoffs, nil
}

// RecentEvents returns the newest non-handoff events first.
func (l *EventLog) RecentEvents(ctx context.Context, limit int) ([]models.EventRecord, error) {
	events := []models.EventRecord{}
	err := l.db.SelectContext(ctx, &events, `
		SELECT id, type, board, peer, wall, roster, created_at
		FROM relay_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query relay events: %w", err)
	}
	return events, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
