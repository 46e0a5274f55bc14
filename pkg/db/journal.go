package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/kenkudeck/pkg/dispatch"
)

// DefaultHistoryLimit bounds Recent when the caller passes no limit.
const DefaultHistoryLimit = 50

const maxHistoryLimit = 1000

// FollowBuffer is the event buffer the journal subscribes with; it absorbs
// bursts from held keys while SQLite writes catch up.
const FollowBuffer = 1024

// Fixed-width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrInvalidEntry = errors.New("invalid journal entry")

// Entry is one journaled instruction.
type Entry struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Source       string    `json:"source"`
	Commands     []string  `json:"commands"`
	Acknowledged bool      `json:"acknowledged"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// FromOutcome converts a dispatcher outcome into a journal entry.
func FromOutcome(o dispatch.Outcome) Entry {
	e := Entry{
		ID:           o.ID.String(),
		Code:         o.Code,
		Source:       string(o.Source),
		Commands:     o.Commands,
		Acknowledged: o.Acknowledged,
		Error:        o.Error,
		StartedAt:    o.StartedAt,
		DurationMS:   o.Duration.Milliseconds(),
	}
	if e.Error == "" && o.Err != nil {
		e.Error = o.Err.Error()
	}
	return e
}

// JournalStore records and lists executed instructions.
type JournalStore interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Journal returns a JournalStore for this database.
func (db *DB) Journal() JournalStore {
	return &journalStore{db: db}
}

type journalStore struct {
	db *DB
}

func (s *journalStore) Record(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Code == "" {
		return fmt.Errorf("%w: id and code are required", ErrInvalidEntry)
	}
	commands := e.Commands
	if commands == nil {
		commands = []string{}
	}
	encoded, err := json.Marshal(commands)
	if err != nil {
		return fmt.Errorf("failed to encode commands: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO instructions (id, code, source, commands, acknowledged, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Code, e.Source, string(encoded), e.Acknowledged, e.Error,
		e.StartedAt.UTC().Format(timeLayout), e.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to record instruction %s: %w", e.ID, err)
	}
	return nil
}

func (s *journalStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, source, commands, acknowledged, error, started_at, duration_ms
		FROM instructions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var commands, startedAt string
		if err := rows.Scan(&e.ID, &e.Code, &e.Source, &commands, &e.Acknowledged, &e.Error, &startedAt, &e.DurationMS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(commands), &e.Commands); err != nil {
			return nil, fmt.Errorf("failed to decode commands of %s: %w", e.ID, err)
		}
		if e.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("failed to decode started_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Follow records every event from events until the channel closes or ctx
// is done. Failures are logged and do not stop the loop.
func Follow(ctx context.Context, store JournalStore, events <-chan dispatch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := store.Record(ctx, FromOutcome(evt.Outcome)); err != nil {
				log.Warn().Err(err).Str("code", evt.Outcome.Code).Msg("Failed to journal instruction")
			}
		}
	}
}
