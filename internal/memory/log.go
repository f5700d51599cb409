// internal/memory/log.go
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"desk-assistant/internal/common/database"
	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/models"
)

// Log is the relational side of memory: reminders, history and contacts.
// Each call is its own statement or transaction; nothing spans calls.
type Log struct {
	db       *database.SQLClient
	cache    *database.RedisClient
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewLog wraps db. cache may be nil to disable contact caching.
func NewLog(db *database.SQLClient, cache *database.RedisClient, cacheTTL time.Duration, l logger.Logger) *Log {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &Log{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.Component(l, "memory-log"),
	}
}

func (l *Log) EnsureSchema(ctx context.Context) error {
	if err := l.db.EnsureSchema(ctx); err != nil {
		return apperrors.NewStoreFailedError("ensure_schema", err)
	}
	return nil
}

// Close releases the database and cache connections.
func (l *Log) Close() error {
	if l.cache != nil {
		_ = l.cache.Close()
	}
	return l.db.Close()
}

// AddReminder inserts a pending reminder and returns its id.
func (l *Log) AddReminder(ctx context.Context, when time.Time, title string) (int64, error) {
	var id int64
	err := l.db.QueryRow(ctx,
		`INSERT INTO reminders (when_ts, title, status) VALUES (?, ?, ?) RETURNING id`,
		models.EpochSeconds(when), title, string(models.ReminderPending),
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewStoreFailedError("add_reminder", err)
	}
	return id, nil
}

// CompleteDue flips every pending reminder due at or before now to done and
// returns the rows it flipped. A row flipped by a concurrent sweep is not
// returned twice.
func (l *Log) CompleteDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var fired []models.Reminder
	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, l.db.Rebind(
			`SELECT id, when_ts, title, status FROM reminders WHERE status = ? AND when_ts <= ? ORDER BY when_ts, id`),
			string(models.ReminderPending), models.EpochSeconds(now))
		if err != nil {
			return err
		}
		due, err := scanReminders(rows)
		if err != nil {
			return err
		}

		for _, r := range due {
			res, err := tx.ExecContext(ctx, l.db.Rebind(
				`UPDATE reminders SET status = ? WHERE id = ? AND status = ?`),
				string(models.ReminderDone), r.ID, string(models.ReminderPending))
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 1 {
				r.Status = models.ReminderDone
				fired = append(fired, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStoreFailedError("complete_due", err)
	}
	return fired, nil
}

// Reminders lists reminders with the given status, oldest due first. An
// empty status lists all.
func (l *Log) Reminders(ctx context.Context, status models.ReminderStatus) ([]models.Reminder, error) {
	query := `SELECT id, when_ts, title, status FROM reminders`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY when_ts, id`

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreFailedError("list_reminders", err)
	}
	out, err := scanReminders(rows)
	if err != nil {
		return nil, apperrors.NewStoreFailedError("list_reminders", err)
	}
	return out, nil
}

func scanReminders(rows *sql.Rows) ([]models.Reminder, error) {
	defer rows.Close()
	var out []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var status string
		if err := rows.Scan(&r.ID, &r.WhenTS, &r.Title, &status); err != nil {
			return nil, err
		}
		r.Status = models.ReminderStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AppendHistory records an event; payload is stored as JSON.
func (l *Log) AppendHistory(ctx context.Context, kind string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInvalidArgumentError("payload", err.Error())
	}
	_, err = l.db.Exec(ctx,
		`INSERT INTO history (when_ts, kind, payload) VALUES (?, ?, ?)`,
		models.EpochSeconds(time.Now()), kind, string(data))
	if err != nil {
		return apperrors.NewStoreFailedError("append_history", err)
	}
	return nil
}

// RecentHistory returns up to n entries, newest first.
func (l *Log) RecentHistory(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.db.Query(ctx,
		fmt.Sprintf(`SELECT id, when_ts, kind, payload FROM history ORDER BY id DESC LIMIT %d`, n))
	if err != nil {
		return nil, apperrors.NewStoreFailedError("recent_history", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.ID, &h.WhenTS, &h.Kind, &h.Payload); err != nil {
			return nil, apperrors.NewStoreFailedError("recent_history", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailedError("recent_history", err)
	}
	return out, nil
}

// RecordScan stores one app scan snapshot.
func (l *Log) RecordScan(ctx context.Context, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return apperrors.NewInvalidArgumentError("scan", err.Error())
	}
	if _, err := l.db.Exec(ctx, `INSERT INTO scans (when_ts, data) VALUES (?, ?)`,
		models.EpochSeconds(time.Now()), string(raw)); err != nil {
		return apperrors.NewStoreFailedError("record_scan", err)
	}
	return nil
}
