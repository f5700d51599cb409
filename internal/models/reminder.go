// internal/models/reminder.go
package models

import "time"

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderDone    ReminderStatus = "done"
)

// Reminder is a persisted row; rows are never deleted.
type Reminder struct {
	ID     int64          `json:"id"`
	WhenTS float64        `json:"when_ts"`
	Title  string         `json:"title"`
	Status ReminderStatus `json:"status"`
}

// When converts the epoch-seconds timestamp to local time.
func (r Reminder) When() time.Time {
	sec := int64(r.WhenTS)
	nsec := int64((r.WhenTS - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// EpochSeconds converts t to the fractional epoch seconds stored in when_ts.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// HistoryEntry is a row of the history log.
type HistoryEntry struct {
	ID      int64   `json:"id"`
	WhenTS  float64 `json:"when_ts"`
	Kind    string  `json:"kind"`
	Payload string  `json:"payload"`
}

// Contact is a row of the contacts table.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
