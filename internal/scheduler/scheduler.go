// Package scheduler persists reminders and fires them from a background
// sweep once they are due.
package scheduler

import (
	"context"
	"sync"
	"time"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/metrics"
	"desk-assistant/internal/common/observability"
	"desk-assistant/internal/memory"
	"desk-assistant/internal/models"
	"desk-assistant/internal/timeparse"
)

const (
	DefaultInterval = time.Second
	joinTimeout     = 5 * time.Second
)

// Notifier is told about every reminder a sweep fires.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r models.Reminder)

func (f NotifierFunc) Notify(ctx context.Context, r models.Reminder) { f(ctx, r) }

type Option func(*Scheduler)

func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Scheduler) { s.obs = o }
}

// WithClock overrides time.Now for the background loop.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler owns one background sweep loop. Store access is the only
// synchronisation between the loop and Schedule calls.
type Scheduler struct {
	log      *memory.Log
	parser   *timeparse.Parser
	interval time.Duration
	notifier Notifier
	obs      *observability.Observability
	now      func() time.Time
	logger   logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(log *memory.Log, parser *timeparse.Parser, interval time.Duration, l logger.Logger, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if parser == nil {
		parser = timeparse.New(timeparse.RolloverInferredToday)
	}
	s := &Scheduler{
		log:      log,
		parser:   parser,
		interval: interval,
		obs:      observability.Disabled(),
		now:      time.Now,
		logger:   logger.Component(l, "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the sweep loop. Calling Start on a running scheduler is a
// no-op. The loop ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("scheduler started", map[string]interface{}{"interval": s.interval.String()})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx, s.now()); err != nil && ctx.Err() == nil {
					s.logger.Error("sweep failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
}

// Stop cancels the loop and waits up to five seconds for it to exit. It
// reports whether the loop finished in time.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return true
	}
	cancel()
	select {
	case <-done:
		s.logger.Info("scheduler stopped", nil)
		return true
	case <-time.After(joinTimeout):
		s.logger.Warn("scheduler did not stop in time", nil)
		return false
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Sweep fires every pending reminder due at or before now and returns how
// many fired.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()
	fired, err := s.log.CompleteDue(ctx, now)
	if err != nil {
		s.obs.RecordSweep(ctx, time.Since(start), 0, "error")
		return 0, err
	}

	for _, r := range fired {
		s.logger.Info("reminder due", map[string]interface{}{"id": r.ID, "title": r.Title})
		if s.notifier != nil {
			s.notifier.Notify(ctx, r)
		}
	}
	metrics.RemindersFired.Add(float64(len(fired)))
	s.obs.RecordSweep(ctx, time.Since(start), len(fired), "ok")
	return len(fired), nil
}

// Schedule stores a pending reminder for when.
func (s *Scheduler) Schedule(ctx context.Context, when time.Time, title string) (int64, error) {
	id, err := s.log.AddReminder(ctx, when, title)
	if err != nil {
		s.logger.Error("schedule failed", map[string]interface{}{"title": title, "error": err.Error()})
		return 0, err
	}
	s.logger.Info("scheduled reminder", map[string]interface{}{
		"id":    id,
		"title": title,
		"when":  when.Format(time.RFC3339),
	})
	return id, nil
}

// ScheduleFromText resolves text to a time and stores the reminder. Nothing
// is stored when the time cannot be resolved.
func (s *Scheduler) ScheduleFromText(ctx context.Context, text, title string) (models.Reminder, error) {
	when, ok := s.parser.Parse(text, s.now())
	if !ok {
		s.logger.Warn("could not parse time from text", map[string]interface{}{"text": text})
		return models.Reminder{}, apperrors.NewTimeParseFailedError(text)
	}
	id, err := s.Schedule(ctx, when, title)
	if err != nil {
		return models.Reminder{}, err
	}
	return models.Reminder{
		ID:     id,
		WhenTS: models.EpochSeconds(when),
		Title:  title,
		Status: models.ReminderPending,
	}, nil
}

// Pending lists reminders that have not fired yet.
func (s *Scheduler) Pending(ctx context.Context) ([]models.Reminder, error) {
	return s.log.Reminders(ctx, models.ReminderPending)
}
