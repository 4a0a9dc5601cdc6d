// Package scheduler runs the background reminder loop.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/normanking/pia/internal/notify"
	"github.com/normanking/pia/internal/store"
)

// Scheduler polls the reminder collection once per interval and delivers
// every due reminder through the notification sinks. A reminder fires at
// most once: the due entries are removed from the document in the same
// locked pass that selects them.
type Scheduler struct {
	store    *store.Store
	sinks    *notify.Set
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a scheduler. interval is typically one minute; the due check
// compares at minute precision, so shorter intervals only add redundant
// no-op passes.
func New(st *store.Store, sinks *notify.Set, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		store:    st,
		sinks:    sinks,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, checking for due reminders once per
// interval. A panicking pass is logged and absorbed so the loop stays
// alive for the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("reminder loop started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder loop stopped")
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *Scheduler) check() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reminder check panicked", "panic", r)
		}
	}()

	due, err := s.store.TakeDue(s.now())
	if err != nil {
		s.logger.Error("failed to check reminders", "error", err)
		return
	}

	for _, reminder := range due {
		s.fire(reminder)
	}
}

// fire delivers one due reminder to every sink. The reminder is already
// removed from the store at this point, so delivery faults are logged but
// cannot bring it back.
func (s *Scheduler) fire(reminder store.Reminder) {
	text := fmt.Sprintf("Reminder: %s", reminder.Content)
	s.logger.Info("reminder due", "id", reminder.ID, "content", reminder.Content)

	for _, result := range s.sinks.Send(text) {
		if !result.OK {
			s.logger.Warn("reminder delivery failed", "sink", result.Sink, "detail", result.Detail)
		}
	}
}
