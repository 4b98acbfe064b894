// Package notify defines the reminder payload and the delivery capability
// the scheduler fires into. Backends (console, Telegram, NATS) are
// interchangeable behind the single-method Notifier interface; delivery is
// fire-and-forget and a failed attempt is the caller's to log, never to
// retry across occurrences.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kamaleshyeager/Time-Table-Alert/internal/timetable"
)

// Reminder is the payload handed to a backend when a slot's trigger fires.
type Reminder struct {
	Slot timetable.Slot

	// FiredAt is when the trigger actually fired, StartsAt the wall-clock
	// instant the class begins. MinutesLeft is the rounded gap between the
	// two; with an on-time firing it equals the slot's lead.
	FiredAt     time.Time
	StartsAt    time.Time
	MinutesLeft int

	Semester string
}

// Notifier delivers a single reminder. Implementations must be safe for
// concurrent use: coincident triggers dispatch independently.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// Multi fans a reminder out to several backends. A backend failure is
// logged and does not stop delivery to the remaining backends; Notify
// returns the first error for the caller's bookkeeping.
type Multi struct {
	backends []Notifier
	logger   *slog.Logger
}

// NewMulti builds a fan-out notifier over the given backends.
func NewMulti(logger *slog.Logger, backends ...Notifier) *Multi {
	return &Multi{
		backends: backends,
		logger:   logger.With(slog.String("component", "notify")),
	}
}

// Notify delivers the reminder to every backend.
func (m *Multi) Notify(ctx context.Context, r Reminder) error {
	var firstErr error
	for _, b := range m.backends {
		if err := b.Notify(ctx, r); err != nil {
			m.logger.Warn("notification backend failed",
				slog.String("subject", r.Slot.Subject),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
