// Package reminder turns timetable slots into weekly recurring triggers.
// It wraps robfig/cron: one cron entry per slot, firing at the slot's
// trigger instant (start time minus lead) in the configured location.
//
// Occurrences that pass while the process is not running are skipped; there
// is no catch-up and no backlog. On restart cron computes every entry's next
// activation from the current clock, so a class later the same day still
// gets its reminder.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Kamaleshyeager/Time-Table-Alert/internal/notify"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/timetable"
)

// notifyTimeout bounds a single delivery attempt, retries included.
const notifyTimeout = time.Minute

// OverlapPolicy decides what happens when a trigger fires while the previous
// run of the same entry is still delivering.
type OverlapPolicy string

const (
	// OverlapSkip drops the new occurrence (default).
	OverlapSkip OverlapPolicy = "skip"
	// OverlapDelay queues the new occurrence behind the running one.
	OverlapDelay OverlapPolicy = "delay"
)

// Scheduler owns the set of registered reminder jobs. All mutation goes
// through Register/Unregister; jobs fire on cron's background goroutine.
type Scheduler struct {
	cron     *cron.Cron
	loc      *time.Location
	logger   *slog.Logger
	semester string

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a scheduler firing in the given location. The cron runner is
// wrapped so a panicking notifier is recovered and overlapping runs of one
// entry follow the chosen policy.
func New(loc *time.Location, policy OverlapPolicy, logger *slog.Logger) *Scheduler {
	schedLogger := logger.With(slog.String("component", "reminder"))
	cl := cronLogger{schedLogger}

	wrappers := []cron.JobWrapper{cron.Recover(cl)}
	switch policy {
	case OverlapDelay:
		wrappers = append(wrappers, cron.DelayIfStillRunning(cl))
	default:
		wrappers = append(wrappers, cron.SkipIfStillRunning(cl))
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(wrappers...),
		),
		loc:     loc,
		logger:  schedLogger,
		entries: make(map[string]cron.EntryID),
	}
}

// SetSemester sets the semester label carried on every reminder payload.
func (s *Scheduler) SetSemester(semester string) {
	s.semester = semester
}

// Register replaces the registered job set with one weekly entry per slot.
// Each entry is bound to its own slot value; the slot list itself is never
// retained or modified. Any rejected cron spec fails the whole registration.
func (s *Scheduler) Register(slots []timetable.Slot, notifier notify.Notifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, key)
	}

	for _, slot := range slots {
		slot := slot
		spec := cronSpec(slot)
		id, err := s.cron.AddFunc(spec, func() {
			s.fire(slot, notifier)
		})
		if err != nil {
			return fmt.Errorf("register slot %s: %w", slot, err)
		}
		s.entries[slot.Key()] = id

		day, tod := slot.Trigger()
		s.logger.Debug("registered reminder",
			slog.String("slot", slot.String()),
			slog.String("trigger", fmt.Sprintf("%s %s", day, tod)),
			slog.Int("lead_minutes", slot.LeadMinutes),
		)
	}

	s.logger.Info("reminders registered", slog.Int("count", len(slots)))
	return nil
}

// Unregister cancels the entry for a single slot by its key. Returns false
// if no entry with that key exists.
func (s *Scheduler) Unregister(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[key]
	if !ok {
		return false
	}
	s.cron.Remove(id)
	delete(s.entries, key)
	return true
}

// Start launches the cron runner. Registered entries begin firing at their
// next activation after now.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("entries", s.Entries()))
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// NextActivation returns the earliest upcoming trigger instant across all
// entries, or the zero time if nothing is registered. Only meaningful after
// Start.
func (s *Scheduler) NextActivation() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// Shutdown stops the runner and waits for in-flight deliveries to finish,
// bounded by the context deadline.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running reminders: %w", ctx.Err())
	}
}

// fire builds the reminder payload for one occurrence and hands it to the
// notifier. A delivery failure is logged and swallowed: one broken
// notification must never take down the runner or other entries.
func (s *Scheduler) fire(slot timetable.Slot, notifier notify.Notifier) {
	s.fireAt(slot, notifier, time.Now().In(s.loc))
}

// fireAt is fire with an explicit firing instant, split out for tests.
func (s *Scheduler) fireAt(slot timetable.Slot, notifier notify.Notifier, now time.Time) {
	startsAt := classStart(slot, now)

	minutesLeft := int(startsAt.Sub(now).Round(time.Minute) / time.Minute)
	if minutesLeft < 0 {
		minutesLeft = 0
	}

	r := notify.Reminder{
		Slot:        slot,
		FiredAt:     now,
		StartsAt:    startsAt,
		MinutesLeft: minutesLeft,
		Semester:    s.semester,
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := notifier.Notify(ctx, r); err != nil {
		s.logger.Warn("reminder delivery failed",
			slog.String("slot", slot.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("reminder fired",
		slog.String("slot", slot.String()),
		slog.Int("minutes_left", minutesLeft),
	)
}

// cronSpec renders the slot's trigger as a standard 5-field cron expression.
// robfig/cron and time.Weekday agree that Sunday is 0.
func cronSpec(slot timetable.Slot) string {
	day, tod := slot.Trigger()
	return fmt.Sprintf("%d %d * * %d", tod.Minute, tod.Hour, int(day))
}

// classStart returns this occurrence's class start instant: the next day
// matching the slot's weekday at the slot's start time. With an on-time
// firing that is lead minutes away; a trigger that rolled into the previous
// day yields the following day's start. A fire delayed past the start keeps
// the passed instant (minutes left clamps to zero).
func classStart(slot timetable.Slot, now time.Time) time.Time {
	daysAhead := (int(slot.Day) - int(now.Weekday()) + 7) % 7
	return time.Date(now.Year(), now.Month(), now.Day()+daysAhead,
		slot.Start.Hour, slot.Start.Minute, 0, 0, now.Location())
}

// cronLogger adapts slog to cron's logging interface. Routine messages are
// demoted to debug: cron logs every wake-up.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append(keysAndValues, "error", err.Error())
	c.l.Error(msg, args...)
}
