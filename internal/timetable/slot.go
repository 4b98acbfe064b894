// Package timetable holds the weekly class timetable: parsing of the
// configured entries into immutable Slot values and the trigger-time
// arithmetic the reminder scheduler is built on.
package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validation errors returned while loading timetable entries.
var (
	ErrInvalidDay       = errors.New("invalid day of week")
	ErrInvalidStartTime = errors.New("invalid start time, expected HH:MM")
	ErrNegativeLead     = errors.New("lead_minutes must not be negative")
	ErrEmptySubject     = errors.New("subject is required")
)

// minutesPerWeek is the modulus for trigger arithmetic: a lead time that
// underflows midnight rolls into the previous day, and Sunday rolls into
// Saturday.
const minutesPerWeek = 7 * 24 * 60

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a "HH:MM" string (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// ParseDay parses a weekday name. Full names ("Monday") and three-letter
// abbreviations ("mon") are accepted, case-insensitive.
func ParseDay(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Slot is one recurring weekly class entry. Slots are built once at load
// time and never mutated afterwards.
type Slot struct {
	Day         time.Weekday
	Start       TimeOfDay
	LeadMinutes int

	Subject string
	Code    string
	Faculty string
	Venue   string
	Label   string
}

// Trigger returns the weekly instant at which the reminder for this slot
// fires: the start time minus the lead, computed modulo the week so that a
// lead crossing midnight lands on the previous day.
func (s Slot) Trigger() (time.Weekday, TimeOfDay) {
	total := int(s.Day)*24*60 + s.Start.Minutes() - s.LeadMinutes
	total = ((total % minutesPerWeek) + minutesPerWeek) % minutesPerWeek
	day := time.Weekday(total / (24 * 60))
	rem := total % (24 * 60)
	return day, TimeOfDay{Hour: rem / 60, Minute: rem % 60}
}

// Key returns a deterministic identity for the slot, used as the scheduler's
// job id. Two slots sharing day, start, code and label collide, which mirrors
// the duplicate-entry behaviour of the stored timetable.
func (s Slot) Key() string {
	return fmt.Sprintf("%s-%s-%s-%s", strings.ToLower(s.Day.String()[:3]), s.Start, s.Code, s.Label)
}

// String is the compact human-readable form used in logs.
func (s Slot) String() string {
	return fmt.Sprintf("%s %s %s (%s)", s.Day, s.Start, s.Subject, s.Venue)
}

// validate checks a single slot's invariants.
func (s Slot) validate() error {
	if s.LeadMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeLead, s.LeadMinutes)
	}
	if strings.TrimSpace(s.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}
