// store.go builds the authoritative Slot list from raw config entries.
// The store is load-once: reloading means building a new Store and handing
// its slots to the scheduler again.

package timetable

import (
	"fmt"
	"sort"
)

// Entry is one raw timetable row as it appears in the config file, before
// parsing and validation. Tagged for both koanf (loading) and yaml (saving).
type Entry struct {
	Day         string `koanf:"day" yaml:"day"`
	Start       string `koanf:"start" yaml:"start"`
	LeadMinutes *int   `koanf:"lead_minutes" yaml:"lead_minutes,omitempty"`
	Subject     string `koanf:"subject" yaml:"subject"`
	Code        string `koanf:"code" yaml:"code,omitempty"`
	Faculty     string `koanf:"faculty" yaml:"faculty,omitempty"`
	Venue       string `koanf:"venue" yaml:"venue,omitempty"`
	Label       string `koanf:"slot" yaml:"slot,omitempty"`
}

// Store owns the loaded slot list. The slice handed out by Slots is shared
// and must be treated as read-only; no mutation is exposed.
type Store struct {
	slots []Slot
}

// Load parses and validates the raw entries into an ordered slot list.
// Entries without their own lead_minutes inherit defaultLead. Any malformed
// entry fails the whole load: a broken timetable must not register a partial
// set of reminders.
func Load(entries []Entry, defaultLead int) (*Store, error) {
	if defaultLead < 0 {
		return nil, fmt.Errorf("default %w: %d", ErrNegativeLead, defaultLead)
	}

	slots := make([]Slot, 0, len(entries))
	for i, e := range entries {
		slot, err := parseEntry(e, defaultLead)
		if err != nil {
			return nil, fmt.Errorf("timetable entry %d: %w", i, err)
		}
		slots = append(slots, slot)
	}

	// Stable order: day, then start time. Config order breaks ties.
	sort.SliceStable(slots, func(a, b int) bool {
		if slots[a].Day != slots[b].Day {
			return slots[a].Day < slots[b].Day
		}
		return slots[a].Start.Minutes() < slots[b].Start.Minutes()
	})

	return &Store{slots: slots}, nil
}

// parseEntry converts one raw entry into a validated Slot.
func parseEntry(e Entry, defaultLead int) (Slot, error) {
	day, err := ParseDay(e.Day)
	if err != nil {
		return Slot{}, err
	}

	start, err := ParseTimeOfDay(e.Start)
	if err != nil {
		return Slot{}, err
	}

	lead := defaultLead
	if e.LeadMinutes != nil {
		lead = *e.LeadMinutes
	}

	slot := Slot{
		Day:         day,
		Start:       start,
		LeadMinutes: lead,
		Subject:     e.Subject,
		Code:        e.Code,
		Faculty:     e.Faculty,
		Venue:       e.Venue,
		Label:       e.Label,
	}

	if err := slot.validate(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Slots returns the ordered slot list.
func (s *Store) Slots() []Slot {
	return s.slots
}

// Len returns the number of loaded slots.
func (s *Store) Len() int {
	return len(s.slots)
}
