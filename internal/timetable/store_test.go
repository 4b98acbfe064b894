package timetable

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestLoad(t *testing.T) {
	t.Run("valid entries produce ordered slots", func(t *testing.T) {
		entries := []Entry{
			{Day: "Wednesday", Start: "10:00", Subject: "Maths"},
			{Day: "Monday", Start: "11:00", Subject: "Physics"},
			{Day: "Monday", Start: "09:00", Subject: "Chemistry"},
		}

		store, err := Load(entries, 5)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if store.Len() != 3 {
			t.Fatalf("expected 3 slots, got %d", store.Len())
		}

		slots := store.Slots()
		if slots[0].Subject != "Chemistry" || slots[1].Subject != "Physics" || slots[2].Subject != "Maths" {
			t.Errorf("unexpected order: %v %v %v", slots[0].Subject, slots[1].Subject, slots[2].Subject)
		}
	})

	t.Run("default lead applies when entry has none", func(t *testing.T) {
		store, err := Load([]Entry{
			{Day: "Monday", Start: "09:00", Subject: "Physics"},
			{Day: "Monday", Start: "10:00", Subject: "Maths", LeadMinutes: intPtr(15)},
			{Day: "Monday", Start: "11:00", Subject: "Lab", LeadMinutes: intPtr(0)},
		}, 5)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		slots := store.Slots()
		if slots[0].LeadMinutes != 5 {
			t.Errorf("expected default lead 5, got %d", slots[0].LeadMinutes)
		}
		if slots[1].LeadMinutes != 15 {
			t.Errorf("expected override lead 15, got %d", slots[1].LeadMinutes)
		}
		if slots[2].LeadMinutes != 0 {
			t.Errorf("explicit zero lead must not fall back to default, got %d", slots[2].LeadMinutes)
		}
	})

	t.Run("negative lead fails the load", func(t *testing.T) {
		_, err := Load([]Entry{
			{Day: "Monday", Start: "09:00", Subject: "Physics", LeadMinutes: intPtr(-1)},
		}, 5)
		if !errors.Is(err, ErrNegativeLead) {
			t.Errorf("expected ErrNegativeLead, got %v", err)
		}
	})

	t.Run("negative default lead fails the load", func(t *testing.T) {
		_, err := Load([]Entry{{Day: "Monday", Start: "09:00", Subject: "Physics"}}, -5)
		if !errors.Is(err, ErrNegativeLead) {
			t.Errorf("expected ErrNegativeLead, got %v", err)
		}
	})

	t.Run("invalid time fails the load", func(t *testing.T) {
		_, err := Load([]Entry{{Day: "Monday", Start: "25:00", Subject: "Physics"}}, 5)
		if !errors.Is(err, ErrInvalidStartTime) {
			t.Errorf("expected ErrInvalidStartTime, got %v", err)
		}
	})

	t.Run("invalid day fails the load", func(t *testing.T) {
		_, err := Load([]Entry{{Day: "Someday", Start: "09:00", Subject: "Physics"}}, 5)
		if !errors.Is(err, ErrInvalidDay) {
			t.Errorf("expected ErrInvalidDay, got %v", err)
		}
	})

	t.Run("missing subject fails the load", func(t *testing.T) {
		_, err := Load([]Entry{{Day: "Monday", Start: "09:00"}}, 5)
		if !errors.Is(err, ErrEmptySubject) {
			t.Errorf("expected ErrEmptySubject, got %v", err)
		}
	})

	t.Run("one bad entry fails the whole load", func(t *testing.T) {
		_, err := Load([]Entry{
			{Day: "Monday", Start: "09:00", Subject: "Physics"},
			{Day: "Tuesday", Start: "bad", Subject: "Maths"},
		}, 5)
		if err == nil {
			t.Fatal("expected error for partially invalid timetable")
		}
	})

	t.Run("empty timetable loads as empty store", func(t *testing.T) {
		store, err := Load(nil, 5)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("expected empty store, got %d slots", store.Len())
		}
	})
}

func TestLoadParsesFields(t *testing.T) {
	store, err := Load([]Entry{{
		Day:     "tue",
		Start:   "08:00",
		Subject: "Law and Economics",
		Code:    "LAW2113",
		Faculty: "Dr. Rao",
		Venue:   "AB-2 410",
		Label:   "A1",
	}}, 5)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	slot := store.Slots()[0]
	if slot.Day != time.Tuesday {
		t.Errorf("expected Tuesday, got %v", slot.Day)
	}
	if slot.Start != (TimeOfDay{8, 0}) {
		t.Errorf("expected 08:00, got %v", slot.Start)
	}
	if slot.Code != "LAW2113" || slot.Faculty != "Dr. Rao" || slot.Venue != "AB-2 410" || slot.Label != "A1" {
		t.Errorf("free-text fields not carried over: %+v", slot)
	}
}
