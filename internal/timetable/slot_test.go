// slot_test.go verifies slot parsing and the trigger-time arithmetic,
// including rolls across midnight and across the week boundary.
package timetable

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("valid times", func(t *testing.T) {
		cases := map[string]TimeOfDay{
			"09:00":  {9, 0},
			"00:00":  {0, 0},
			"23:59":  {23, 59},
			" 8:05 ": {8, 5},
		}
		for in, want := range cases {
			got, err := ParseTimeOfDay(in)
			if err != nil {
				t.Errorf("ParseTimeOfDay(%q) failed: %v", in, err)
				continue
			}
			if got != want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", in, got, want)
			}
		}
	})

	t.Run("invalid times", func(t *testing.T) {
		for _, in := range []string{"", "9", "24:00", "12:60", "ab:cd", "-1:30", "12:30:15"} {
			if _, err := ParseTimeOfDay(in); !errors.Is(err, ErrInvalidStartTime) {
				t.Errorf("ParseTimeOfDay(%q): expected ErrInvalidStartTime, got %v", in, err)
			}
		}
	})
}

func TestParseDay(t *testing.T) {
	t.Run("full and short names", func(t *testing.T) {
		cases := map[string]time.Weekday{
			"Monday":   time.Monday,
			"monday":   time.Monday,
			"mon":      time.Monday,
			"SUNDAY":   time.Sunday,
			"sat":      time.Saturday,
			" Friday ": time.Friday,
		}
		for in, want := range cases {
			got, err := ParseDay(in)
			if err != nil {
				t.Errorf("ParseDay(%q) failed: %v", in, err)
				continue
			}
			if got != want {
				t.Errorf("ParseDay(%q) = %v, want %v", in, got, want)
			}
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, in := range []string{"", "Mondy", "funday", "8"} {
			if _, err := ParseDay(in); !errors.Is(err, ErrInvalidDay) {
				t.Errorf("ParseDay(%q): expected ErrInvalidDay, got %v", in, err)
			}
		}
	})
}

func TestTrigger(t *testing.T) {
	cases := []struct {
		name     string
		slot     Slot
		wantDay  time.Weekday
		wantTime TimeOfDay
	}{
		{
			name:     "simple lead within the day",
			slot:     Slot{Day: time.Monday, Start: TimeOfDay{9, 0}, LeadMinutes: 10},
			wantDay:  time.Monday,
			wantTime: TimeOfDay{8, 50},
		},
		{
			name:     "zero lead fires at start",
			slot:     Slot{Day: time.Wednesday, Start: TimeOfDay{14, 30}, LeadMinutes: 0},
			wantDay:  time.Wednesday,
			wantTime: TimeOfDay{14, 30},
		},
		{
			name:     "underflow rolls into previous day",
			slot:     Slot{Day: time.Monday, Start: TimeOfDay{0, 4}, LeadMinutes: 10},
			wantDay:  time.Sunday,
			wantTime: TimeOfDay{23, 54},
		},
		{
			name:     "underflow rolls across the week boundary",
			slot:     Slot{Day: time.Sunday, Start: TimeOfDay{0, 0}, LeadMinutes: 1},
			wantDay:  time.Saturday,
			wantTime: TimeOfDay{23, 59},
		},
		{
			name:     "lead longer than a day",
			slot:     Slot{Day: time.Tuesday, Start: TimeOfDay{8, 0}, LeadMinutes: 25 * 60},
			wantDay:  time.Monday,
			wantTime: TimeOfDay{7, 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			day, tod := tc.slot.Trigger()
			if day != tc.wantDay || tod != tc.wantTime {
				t.Errorf("Trigger() = %v %v, want %v %v", day, tod, tc.wantDay, tc.wantTime)
			}
		})
	}
}

func TestSlotKey(t *testing.T) {
	a := Slot{Day: time.Monday, Start: TimeOfDay{9, 0}, Code: "PHY101", Label: "A1"}
	b := Slot{Day: time.Monday, Start: TimeOfDay{9, 0}, Code: "PHY101", Label: "A1"}
	c := Slot{Day: time.Tuesday, Start: TimeOfDay{9, 0}, Code: "PHY101", Label: "A1"}

	if a.Key() != b.Key() {
		t.Errorf("identical slots should share a key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("slots on different days should not share a key: %q", a.Key())
	}
}
