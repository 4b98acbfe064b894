// telegram_test.go exercises the Telegram backend against a mock Bot API
// server.
package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kamaleshyeager/Time-Table-Alert/internal/timetable"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testReminder() Reminder {
	return Reminder{
		Slot: timetable.Slot{
			Day:         time.Monday,
			Start:       timetable.TimeOfDay{Hour: 9, Minute: 0},
			LeadMinutes: 10,
			Subject:     "Physics",
			Code:        "PHY101",
			Faculty:     "Dr. Rao",
			Venue:       "A1",
			Label:       "A1",
		},
		FiredAt:     time.Date(2026, 9, 7, 8, 50, 0, 0, time.UTC),
		StartsAt:    time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		MinutesLeft: 10,
		Semester:    "Fall Sem",
	}
}

func TestTelegramNotify(t *testing.T) {
	t.Run("sends sendMessage with chat and markdown body", func(t *testing.T) {
		var gotPath string
		var gotBody sendMessageRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tg := NewTelegram("123:abc", "42", nopLogger())
		tg.SetBaseURL(server.URL)

		if err := tg.Notify(context.Background(), testReminder()); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}

		if gotPath != "/bot123:abc/sendMessage" {
			t.Errorf("unexpected path %q", gotPath)
		}
		if gotBody.ChatID != "42" {
			t.Errorf("expected chat_id 42, got %q", gotBody.ChatID)
		}
		if gotBody.ParseMode != "Markdown" {
			t.Errorf("expected Markdown parse mode, got %q", gotBody.ParseMode)
		}
		for _, want := range []string{"Physics", "PHY101", "Dr. Rao", "A1", "in ~10 min", "Fall Sem"} {
			if !strings.Contains(gotBody.Text, want) {
				t.Errorf("message body missing %q:\n%s", want, gotBody.Text)
			}
		}
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
		}))
		defer server.Close()

		tg := NewTelegram("123:abc", "42", nopLogger())
		tg.SetBaseURL(server.URL)

		err := tg.Notify(context.Background(), testReminder())
		if err == nil {
			t.Fatal("expected error for 403 response")
		}
		if !strings.Contains(err.Error(), "403") {
			t.Errorf("expected status code in error, got: %v", err)
		}
	})
}

func TestFormatMessage(t *testing.T) {
	t.Run("optional fields are omitted when empty", func(t *testing.T) {
		r := testReminder()
		r.Slot.Code = ""
		r.Slot.Faculty = ""
		r.Slot.Venue = ""
		r.Slot.Label = ""
		r.Semester = ""

		msg := formatMessage(r)
		for _, banned := range []string{"Slot:", "Faculty:", "Venue:", "Semester:", "—"} {
			if strings.Contains(msg, banned) {
				t.Errorf("message should omit %q when empty:\n%s", banned, msg)
			}
		}
		if !strings.Contains(msg, "*Physics*") {
			t.Errorf("subject missing from message:\n%s", msg)
		}
	})

	t.Run("date line reflects the firing day", func(t *testing.T) {
		msg := formatMessage(testReminder())
		if !strings.Contains(msg, "07-Sep-2026 (Monday)") {
			t.Errorf("expected firing date in message:\n%s", msg)
		}
	})
}
