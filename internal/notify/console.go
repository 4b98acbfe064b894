// console.go is the simplest backend: one human-readable line per reminder
// on stdout. Useful when the daemon runs in a terminal or its journal is
// the delivery channel.

package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Console writes reminders as single lines to an io.Writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier writing to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a console notifier writing to w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify writes one line for the reminder. The mutex keeps coincident
// triggers from interleaving their output.
func (c *Console) Notify(_ context.Context, r Reminder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := r.Slot
	_, err := fmt.Fprintf(c.out, "[%s] %s in %d min: %s %s — %s (venue %s)\n",
		r.FiredAt.Format("Mon 15:04"),
		s.Start,
		r.MinutesLeft,
		s.Code,
		s.Subject,
		s.Faculty,
		s.Venue,
	)
	if err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}
