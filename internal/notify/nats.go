// nats.go publishes reminders as JSON events on a NATS subject so other
// services (a dashboard, a phone bridge) can consume them.
//
// Delivery is core NATS publish, fire-and-forget: reminders are ephemeral
// and an occurrence missed by a subscriber is simply gone, matching the
// scheduler's own no-catch-up policy. Authentication uses an optional NKey
// seed; without one the connection is anonymous.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// NATSConfig holds the connection settings for the NATS backend.
type NATSConfig struct {
	Servers  string // Comma-separated list of NATS server URLs
	NKeySeed string // Optional NKey seed for authentication (starts with SU)
	Subject  string // Subject reminders are published on
	Name     string // Client connection name
}

// NATS publishes reminder events to a subject.
type NATS struct {
	config NATSConfig
	nc     *nats.Conn
	logger *slog.Logger
}

// reminderEvent is the wire form of a published reminder.
type reminderEvent struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// reminderPayload carries the slot details and the countdown.
type reminderPayload struct {
	Day         string `json:"day"`
	Start       string `json:"start"`
	Subject     string `json:"subject"`
	Code        string `json:"code,omitempty"`
	Faculty     string `json:"faculty,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Label       string `json:"slot,omitempty"`
	MinutesLeft int    `json:"minutes_left"`
	StartsAt    string `json:"starts_at"`
	Semester    string `json:"semester,omitempty"`
}

// NewNATS creates a NATS notifier. Connect must be called before Notify.
func NewNATS(cfg NATSConfig, logger *slog.Logger) *NATS {
	if cfg.Subject == "" {
		cfg.Subject = "timetable.reminders"
	}
	if cfg.Name == "" {
		cfg.Name = "timetable-alert"
	}
	return &NATS{
		config: cfg,
		logger: logger.With(slog.String("component", "nats")),
	}
}

// Connect establishes the connection to the NATS servers.
func (n *NATS) Connect() error {
	opts := []nats.Option{
		nats.Name(n.config.Name),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1), // Unlimited reconnects
		nats.PingInterval(30 * time.Second),
		nats.MaxPingsOutstanding(3),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				n.logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("nats reconnected", slog.String("server", nc.ConnectedUrl()))
		}),
	}

	if seed := strings.TrimSpace(n.config.NKeySeed); seed != "" {
		kp, err := nkeys.FromSeed([]byte(seed))
		if err != nil {
			return fmt.Errorf("invalid nkey seed: %w", err)
		}
		pubKey, err := kp.PublicKey()
		if err != nil {
			return fmt.Errorf("failed to get public key: %w", err)
		}
		opts = append(opts, nats.Nkey(pubKey, func(nonce []byte) ([]byte, error) {
			return kp.Sign(nonce)
		}))
	}

	nc, err := nats.Connect(n.config.Servers, opts...)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	n.nc = nc

	n.logger.Info("connected to nats",
		slog.String("server", nc.ConnectedUrl()),
		slog.String("subject", n.config.Subject),
	)
	return nil
}

// Notify publishes the reminder event.
func (n *NATS) Notify(_ context.Context, r Reminder) error {
	if n.nc == nil {
		return fmt.Errorf("nats notifier is not connected")
	}

	s := r.Slot
	payload, err := json.Marshal(reminderPayload{
		Day:         s.Day.String(),
		Start:       s.Start.String(),
		Subject:     s.Subject,
		Code:        s.Code,
		Faculty:     s.Faculty,
		Venue:       s.Venue,
		Label:       s.Label,
		MinutesLeft: r.MinutesLeft,
		StartsAt:    r.StartsAt.Format(time.RFC3339),
		Semester:    r.Semester,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder payload: %w", err)
	}

	event, err := json.Marshal(reminderEvent{
		Type:      "class_reminder",
		Timestamp: r.FiredAt.UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder event: %w", err)
	}

	if err := n.nc.Publish(n.config.Subject, event); err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}
	return nil
}

// Shutdown drains the connection so queued publishes flush before close.
func (n *NATS) Shutdown(ctx context.Context) error {
	if n.nc == nil {
		return nil
	}
	defer n.nc.Close()

	if err := n.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats connection: %w", err)
	}
	return nil
}
