// telegram.go delivers reminders as Telegram messages via the Bot API.
//
// The HTTP client wraps hashicorp/go-retryablehttp so a transient network
// hiccup does not silently drop a reminder:
//   - RetryMax: 3 retries
//   - RetryWaitMin/Max: 1s / 10s with linear jitter
//   - Timeout: 30 seconds per request
// Retries stay inside the single Notify call; a reminder that still fails
// after retries is logged by the scheduler and abandoned.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends reminders to a single chat via the Bot API sendMessage
// endpoint.
type Telegram struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
	logger     *slog.Logger
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewTelegram creates a Telegram notifier for the given bot token and chat.
func NewTelegram(token, chatID string, logger *slog.Logger) *Telegram {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Backoff = retryablehttp.LinearJitterBackoff

	// Disable retryablehttp's internal logging - we use slog instead
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = 30 * time.Second

	return &Telegram{
		httpClient: retryClient.StandardClient(),
		baseURL:    telegramAPIBase,
		token:      token,
		chatID:     chatID,
		logger:     logger.With(slog.String("component", "telegram")),
	}
}

// SetBaseURL overrides the Bot API base URL. Used by tests.
func (t *Telegram) SetBaseURL(u string) {
	t.baseURL = u
}

// Notify sends the reminder as a Markdown message.
func (t *Telegram) Notify(ctx context.Context, r Reminder) error {
	payload := sendMessageRequest{
		ChatID:    t.chatID,
		Text:      formatMessage(r),
		ParseMode: "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, string(respBody))
	}

	t.logger.Debug("reminder delivered",
		slog.String("subject", r.Slot.Subject),
		slog.String("chat_id", t.chatID),
	)
	return nil
}

// formatMessage renders the reminder as the Markdown body sent to the chat.
func formatMessage(r Reminder) string {
	s := r.Slot
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "*%s*\n", r.FiredAt.Format("02-Jan-2006 (Monday)"))
	fmt.Fprintf(&buf, "*%s* (in ~%d min)\n", s.Start, r.MinutesLeft)
	if s.Label != "" {
		fmt.Fprintf(&buf, "*Slot:* %s\n", s.Label)
	}
	if s.Code != "" {
		fmt.Fprintf(&buf, "*%s* — %s\n", s.Code, s.Subject)
	} else {
		fmt.Fprintf(&buf, "*%s*\n", s.Subject)
	}
	if s.Faculty != "" {
		fmt.Fprintf(&buf, "*Faculty:* %s\n", s.Faculty)
	}
	if s.Venue != "" {
		fmt.Fprintf(&buf, "*Venue:* %s\n", s.Venue)
	}
	if r.Semester != "" {
		fmt.Fprintf(&buf, "*Semester:* %s", r.Semester)
	}
	return buf.String()
}
