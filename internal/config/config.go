// Package config provides configuration management for the timetable alert
// daemon. It uses koanf v2 to load configuration from a YAML file: runtime
// settings, notification backends, and the timetable itself.
//
// Configuration is loaded from /etc/timetable-alert/config.yaml by default.
// The file should have restricted permissions (0600) when the Telegram bot
// token or a NATS NKey seed is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"

	"github.com/Kamaleshyeager/Time-Table-Alert/internal/timetable"
)

// DefaultConfigPath is the default location for the daemon configuration file.
const DefaultConfigPath = "/etc/timetable-alert/config.yaml"

// Notifier backend names accepted in the notifiers list.
const (
	NotifierConsole  = "console"
	NotifierTelegram = "telegram"
	NotifierNATS     = "nats"
)

// TelegramConfig holds the Telegram delivery settings.
type TelegramConfig struct {
	// BotToken is the Bot API token issued by BotFather.
	BotToken string `koanf:"bot_token" yaml:"bot_token"`

	// ChatID is the chat the reminders are sent to.
	ChatID string `koanf:"chat_id" yaml:"chat_id"`
}

// NATSConfig holds the NATS delivery settings.
type NATSConfig struct {
	// Servers is a comma-separated list of NATS server URLs.
	Servers string `koanf:"servers" yaml:"servers"`

	// NKeySeed is the optional NKey seed for authentication.
	NKeySeed string `koanf:"nkey_seed" yaml:"nkey_seed"`

	// Subject is the subject reminders are published on.
	// Default: "timetable.reminders".
	Subject string `koanf:"subject" yaml:"subject"`
}

// Config holds the daemon configuration loaded from the YAML config file.
// Fields are tagged for both koanf (loading) and yaml (saving).
type Config struct {
	// LogLevel controls the verbosity of daemon logging.
	// Valid values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// Timezone is the IANA name of the clock the timetable is written in
	// (e.g. "Asia/Kolkata"). Empty means the system's local time.
	Timezone string `koanf:"timezone" yaml:"timezone"`

	// LeadMinutes is the default reminder lead applied to classes that do
	// not set their own. Default: 5.
	LeadMinutes *int `koanf:"lead_minutes" yaml:"lead_minutes"`

	// OverlapPolicy decides what happens when a trigger fires while the
	// previous run of the same entry is still delivering: "skip" or
	// "delay". Default: "skip".
	OverlapPolicy string `koanf:"overlap_policy" yaml:"overlap_policy"`

	// Semester is a free-text label included in every reminder.
	Semester string `koanf:"semester" yaml:"semester"`

	// Notifiers lists the enabled delivery backends. Default: ["console"].
	Notifiers []string `koanf:"notifiers" yaml:"notifiers"`

	Telegram TelegramConfig `koanf:"telegram" yaml:"telegram"`
	NATS     NATSConfig     `koanf:"nats" yaml:"nats"`

	// Classes is the weekly timetable. Parsed and validated by the
	// timetable package; config only checks backend wiring.
	Classes []timetable.Entry `koanf:"classes" yaml:"classes"`
}

// Validation errors returned by Load.
var (
	ErrNoClasses            = errors.New("classes list is empty, nothing to schedule")
	ErrUnknownNotifier      = errors.New("unknown notifier backend")
	ErrTelegramCredentials  = errors.New("telegram notifier requires bot_token and chat_id")
	ErrNATSServers          = errors.New("nats notifier requires servers")
	ErrInvalidOverlapPolicy = errors.New("overlap_policy must be \"skip\" or \"delay\"")
	ErrInvalidTimezone      = errors.New("invalid timezone")
)

// Load reads configuration from the specified YAML file path.
// It applies defaults for optional fields and validates the settings.
// The classes themselves are validated separately by timetable.Load.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LeadMinutes == nil {
		lead := 5
		c.LeadMinutes = &lead
	}
	if c.OverlapPolicy == "" {
		c.OverlapPolicy = "skip"
	}
	if len(c.Notifiers) == 0 {
		c.Notifiers = []string{NotifierConsole}
	}
}

// validate checks notifier wiring and general settings. A backend listed
// without its credentials is a startup failure, not a runtime surprise.
func (c *Config) validate() error {
	if len(c.Classes) == 0 {
		return ErrNoClasses
	}
	if c.OverlapPolicy != "skip" && c.OverlapPolicy != "delay" {
		return fmt.Errorf("%w, got %q", ErrInvalidOverlapPolicy, c.OverlapPolicy)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidTimezone, c.Timezone, err)
		}
	}
	for _, name := range c.Notifiers {
		switch name {
		case NotifierConsole:
		case NotifierTelegram:
			if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
				return ErrTelegramCredentials
			}
		case NotifierNATS:
			if c.NATS.Servers == "" {
				return ErrNATSServers
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownNotifier, name)
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the local clock.
// The name is validated at load time, so resolution only fails for a config
// that bypassed Load.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, c.Timezone, err)
	}
	return loc, nil
}

// Save writes the configuration to the specified YAML file path.
// The file is created with 0600 permissions since the config may contain
// a bot token or an NKey seed.
func Save(path string, cfg *Config) error {
	data, err := goyaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}

	return nil
}

// Starter returns a minimal example configuration, written by the -init
// flag so a new install has a file to edit instead of a format to guess.
func Starter() *Config {
	lead := 5
	return &Config{
		LogLevel:      "info",
		Timezone:      "Asia/Kolkata",
		LeadMinutes:   &lead,
		OverlapPolicy: "skip",
		Semester:      "Fall Sem (2025-2026)",
		Notifiers:     []string{NotifierConsole},
		Classes: []timetable.Entry{
			{
				Day:     "Monday",
				Start:   "09:00",
				Subject: "Physics",
				Code:    "PHY101",
				Faculty: "Dr. Rao",
				Venue:   "AB-2 410",
				Label:   "A1",
			},
		},
	}
}
