// Timetable Alert - Entry Point
//
// This is the main entry point for the timetable alert daemon. The daemon
// runs as a systemd service (or a plain foreground process), responsible for:
//   - Loading the weekly class timetable from a YAML config file
//   - Registering one weekly recurring reminder per class
//   - Delivering each reminder shortly before class start via the configured
//     backends (console, Telegram, NATS)
//
// Configuration is loaded from /etc/timetable-alert/config.yaml (or the path
// specified by the -config flag).
//
// Lifecycle:
//  1. Load configuration from YAML file
//  2. Setup structured JSON logger
//  3. Parse and validate the timetable into slots
//  4. Build the notification backends
//  5. Register reminders and start the scheduler
//  6. Notify systemd that the service is ready (Type=notify)
//  7. Start watchdog goroutine if systemd provides WatchdogSec
//  8. Wait for shutdown signal (SIGTERM/SIGINT)
//  9. Notify systemd that the service is stopping
// 10. Coordinated shutdown with timeout
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kamaleshyeager/Time-Table-Alert/internal/config"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/logging"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/notify"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/reminder"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/shutdown"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/systemd"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/timetable"
	"github.com/Kamaleshyeager/Time-Table-Alert/internal/version"
)

// Default shutdown timeout - how long to wait for in-flight deliveries
const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	initConfig := flag.Bool("init", false, "write a starter configuration file and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if *initConfig {
		if _, err := os.Stat(*configPath); err == nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s already exists, refusing to overwrite\n", *configPath)
			os.Exit(1)
		}
		if err := config.Save(*configPath, config.Starter()); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote starter configuration to %s\n", *configPath)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Use basic stderr logging before logger is configured
		fmt.Fprintf(os.Stderr, "ERROR: failed to load configuration from %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	// Setup structured logger based on config
	logger := logging.SetupLogger(cfg.LogLevel)

	// Parse the timetable. A malformed entry aborts startup before any
	// reminder is registered.
	store, err := timetable.Load(cfg.Classes, *cfg.LeadMinutes)
	if err != nil {
		logger.Error("invalid timetable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("daemon starting",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("config_path", *configPath),
		slog.String("timezone", loc.String()),
		slog.Int("classes", store.Len()),
		slog.Any("notifiers", cfg.Notifiers),
	)

	// Create shutdown context that listens for SIGTERM and SIGINT
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	coordinator := shutdown.NewCoordinator(logger)

	notifier, err := buildNotifier(cfg, logger, coordinator)
	if err != nil {
		logger.Error("failed to build notifiers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Register one weekly reminder per slot and start firing
	sched := reminder.New(loc, reminder.OverlapPolicy(cfg.OverlapPolicy), logger)
	sched.SetSemester(cfg.Semester)
	if err := sched.Register(store.Slots(), notifier); err != nil {
		logger.Error("failed to register reminders", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sched.Start()
	coordinator.Register("scheduler", sched)

	logger.Info("reminders armed",
		slog.Int("entries", sched.Entries()),
		slog.Time("next_activation", sched.NextActivation()),
	)

	// Tell systemd we are ready, then keep the watchdog fed as long as the
	// scheduler holds its entries.
	systemd.NotifyReady()
	systemd.StartWatchdog(ctx, func() bool {
		return sched.Entries() == store.Len()
	})

	// Block until a termination signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	systemd.NotifyStopping()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := coordinator.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown finished with errors", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("daemon stopped")
}

// buildNotifier assembles the delivery backends listed in the config into a
// single fan-out notifier. Backends holding a connection register with the
// shutdown coordinator.
func buildNotifier(cfg *config.Config, logger *slog.Logger, coordinator *shutdown.Coordinator) (notify.Notifier, error) {
	backends := make([]notify.Notifier, 0, len(cfg.Notifiers))

	for _, name := range cfg.Notifiers {
		switch name {
		case config.NotifierConsole:
			backends = append(backends, notify.NewConsole())

		case config.NotifierTelegram:
			backends = append(backends, notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger))

		case config.NotifierNATS:
			n := notify.NewNATS(notify.NATSConfig{
				Servers:  cfg.NATS.Servers,
				NKeySeed: cfg.NATS.NKeySeed,
				Subject:  cfg.NATS.Subject,
			}, logger)
			if err := n.Connect(); err != nil {
				return nil, err
			}
			coordinator.Register("nats", n)
			backends = append(backends, n)

		default:
			// Unreachable: config.Load validates backend names.
			return nil, fmt.Errorf("unknown notifier backend %q", name)
		}
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return notify.NewMulti(logger, backends...), nil
}
