package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aova-labs/aova/internal/api"
	"github.com/aova-labs/aova/internal/backfill"
	"github.com/aova-labs/aova/internal/config"
	"github.com/aova-labs/aova/internal/dedup"
	"github.com/aova-labs/aova/internal/events"
	"github.com/aova-labs/aova/internal/extractor"
	"github.com/aova-labs/aova/internal/gemini"
	"github.com/aova-labs/aova/internal/notify"
	"github.com/aova-labs/aova/internal/processor"
	"github.com/aova-labs/aova/internal/session"
	"github.com/aova-labs/aova/internal/store"
)

func main() {
	backfillDir := flag.String("backfill", "", "replay session exports from this directory and exit")
	backfillFile := flag.String("backfill-file", "", "replay a single session export file and exit")
	dryRun := flag.Bool("dry-run", false, "backfill: parse exports without replaying")
	minMessages := flag.Int("min-messages", 2, "backfill: skip exports with fewer messages")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence — offline mode runs the pipeline without a database.
	var persister processor.Persister
	var db *store.Postgres
	if cfg.Offline || cfg.DatabaseURL == "" {
		slog.Warn("running offline — leads and conversations will not be persisted")
		persister = store.Nop{}
	} else {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		persister = db
		slog.Info("database connected")
	}

	sessions := session.NewManager()
	proc := processor.New(persister, sessions, slog.Default())

	// Gemini analyzer (optional — without it, turns must arrive pre-analyzed)
	if cfg.GoogleAPIKey != "" {
		llm := gemini.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel)
		proc.WithAnalyzer(extractor.New(llm, slog.Default()))
		slog.Info("gemini analyzer ready", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GOOGLE_API_KEY not set — raw turns will pass through unanalyzed")
	}

	// Slack poster (optional — without it, no hot-lead review loop)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		proc.WithNotifier(notify.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default()))
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without review loop")
	}

	// One-shot backfill mode: replay exports, then exit.
	if *backfillDir != "" || *backfillFile != "" {
		runner := backfill.NewRunner(backfill.Config{
			Dir:         *backfillDir,
			SingleFile:  *backfillFile,
			DryRun:      *dryRun,
			MinMessages: *minMessages,
		}, proc, slog.Default())
		if err := runner.Run(ctx); err != nil {
			slog.Error("backfill failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("aova starting", "port", cfg.Port)

	// NATS
	bus, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()
	proc.WithPublisher(bus)
	slog.Info("NATS connected", "url", cfg.NatsURL)

	if err := bus.Subscribe(events.SubjectTurnTranscribed, proc.HandleTurnEvent); err != nil {
		slog.Error("failed to subscribe to turn events", "error", err)
		os.Exit(1)
	}
	if err := bus.Subscribe(events.SubjectSessionClose, proc.HandleCloseEvent); err != nil {
		slog.Error("failed to subscribe to close events", "error", err)
		os.Exit(1)
	}
	if err := bus.Subscribe(events.SubjectSlackReaction, proc.HandleReaction); err != nil {
		slog.Error("failed to subscribe to slack reactions", "error", err)
		os.Exit(1)
	}

	// HTTP API
	var dd *dedup.Deduplicator
	if db != nil {
		dd = dedup.New(db.Pool(), slog.Default())
	}
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, proc, dd)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := bus.Publish(events.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"offline":   db == nil,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	// Drop long-closed sessions so the manager does not grow without bound.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Purge(time.Now().UTC().Add(-24 * time.Hour)); n > 0 {
					slog.Info("purged closed sessions", "count", n)
				}
			}
		}
	}()

	slog.Info("aova ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("aova stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
