package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aova-labs/aova/internal/processor"
)

// Config holds the backfill command configuration.
type Config struct {
	Dir         string // directory of session export JSON files
	SingleFile  string // process a single file only
	DryRun      bool
	MinMessages int // skip exports with fewer messages
}

// Runner replays session exports through the processor.
type Runner struct {
	cfg    Config
	proc   *processor.Processor
	logger *slog.Logger
}

// NewRunner creates a backfill runner.
func NewRunner(cfg Config, proc *processor.Processor, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, proc: proc, logger: logger}
}

// Run executes the backfill process.
func (r *Runner) Run(ctx context.Context) error {
	state, err := LoadState()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	files, err := r.discoverFiles()
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}
	r.logger.Info("export files discovered", "count", len(files))

	var pending []string
	for _, path := range files {
		if !state.IsProcessed(path) {
			pending = append(pending, path)
		}
	}
	state.FilesRemaining = len(pending)

	totalTurns := 0
	totalSessions := 0

	for _, path := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("backfill interrupted, saving state")
			_ = state.Save()
			return ctx.Err()
		default:
		}

		export, turns, err := ParseExportFile(path)
		if err != nil {
			r.logger.Warn("failed to parse export", "path", path, "error", err)
			state.AddError(fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		if len(turns) < r.cfg.MinMessages {
			state.MarkProcessed(path)
			state.FilesRemaining--
			continue
		}

		r.logger.Info("replaying session",
			"path", path,
			"session_id", export.SessionID,
			"turns", len(turns),
			"dry_run", r.cfg.DryRun,
		)

		replayed := 0
		if !r.cfg.DryRun {
			for _, t := range turns {
				if _, err := r.proc.ProcessTurn(ctx, t); err != nil && !processor.IsValidation(err) {
					r.logger.Error("replay turn failed",
						"session_id", export.SessionID, "error", err)
					state.AddError(fmt.Sprintf("replay %s: %v", export.SessionID, err))
					continue
				}
				replayed++
			}
			r.proc.Close(ctx, export.SessionID, "backfill")
			state.SessionsClosed++
		} else {
			replayed = len(turns)
		}

		totalTurns += replayed
		totalSessions++
		state.TurnsReplayed += replayed
		state.MarkProcessed(path)
		state.FilesRemaining--
		_ = state.Save()
	}

	_ = state.Save()

	r.logger.Info("backfill complete",
		"sessions", totalSessions,
		"turns", totalTurns,
		"errors", len(state.Errors),
		"dry_run", r.cfg.DryRun,
	)

	fmt.Printf("\n=== Backfill Summary ===\n")
	fmt.Printf("Sessions replayed: %d\n", totalSessions)
	fmt.Printf("Turns replayed: %d\n", totalTurns)
	fmt.Printf("Errors: %d\n", len(state.Errors))
	if r.cfg.DryRun {
		fmt.Printf("Mode: DRY RUN (no replay)\n")
	}
	fmt.Printf("State file: %s\n", expandHome(defaultStatePath))

	return nil
}

func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		path := expandHome(r.cfg.SingleFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("single file not found: %s", path)
		}
		return []string{path}, nil
	}

	dir := expandHome(r.cfg.Dir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("export dir not found: %s", dir)
	}

	var files []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("error walking export dir", "dir", dir, "error", err)
	}
	return files, nil
}
