package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/store"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesErrored   int

	WorkoutsRead       int
	WorkoutsImported   int
	WorkoutsDuplicated int
	MetricsRecomputed  int
}

// Importer reads snapshot files (exports of this tool or of the browser
// app's localStorage) into a store.
type Importer struct {
	store  *store.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(s *store.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: s, log: log, dryRun: dryRun}
}

// Import loads every snapshot at path, which may be a single file or a
// directory of *.json files read in name order. Workouts whose id was already
// seen are skipped.
//
// By default the store's contents are replaced. With appendMode the stored
// snapshot is loaded first and new workouts are added after it. Unless this is
// a dry run the result is persisted.
func (imp *Importer) Import(ctx context.Context, path string, appendMode bool) (*Stats, error) {
	files, err := snapshotFiles(path)
	if err != nil {
		return &imp.stats, err
	}

	var existing []models.Workout
	if appendMode {
		imp.store.Load(ctx)
		existing = imp.store.All()
	}
	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		seen[w.ID()] = true
	}

	var incoming []models.Workout
	var lastErr error
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			lastErr = err
			continue
		}

		workouts, mismatches, err := models.DecodeSnapshot(string(data))
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			lastErr = err
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.WorkoutsRead += len(workouts)
		imp.stats.MetricsRecomputed += len(mismatches)
		for _, mm := range mismatches {
			imp.log.Info("recomputed stored value", "file", f, "id", mm.ID, "field", mm.Field,
				"stored", mm.Stored, "recomputed", mm.Recomputed)
		}

		for _, w := range workouts {
			if seen[w.ID()] {
				imp.stats.WorkoutsDuplicated++
				continue
			}
			seen[w.ID()] = true
			incoming = append(incoming, w)
		}
	}

	if imp.stats.FilesProcessed == 0 && lastErr != nil {
		return &imp.stats, fmt.Errorf("no readable snapshot at %s: %w", path, lastErr)
	}

	imp.stats.WorkoutsImported = len(incoming)
	if imp.dryRun {
		return &imp.stats, nil
	}

	if err := imp.apply(existing, incoming); err != nil {
		return &imp.stats, err
	}
	if err := imp.store.Persist(ctx); err != nil {
		return &imp.stats, fmt.Errorf("saving imported workouts: %w", err)
	}
	return &imp.stats, nil
}

// apply makes the store hold existing followed by incoming.
func (imp *Importer) apply(existing, incoming []models.Workout) error {
	text, err := models.EncodeSnapshot(append(existing, incoming...))
	if err != nil {
		return err
	}
	if n := imp.store.Hydrate(text); n != len(existing)+len(incoming) {
		return fmt.Errorf("applying import: store holds %d workouts, want %d", n, len(existing)+len(incoming))
	}
	return nil
}

func snapshotFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no *.json snapshots in " + path)
	}
	sort.Strings(files)
	return files, nil
}
