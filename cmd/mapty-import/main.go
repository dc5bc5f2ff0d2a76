package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/importer"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MAPTY_CONFIG"), "path to config file (built-in defaults when empty)")
	path := flag.String("path", "", "snapshot file or directory of *.json snapshots (required)")
	appendMode := flag.Bool("append", false, "add to the stored workouts instead of replacing them")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to storage")
	flag.Parse()

	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	if *path == "" {
		fmt.Fprintf(os.Stderr, "Usage: mapty-import -path <file or dir> [-append] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: workouts will not be written; postgres migrations still apply")
	}

	kv, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	s := store.New(kv, cfg.Storage.Key, log)
	imp := importer.New(s, log, *dryRun)
	stats, err := imp.Import(ctx, *path, *appendMode)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		kv.Close()
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete", "workouts_stored", s.Len())
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_errored", stats.FilesErrored,
		"workouts_read", stats.WorkoutsRead,
		"workouts_imported", stats.WorkoutsImported,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"metrics_recomputed", stats.MetricsRecomputed,
	)
}
