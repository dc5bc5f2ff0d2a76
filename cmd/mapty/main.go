package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/store"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MAPTY_CONFIG"), "path to config file (built-in defaults when empty)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mapty [-config config.yaml] <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n%s\n", commandHelp)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("mapty", Version)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())

	ctx := context.Background()
	kv, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	s := store.New(kv, cfg.Storage.Key, log)
	s.Load(ctx)

	a := &app{
		sub: &form.Submitter{
			Factory: models.NewFactory(models.UUIDGenerator{}, time.Now),
			Store:   s,
		},
		zoom: cfg.Map.Zoom,
		pin:  cfg.Auth.PIN,
		out:  os.Stdout,
		log:  log,
	}
	err = a.run(ctx, flag.Args())
	if cerr := kv.Close(); cerr != nil {
		log.Warn("closing storage", "error", cerr)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}
