package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/mcp"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
	"github.com/claude/mapty/internal/store"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MAPTY_CONFIG"), "path to config file (built-in defaults when empty)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("mapty-mcp", Version)
		return
	}

	// stdout carries the MCP protocol; logs go to stderr.
	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
	log.Info("Mapty MCP starting", "version", Version)

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
	defer kv.Close()

	s := store.New(kv, cfg.Storage.Key, log)
	log.Info("workouts loaded", "count", s.Load(ctx))

	sub := &form.Submitter{
		Factory: models.NewFactory(models.UUIDGenerator{}, time.Now),
		Store:   s,
	}
	srv := mcp.New(sub, mcp.Options{Zoom: cfg.Map.Zoom, PIN: cfg.Auth.PIN}, Version, log)

	if err := server.ServeStdio(srv); err != nil {
		log.Error("mcp server stopped", "error", err)
		kv.Close()
		os.Exit(1)
	}
	log.Info("mcp server stopped")
}
