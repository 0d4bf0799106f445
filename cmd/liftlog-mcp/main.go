package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/damiensprinkle/liftlog/internal/config"
	"github.com/damiensprinkle/liftlog/internal/mcp"
	"github.com/damiensprinkle/liftlog/internal/storage"
	"github.com/damiensprinkle/liftlog/internal/workout"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database.Path, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := workout.New(db, workout.NewSink(), log)
	s := mcp.New(svc, Version, log)

	log.Info("LiftLog MCP server starting", "version", Version)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
