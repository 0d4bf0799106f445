package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/damiensprinkle/liftlog/internal/config"
	"github.com/damiensprinkle/liftlog/internal/share"
	"github.com/damiensprinkle/liftlog/internal/storage"
	"github.com/damiensprinkle/liftlog/internal/workout"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to a workout document JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -file workout.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open document", "path", *filePath, "error", err)
		os.Exit(1)
	}
	doc, err := share.Parse(f)
	f.Close()
	if err != nil {
		log.Error("invalid document", "path", *filePath, "error", err)
		os.Exit(1)
	}

	sets := 0
	for _, ex := range doc.Exercises {
		sets += len(ex.Sets)
	}
	log.Info("document parsed",
		"workout", doc.WorkoutName,
		"exercises", len(doc.Exercises),
		"sets", sets,
	)

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
		return
	}

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
	w, err := svc.ImportDocument(ctx, doc)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete", "workout", w.Name, "id", w.ID)
}
