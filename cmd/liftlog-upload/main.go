package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/damiensprinkle/liftlog/internal/share"
	"github.com/damiensprinkle/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "server API key (defaults to LIFTLOG_AUTH_API_KEY)")
	filePath := flag.String("file", "", "path to a workout document JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "parse the document but don't send it")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -file workout.json [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

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
	log.Info("document parsed", "workout", doc.WorkoutName, "exercises", len(doc.Exercises))

	if *dryRun {
		log.Info("DRY RUN mode — document not sent")
		return
	}

	client := upload.NewClient(*serverURL, *apiKey)
	w, err := client.PushDocument(context.Background(), doc)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}

	log.Info("upload complete", "workout", w.Name, "id", w.ID)
}
