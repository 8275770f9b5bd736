package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/tubetunes/internal/app"
	"github.com/handiism/tubetunes/internal/config"
	"github.com/handiism/tubetunes/internal/download"
	"github.com/handiism/tubetunes/internal/youtube"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup, closing the catalog
// included, runs before main exits.
func run() int {
	// Command line flags
	var (
		idsFlag         = flag.String("ids", "", "Video ids or URLs to download (comma-separated or newline-separated)")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file (JSON or YAML)")
		concurrencyFlag = flag.Int("concurrency", 0, "Maximum parallel downloads, 1 to 10")
		retriesFlag     = flag.Int("retries", -1, "Retries per video")
		timeoutFlag     = flag.Duration("timeout", 0, "Time limit for one download attempt")
		formatFlag      = flag.String("format", "", "Audio format, e.g. mp3 or m4a")
		expandFlag      = flag.Bool("expand-playlists", true, "Download every video of playlist URLs")
		playlistFlag    = flag.String("playlist", "", "Add downloaded songs to this playlist and export it")
		metricsFlag     = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	identifiers := youtube.SplitIdentifiers(*idsFlag)
	identifiers = append(identifiers, flag.Args()...)

	// CLI mode - require identifiers
	if len(identifiers) == 0 {
		fmt.Println("TubeTunes - Download audio from YouTube")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  tubetunes-dl -ids <ID,URL,...> [options]")
		fmt.Println("  tubetunes-dl [options] <ID or URL>...")
		fmt.Println()
		fmt.Println("For interactive mode, use: tubetunes-tui")
		fmt.Println()
		flag.PrintDefaults()
		return 1
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}
	if err := settings.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return 1
	}

	// Apply only the flags given on the command line
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			settings.DownloadsPath = *outputFlag
		case "concurrency":
			settings.MaxConcurrentDownloads = *concurrencyFlag
			settings.ClampConcurrency()
		case "retries":
			settings.DownloadMaxRetries = *retriesFlag
		case "timeout":
			settings.DownloadTimeout = timeoutFlag.Seconds()
		case "format":
			settings.AudioFormat = *formatFlag
		case "expand-playlists":
			settings.ExpandPlaylists = *expandFlag
		case "metrics-addr":
			settings.MetricsAddress = *metricsFlag
		}
	})

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a, err := app.New(settings, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return 1
	}
	defer a.Close()

	fmt.Println("🎵 TubeTunes")
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	manager := a.Manager()
	events, unsubscribe := manager.Subscribe(1024)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	taskIDs := a.Add(ctx, identifiers)
	if len(taskIDs) == 0 {
		fmt.Println("ℹ️  Nothing to download: every video is already in the catalog or invalid.")
		return 0
	}

	fmt.Printf("\n📥 Starting %d downloads...\n\n", len(taskIDs))

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run(ctx)
	}()

	// Handle interrupts: the first one cancels every task, the second stops at once
	interrupted := false
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// The event bus drops events for slow readers, so idleness is also polled.
	idle := time.NewTicker(time.Second)
	defer idle.Stop()

	var final download.Statistics
wait:
	for {
		select {
		case <-idle.C:
			if s := manager.GetStatistics(); s.Active == 0 && s.Pending == 0 {
				final = s
				break wait
			}
		case <-sigCh:
			if interrupted {
				cancel()
				break wait
			}
			interrupted = true
			fmt.Println("\nInterrupted, cancelling...")
			manager.CancelAllTasks()
		case e := <-events:
			printEvent(e, *verboseFlag)
			if e.Type == download.EventAllTasksCompleted {
				final = e.Statistics
				break wait
			}
		case err := <-runErr:
			fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
			return 1
		}
	}

	cancel()
	if err := <-runErr; err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}
	if final.Total == 0 {
		final = manager.GetStatistics()
	}

	if *playlistFlag != "" {
		exportPlaylist(a, *playlistFlag, taskIDs)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("━", 40))
	fmt.Printf("✨ Complete! Downloaded %d/%d videos", final.Completed, final.Total)
	if final.Completed > 0 {
		fmt.Printf(" (average %s)", final.AverageElapsed.Round(time.Second))
	}
	fmt.Println()
	if final.Failed > 0 {
		fmt.Printf("   %d failed\n", final.Failed)
	}

	if interrupted {
		fmt.Println("\nDownload cancelled.")
	}
	return exitCode(interrupted, final)
}

// exitCode is 130 after an interrupt, 1 when any video failed and 0
// otherwise.
func exitCode(interrupted bool, final download.Statistics) int {
	switch {
	case interrupted:
		return 130
	case final.Failed > 0:
		return 1
	default:
		return 0
	}
}

func exportPlaylist(a *app.App, name string, taskIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	added, err := a.AddCompletedToPlaylist(ctx, name, taskIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating playlist: %v\n", err)
		return
	}
	if added == 0 {
		return
	}
	path, err := a.ExportPlaylist(ctx, name, a.Settings().ToPlaylistFormat())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting playlist: %v\n", err)
		return
	}
	fmt.Printf("📝 Playlist %q written to %s\n", name, path)
}

func printEvent(e download.Event, verbose bool) {
	level := e.Level()
	if level == download.LevelVerbose && !verbose {
		return
	}

	prefix := ""
	switch level {
	case download.LevelError:
		prefix = "❌ "
	case download.LevelWarning:
		prefix = "⚠️  "
	case download.LevelSuccess:
		prefix = "✅ "
	case download.LevelInfo:
		prefix = "ℹ️  "
	default:
		prefix = "   "
	}

	fmt.Println(prefix + e.Describe())
}
