package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/tubetunes/internal/audio"
	"github.com/handiism/tubetunes/internal/catalog"
	"github.com/handiism/tubetunes/internal/config"
	"github.com/handiism/tubetunes/internal/download"
	httpclient "github.com/handiism/tubetunes/internal/http"
	ioutils "github.com/handiism/tubetunes/internal/io"
	"github.com/handiism/tubetunes/internal/metrics"
	"github.com/handiism/tubetunes/internal/model"
	"github.com/handiism/tubetunes/internal/youtube"
)

const shutdownTimeout = 5 * time.Second

// Option customizes an App.
type Option func(*options)

type options struct {
	downloader download.Downloader
	resolver   *youtube.PlaylistResolver
}

// WithDownloader replaces the yt-dlp downloader.
func WithDownloader(d download.Downloader) Option {
	return func(o *options) {
		o.downloader = d
	}
}

// WithPlaylistResolver replaces the playlist resolver used by Add.
func WithPlaylistResolver(r *youtube.PlaylistResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// App wires the download manager to the catalog, the finisher and metrics.
type App struct {
	settings *config.Settings
	logger   *slog.Logger
	catalog  *catalog.Catalog
	manager  *download.Manager
	resolver *youtube.PlaylistResolver
	metrics  *metrics.Metrics
}

// New builds an App from validated settings. The downloads directory is
// created and the catalog opened; Close releases them.
func New(settings *config.Settings, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := ioutils.EnsureDir(settings.DownloadsPath); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.downloader == nil {
		o.downloader = youtube.NewDownloader(logger.With("component", "downloader"))
	}
	if o.resolver == nil {
		o.resolver = youtube.NewPlaylistResolver()
	}

	cat, err := catalog.Open(settings.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	tagConfig := audio.DefaultTagConfig()
	tagConfig.ModifyTags = settings.ModifyTags
	finisher := audio.NewFinisher(
		audio.NewTagger(tagConfig),
		httpclient.NewClient(settings.UserAgent),
		audio.FinisherConfig{
			ResizeArtwork:        settings.CoverArtInTagsResize,
			ArtworkMaxSize:       settings.CoverArtInTagsMaxSize,
			SquareArtwork:        settings.CoverArtSquare,
			ConvertArtworkToJPEG: settings.ConvertCoverArtToJPG,
		},
		logger.With("component", "finisher"),
	)

	collectors := metrics.New()
	manager, err := download.NewManager(
		download.ConfigFromSettings(settings),
		o.downloader,
		download.WithStore(cat),
		download.WithPostProcessor(finisher),
		download.WithLogger(logger.With("component", "manager")),
		download.WithIdentifierNormalizer(youtube.NormalizeIdentifier),
		download.WithObserver(collectors.Observe),
		download.WithTimeoutCheckInterval(settings.TimeoutCheckEvery()),
		download.WithStatisticsInterval(settings.StatisticsEvery()),
	)
	if err != nil {
		cat.Close()
		return nil, err
	}

	return &App{
		settings: settings,
		logger:   logger,
		catalog:  cat,
		manager:  manager,
		resolver: o.resolver,
		metrics:  collectors,
	}, nil
}

// Manager returns the download manager.
func (a *App) Manager() *download.Manager {
	return a.manager
}

// Catalog returns the catalog of downloaded songs.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Metrics returns the Prometheus collectors fed by manager events.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Settings returns the settings the app was built with.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Run runs the manager until ctx is cancelled. Metrics are served on
// MetricsAddress when it is set.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.manager.Run(ctx)
	})
	if a.settings.MetricsAddress != "" {
		g.Go(func() error {
			return a.serveMetrics(ctx)
		})
	}
	return g.Wait()
}

func (a *App) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.settings.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving metrics", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Add queues the given identifiers with the options from settings and
// returns the ids of the created tasks. Playlist URLs are expanded into
// their videos when ExpandPlaylists is on; a playlist that cannot be
// fetched is logged and skipped.
func (a *App) Add(ctx context.Context, identifiers []string) []string {
	if a.settings.ExpandPlaylists {
		identifiers = a.resolver.Expand(ctx, identifiers, func(url string, err error) {
			a.logger.Warn("playlist expansion failed", "url", url, "error", err)
		})
	}
	return a.manager.AddBatchTasks(ctx, identifiers, a.settings.ToDownloadOptions())
}

// AddCompletedToPlaylist records the artifacts of the given tasks in the
// named catalog playlist, creating it if needed. Tasks that did not
// complete are ignored. It returns how many songs were added.
func (a *App) AddCompletedToPlaylist(ctx context.Context, name string, taskIDs []string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("playlist name is required")
	}
	if err := a.catalog.CreatePlaylist(ctx, name); err != nil {
		return 0, err
	}

	added := 0
	for _, id := range taskIDs {
		task, err := a.manager.GetTask(id)
		if err != nil || task.Status != model.StatusCompleted || task.Artifact == nil {
			continue
		}
		if err := a.catalog.AddToPlaylist(ctx, name, task.Artifact.Identifier); err != nil {
			return added, fmt.Errorf("failed to add %s to playlist %q: %w", task.Artifact.Identifier, name, err)
		}
		added++
	}
	return added, nil
}

// ExportPlaylist writes the named catalog playlist into the downloads
// directory and returns the file path.
func (a *App) ExportPlaylist(ctx context.Context, name string, format model.PlaylistFormat) (string, error) {
	songs, err := a.catalog.PlaylistSongs(ctx, name)
	if err != nil {
		return "", err
	}
	if len(songs) == 0 {
		return "", fmt.Errorf("playlist %q is empty", name)
	}

	creator := audio.NewPlaylistCreator(format, a.settings.M3UExtended)
	baseDir := a.settings.DownloadsPath
	path := filepath.Join(baseDir, ioutils.SanitizeFileName(name)+format.Extension())
	content := creator.CreatePlaylist(name, baseDir, songs)

	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		return "", fmt.Errorf("failed to write playlist: %w", err)
	}
	a.logger.Info("playlist exported", "name", name, "path", path, "songs", len(songs))
	return path, nil
}

// Close releases the catalog.
func (a *App) Close() error {
	return a.catalog.Close()
}
