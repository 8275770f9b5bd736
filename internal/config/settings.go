package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/tubetunes/internal/model"
	"gopkg.in/yaml.v3"
)

// Concurrency bounds for MaxConcurrentDownloads.
const (
	MinConcurrentDownloads = 1
	MaxConcurrentDownloads = 10
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath          string  `json:"downloads_path" yaml:"downloads_path"`
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryDelay     float64 `json:"download_retry_delay" yaml:"download_retry_delay"` // seconds
	DownloadTimeout        float64 `json:"download_timeout" yaml:"download_timeout"`         // seconds, 0 disables
	AutoRetry              bool    `json:"auto_retry" yaml:"auto_retry"`
	ExpandPlaylists        bool    `json:"expand_playlists" yaml:"expand_playlists"`
	MaxFinishedTasks       int     `json:"max_finished_tasks" yaml:"max_finished_tasks"`

	// Monitor intervals, seconds
	TimeoutCheckInterval float64 `json:"timeout_check_interval" yaml:"timeout_check_interval"`
	StatisticsInterval   float64 `json:"statistics_interval" yaml:"statistics_interval"`

	// Audio extraction
	AudioFormat    string `json:"audio_format" yaml:"audio_format"`
	AudioQuality   string `json:"audio_quality" yaml:"audio_quality"`
	FileNameFormat string `json:"file_name_format" yaml:"file_name_format"`

	// Cover art settings
	SaveCoverArtInTags    bool `json:"save_cover_art_in_tags" yaml:"save_cover_art_in_tags"`
	CoverArtInTagsResize  bool `json:"cover_art_in_tags_resize" yaml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize int  `json:"cover_art_in_tags_max_size" yaml:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG  bool `json:"convert_cover_art_to_jpg" yaml:"convert_cover_art_to_jpg"`
	CoverArtSquare        bool `json:"cover_art_square" yaml:"cover_art_square"`

	// Tag settings
	ModifyTags bool `json:"modify_tags" yaml:"modify_tags"`

	// Catalog and playlist settings
	CatalogPath    string `json:"catalog_path" yaml:"catalog_path"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended"`

	// MetricsAddress enables the Prometheus endpoint when non-empty, e.g. ":9090".
	MetricsAddress string `json:"metrics_address" yaml:"metrics_address"`

	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:          filepath.Join(homeDir, "Music", "tubetunes"),
		MaxConcurrentDownloads: 3,
		DownloadMaxRetries:     3,
		DownloadRetryDelay:     5,
		DownloadTimeout:        600,
		AutoRetry:              true,
		ExpandPlaylists:        true,
		MaxFinishedTasks:       0,

		TimeoutCheckInterval: 10,
		StatisticsInterval:   1,

		AudioFormat:    "mp3",
		AudioQuality:   "0",
		FileNameFormat: "%(title)s [%(id)s].%(ext)s",

		SaveCoverArtInTags:    true,
		CoverArtInTagsResize:  true,
		CoverArtInTagsMaxSize: 1000,
		ConvertCoverArtToJPG:  true,
		CoverArtSquare:        true,

		ModifyTags: true,

		CatalogPath:    filepath.Join(homeDir, ".local", "share", "tubetunes", "catalog.db"),
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		UserAgent: "tubetunes",
	}
}

// Load reads settings from a JSON or YAML file. The format is chosen by
// the file extension: ".yaml" and ".yml" are YAML, anything else is JSON.
//
// A missing file is not an error; the defaults are returned instead.
// Keys absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension like Load.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the manager cannot work with.
func (s *Settings) Validate() error {
	var errs []error
	if s.DownloadsPath == "" {
		errs = append(errs, errors.New("downloads_path is required"))
	}
	if s.MaxConcurrentDownloads < MinConcurrentDownloads || s.MaxConcurrentDownloads > MaxConcurrentDownloads {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be between %d and %d, got %d",
			MinConcurrentDownloads, MaxConcurrentDownloads, s.MaxConcurrentDownloads))
	}
	if s.DownloadMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("download_max_retries must not be negative, got %d", s.DownloadMaxRetries))
	}
	if s.DownloadRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("download_retry_delay must not be negative, got %v", s.DownloadRetryDelay))
	}
	if s.DownloadTimeout < 0 {
		errs = append(errs, fmt.Errorf("download_timeout must not be negative, got %v", s.DownloadTimeout))
	}
	if s.MaxFinishedTasks < 0 {
		errs = append(errs, fmt.Errorf("max_finished_tasks must not be negative, got %d", s.MaxFinishedTasks))
	}
	if s.TimeoutCheckInterval <= 0 || s.StatisticsInterval <= 0 {
		errs = append(errs, errors.New("monitor intervals must be positive"))
	}
	if s.AudioFormat == "" {
		errs = append(errs, errors.New("audio_format is required"))
	}
	if _, err := model.ParsePlaylistFormat(s.PlaylistFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ClampConcurrency forces MaxConcurrentDownloads into the allowed range.
// Command line overrides go through it before validation.
func (s *Settings) ClampConcurrency() {
	if s.MaxConcurrentDownloads < MinConcurrentDownloads {
		s.MaxConcurrentDownloads = MinConcurrentDownloads
	}
	if s.MaxConcurrentDownloads > MaxConcurrentDownloads {
		s.MaxConcurrentDownloads = MaxConcurrentDownloads
	}
}

// RetryDelay returns DownloadRetryDelay as a duration.
func (s *Settings) RetryDelay() time.Duration {
	return seconds(s.DownloadRetryDelay)
}

// TaskTimeout returns DownloadTimeout as a duration.
func (s *Settings) TaskTimeout() time.Duration {
	return seconds(s.DownloadTimeout)
}

// TimeoutCheckEvery returns TimeoutCheckInterval as a duration.
func (s *Settings) TimeoutCheckEvery() time.Duration {
	return seconds(s.TimeoutCheckInterval)
}

// StatisticsEvery returns StatisticsInterval as a duration.
func (s *Settings) StatisticsEvery() time.Duration {
	return seconds(s.StatisticsInterval)
}

// ToDownloadOptions converts settings to the per-task options snapshot.
func (s *Settings) ToDownloadOptions() model.Options {
	return model.Options{
		AudioFormat:    s.AudioFormat,
		AudioQuality:   s.AudioQuality,
		OutputTemplate: s.FileNameFormat,
		EmbedMetadata:  s.ModifyTags,
		EmbedArtwork:   s.SaveCoverArtInTags,
	}
}

// ToPlaylistFormat converts the playlist_format setting, falling back to M3U.
func (s *Settings) ToPlaylistFormat() model.PlaylistFormat {
	pf, _ := model.ParsePlaylistFormat(s.PlaylistFormat)
	return pf
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
