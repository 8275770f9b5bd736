package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.MaxConcurrentDownloads != 3 {
		t.Errorf("MaxConcurrentDownloads = %d, want 3", s.MaxConcurrentDownloads)
	}
	if s.DownloadMaxRetries != 3 {
		t.Errorf("DownloadMaxRetries = %d, want 3", s.DownloadMaxRetries)
	}
	if s.RetryDelay() != 5*time.Second {
		t.Errorf("RetryDelay() = %v, want 5s", s.RetryDelay())
	}
	if s.TaskTimeout() != 10*time.Minute {
		t.Errorf("TaskTimeout() = %v, want 10m", s.TaskTimeout())
	}
	if !s.AutoRetry {
		t.Error("AutoRetry should default to true")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	content := `
downloads_path: /srv/music
max_concurrent_downloads: 5
download_max_retries: 1
download_retry_delay: 0.5
auto_retry: false
playlist_format: pls
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.DownloadsPath != "/srv/music" {
		t.Errorf("DownloadsPath = %q, want %q", s.DownloadsPath, "/srv/music")
	}
	if s.MaxConcurrentDownloads != 5 {
		t.Errorf("MaxConcurrentDownloads = %d, want 5", s.MaxConcurrentDownloads)
	}
	if s.DownloadMaxRetries != 1 {
		t.Errorf("DownloadMaxRetries = %d, want 1", s.DownloadMaxRetries)
	}
	if s.RetryDelay() != 500*time.Millisecond {
		t.Errorf("RetryDelay() = %v, want 500ms", s.RetryDelay())
	}
	if s.AutoRetry {
		t.Error("AutoRetry = true, want false")
	}
	if s.ToPlaylistFormat() != model.PlaylistFormatPLS {
		t.Errorf("ToPlaylistFormat() = %v, want PLS", s.ToPlaylistFormat())
	}
	// Keys missing from the file keep their defaults.
	if s.AudioFormat != "mp3" {
		t.Errorf("AudioFormat = %q, want default %q", s.AudioFormat, "mp3")
	}
}

func TestSaveLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	s := DefaultSettings()
	s.DownloadsPath = "/tmp/out"
	s.MaxConcurrentDownloads = 7
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DownloadsPath != "/tmp/out" {
		t.Errorf("DownloadsPath = %q, want %q", loaded.DownloadsPath, "/tmp/out")
	}
	if loaded.MaxConcurrentDownloads != 7 {
		t.Errorf("MaxConcurrentDownloads = %d, want 7", loaded.MaxConcurrentDownloads)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.MaxConcurrentDownloads != DefaultSettings().MaxConcurrentDownloads {
		t.Errorf("MaxConcurrentDownloads = %d, want default", s.MaxConcurrentDownloads)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TUBETUNES_DOWNLOADS_PATH", "/env/music")
	t.Setenv("TUBETUNES_MAX_CONCURRENT", "8")
	t.Setenv("TUBETUNES_MAX_RETRIES", "0")
	t.Setenv("TUBETUNES_RETRY_DELAY", "250ms")
	t.Setenv("TUBETUNES_TIMEOUT", "30")
	t.Setenv("TUBETUNES_AUTO_RETRY", "false")
	t.Setenv("TUBETUNES_AUDIO_FORMAT", "m4a")

	s := DefaultSettings()
	if err := s.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if s.DownloadsPath != "/env/music" {
		t.Errorf("DownloadsPath = %q, want %q", s.DownloadsPath, "/env/music")
	}
	if s.MaxConcurrentDownloads != 8 {
		t.Errorf("MaxConcurrentDownloads = %d, want 8", s.MaxConcurrentDownloads)
	}
	if s.DownloadMaxRetries != 0 {
		t.Errorf("DownloadMaxRetries = %d, want 0", s.DownloadMaxRetries)
	}
	if s.RetryDelay() != 250*time.Millisecond {
		t.Errorf("RetryDelay() = %v, want 250ms", s.RetryDelay())
	}
	if s.TaskTimeout() != 30*time.Second {
		t.Errorf("TaskTimeout() = %v, want 30s", s.TaskTimeout())
	}
	if s.AutoRetry {
		t.Error("AutoRetry = true, want false")
	}
	if s.AudioFormat != "m4a" {
		t.Errorf("AudioFormat = %q, want %q", s.AudioFormat, "m4a")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("TUBETUNES_MAX_CONCURRENT", "many")

	s := DefaultSettings()
	if err := s.LoadFromEnv(); err == nil {
		t.Error("expected error for non-numeric TUBETUNES_MAX_CONCURRENT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"concurrency too low", func(s *Settings) { s.MaxConcurrentDownloads = 0 }, true},
		{"concurrency too high", func(s *Settings) { s.MaxConcurrentDownloads = 11 }, true},
		{"concurrency at upper bound", func(s *Settings) { s.MaxConcurrentDownloads = 10 }, false},
		{"negative retries", func(s *Settings) { s.DownloadMaxRetries = -1 }, true},
		{"negative delay", func(s *Settings) { s.DownloadRetryDelay = -1 }, true},
		{"timeout disabled", func(s *Settings) { s.DownloadTimeout = 0 }, false},
		{"empty downloads path", func(s *Settings) { s.DownloadsPath = "" }, true},
		{"unknown playlist format", func(s *Settings) { s.PlaylistFormat = "xspf" }, true},
		{"zero statistics interval", func(s *Settings) { s.StatisticsInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClampConcurrency(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{4, 4},
		{10, 10},
		{25, 10},
	}

	for _, tt := range tests {
		s := DefaultSettings()
		s.MaxConcurrentDownloads = tt.in
		s.ClampConcurrency()
		if s.MaxConcurrentDownloads != tt.want {
			t.Errorf("ClampConcurrency(%d) = %d, want %d", tt.in, s.MaxConcurrentDownloads, tt.want)
		}
	}
}

func TestToDownloadOptions(t *testing.T) {
	s := DefaultSettings()
	s.AudioFormat = "opus"
	s.ModifyTags = false

	opts := s.ToDownloadOptions()
	if opts.AudioFormat != "opus" {
		t.Errorf("AudioFormat = %q, want %q", opts.AudioFormat, "opus")
	}
	if opts.EmbedMetadata {
		t.Error("EmbedMetadata = true, want false")
	}
	if opts.OutputTemplate != s.FileNameFormat {
		t.Errorf("OutputTemplate = %q, want %q", opts.OutputTemplate, s.FileNameFormat)
	}
}
