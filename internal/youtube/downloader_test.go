package youtube

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/tubetunes/internal/model"
)

func TestByteFraction(t *testing.T) {
	tests := []struct {
		downloaded, total int64
		want              float64
	}{
		{0, 100, 0},
		{50, 100, 0.5},
		{100, 100, 1},
		{150, 100, 1},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := byteFraction(tt.downloaded, tt.total); got != tt.want {
			t.Errorf("byteFraction(%d, %d) = %v, want %v", tt.downloaded, tt.total, got, tt.want)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	got := withDefaults(model.Options{AudioFormat: "opus"})
	if got.AudioFormat != "opus" {
		t.Errorf("AudioFormat = %q, want %q", got.AudioFormat, "opus")
	}
	if got.AudioQuality != DefaultAudioQuality || got.OutputTemplate != DefaultOutputTemplate {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestDecodeInfo(t *testing.T) {
	raw := map[string]any{
		"id":          "dQw4w9WgXcQ",
		"title":       "Never Gonna Give You Up",
		"uploader":    "Rick Astley",
		"duration":    212.0,
		"upload_date": "20091025",
		"thumbnail":   "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		"filename":    "/music/Never_Gonna.webm",
		"requested_downloads": []map[string]any{
			{"filepath": "/music/Never_Gonna.mp3"},
		},
	}

	info, err := decodeInfo(raw)
	if err != nil {
		t.Fatalf("decodeInfo: %v", err)
	}

	a := info.artifact("dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if a.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Artist != "Rick Astley" {
		t.Errorf("Artist = %q, want uploader", a.Artist)
	}
	if a.Duration != 212 {
		t.Errorf("Duration = %v, want 212", a.Duration)
	}
	if a.SourceURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("SourceURL = %q, want the watch URL fallback", a.SourceURL)
	}
	if !a.HasThumbnail() {
		t.Error("HasThumbnail() = false")
	}

	names := info.filenames()
	if names[0] != "/music/Never_Gonna.mp3" {
		t.Errorf("first filename = %q, want the requested download", names[0])
	}
}

func TestResolveAudioPath(t *testing.T) {
	dir := t.TempDir()
	converted := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(converted, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"pre-conversion name", []string{filepath.Join(dir, "song.webm")}, converted},
		{"exact name", []string{"", converted}, converted},
		{"nothing on disk", []string{filepath.Join(dir, "other.webm")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveAudioPath(tt.candidates, "mp3"); got != tt.want {
				t.Errorf("resolveAudioPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
