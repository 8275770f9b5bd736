package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/handiism/tubetunes/internal/model"
)

// writeFakeMP3 creates a file without an ID3 tag.
func writeFakeMP3(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not really mpeg audio data"), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func openTag(t *testing.T, path string) *id3v2.Tag {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tag: %v", err)
	}
	t.Cleanup(func() { tag.Close() })
	return tag
}

func testArtifact(path string) *model.Artifact {
	return &model.Artifact{
		Identifier: "dQw4w9WgXcQ",
		Title:      "Never Gonna Give You Up",
		Artist:     "Rick Astley",
		UploadDate: "20091025",
		SourceURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Path:       path,
	}
}

func TestTagger_SaveTags(t *testing.T) {
	path := writeFakeMP3(t, "song.mp3")
	a := testArtifact(path)

	if err := NewTagger(nil).SaveTags(a, []byte{0xff, 0xd8, 0xff}); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	tag := openTag(t, path)
	if tag.Title() != a.Title {
		t.Errorf("Title() = %q, want %q", tag.Title(), a.Title)
	}
	if tag.Artist() != a.Artist {
		t.Errorf("Artist() = %q, want %q", tag.Artist(), a.Artist)
	}
	if got := tag.GetTextFrame("TYER").Text; got != "2009" {
		t.Errorf("TYER = %q, want %q", got, "2009")
	}
	if frames := tag.GetFrames(tag.CommonID("Attached picture")); len(frames) != 1 {
		t.Errorf("got %d attached pictures, want 1", len(frames))
	}
	if frames := tag.GetFrames(tag.CommonID("Comments")); len(frames) != 1 {
		t.Errorf("got %d comment frames, want 1", len(frames))
	}

	content, _ := os.ReadFile(path)
	if len(content) <= len("not really mpeg audio data") {
		t.Error("file did not grow after tagging")
	}
}

func TestTagger_RespectsConfig(t *testing.T) {
	path := writeFakeMP3(t, "song.mp3")
	a := testArtifact(path)

	if err := NewTagger(nil).SaveTags(a, nil); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	cfg := DefaultTagConfig()
	cfg.Artist = TagDoNotModify
	cfg.TrackTitle = TagEmpty
	a.Artist = "Someone Else"
	if err := NewTagger(cfg).SaveTags(a, nil); err != nil {
		t.Fatalf("SaveTags: %v", err)
	}

	tag := openTag(t, path)
	if tag.Artist() != "Rick Astley" {
		t.Errorf("Artist() = %q, want the original value", tag.Artist())
	}
	if tag.Title() != "" {
		t.Errorf("Title() = %q, want empty", tag.Title())
	}
}

func TestTagger_UnsupportedFormat(t *testing.T) {
	a := testArtifact(writeFakeMP3(t, "song.opus"))

	if err := NewTagger(nil).SaveTags(a, nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("SaveTags(opus) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReleaseDate(t *testing.T) {
	tests := []struct {
		input, year, date string
	}{
		{"20091025", "2009", "2009-10-25"},
		{"", "", ""},
		{"2009", "", ""},
	}

	for _, tt := range tests {
		year, date := releaseDate(tt.input)
		if year != tt.year || date != tt.date {
			t.Errorf("releaseDate(%q) = %q, %q, want %q, %q", tt.input, year, date, tt.year, tt.date)
		}
	}
}
