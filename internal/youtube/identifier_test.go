package youtube

import "testing"

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"  dQw4w9WgXcQ\n", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123&index=2", "dQw4w9WgXcQ", false},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ", false},
		{"youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/live/dQw4w9WgXcQ?feature=share", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/playlist?list=PL123", "", true},
		{"https://vimeo.com/123456", "", true},
		{"not an id", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVideoID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVideoID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"  https://example.com/song.mp3 ", "https://example.com/song.mp3"},
	}

	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.input); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVideoURL(t *testing.T) {
	if got := VideoURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("VideoURL(id) = %q", got)
	}
	if got := VideoURL("https://example.com/a"); got != "https://example.com/a" {
		t.Errorf("VideoURL(url) = %q, want it unchanged", got)
	}
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		url        string
		want       string
		isPlaylist bool
	}{
		{"https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID", "PLAYLIST_ID", true},
		{"https://www.youtube.com/playlist?list=PLAYLIST_ID", "PLAYLIST_ID", true},
		{"https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=1&t=30", "PLAYLIST_ID", true},
		{"https://www.youtube.com/watch?v=VIDEO_ID", "", false},
		{"https://www.youtube.com/watch?v=VIDEO_ID&list=", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := PlaylistID(tt.url); got != tt.want {
				t.Errorf("PlaylistID() = %q, want %q", got, tt.want)
			}
			if got := IsPlaylistURL(tt.url); got != tt.isPlaylist {
				t.Errorf("IsPlaylistURL() = %v, want %v", got, tt.isPlaylist)
			}
		})
	}
}

func TestSplitIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "dQw4w9WgXcQ", []string{"dQw4w9WgXcQ"}},
		{"comma separated", "a, b ,c", []string{"a", "b", "c"}},
		{"newline separated", "a\nb\r\nc\n", []string{"a", "b", "c"}},
		{"spaces and tabs", "a b\tc", []string{"a", "b", "c"}},
		{"blank entries", ",, a,,\n ", []string{"a"}},
		{"urls", "https://youtu.be/aaaaaaaaaaa,https://www.youtube.com/watch?v=bbbbbbbbbbb",
			[]string{"https://youtu.be/aaaaaaaaaaa", "https://www.youtube.com/watch?v=bbbbbbbbbbb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIdentifiers(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitIdentifiers(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitIdentifiers(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
