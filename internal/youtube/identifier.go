package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// VideoURLTemplate builds a watch URL from a video id.
const VideoURLTemplate = "https://www.youtube.com/watch?v=%s"

const (
	playlistParam  = "list="
	paramSeparator = "&"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsVideoID reports whether s looks like a bare YouTube video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// ParseVideoID extracts the video id from a bare id or any of the common
// URL forms:
//
//	dQw4w9WgXcQ
//	https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42
//	https://music.youtube.com/watch?v=dQw4w9WgXcQ
//	https://youtu.be/dQw4w9WgXcQ
//	https://www.youtube.com/shorts/dQw4w9WgXcQ
//	https://www.youtube.com/embed/dQw4w9WgXcQ
//	https://www.youtube.com/live/dQw4w9WgXcQ
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if IsVideoID(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", input, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if len(segments) >= 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				id = segments[1]
			}
		}
		if id == "" {
			id = u.Query().Get("v")
		}
	default:
		return "", fmt.Errorf("not a YouTube URL: %s", input)
	}

	if !IsVideoID(id) {
		return "", fmt.Errorf("no video id in %s", input)
	}
	return id, nil
}

// NormalizeIdentifier maps every form of a video reference to its id so
// the same video requested through different URLs is recognized. Input
// without a video id is returned trimmed.
func NormalizeIdentifier(input string) string {
	if id, err := ParseVideoID(input); err == nil {
		return id
	}
	return strings.TrimSpace(input)
}

// VideoURL returns the watch URL for identifier. Anything that is not a
// bare id is assumed to be a URL already.
func VideoURL(identifier string) string {
	if IsVideoID(identifier) {
		return fmt.Sprintf(VideoURLTemplate, identifier)
	}
	return identifier
}

// IsPlaylistURL reports whether url carries a playlist id.
func IsPlaylistURL(url string) bool {
	return PlaylistID(url) != ""
}

// PlaylistID extracts the list parameter from a playlist or watch URL.
func PlaylistID(url string) string {
	parts := strings.SplitN(url, playlistParam, 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.Split(parts[1], paramSeparator)[0]
}

// SplitIdentifiers splits a list of video ids and URLs separated by
// commas, whitespace or newlines. Neither ids nor URLs contain those.
func SplitIdentifiers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
