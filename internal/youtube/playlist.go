package youtube

import (
	"context"
	"fmt"
	"time"

	ytlist "github.com/ytget/ytdlp/v2"
)

// DefaultResolveTimeout bounds a playlist lookup.
const DefaultResolveTimeout = 60 * time.Second

// PlaylistItem is one video of a resolved playlist.
type PlaylistItem struct {
	VideoID string
	Title   string
}

// PlaylistResolver expands playlist URLs into their video ids.
type PlaylistResolver struct {
	timeout time.Duration
	fetch   func(ctx context.Context, playlistID string) ([]PlaylistItem, error)
}

// NewPlaylistResolver creates a resolver backed by the YouTube web API.
func NewPlaylistResolver() *PlaylistResolver {
	return &PlaylistResolver{
		timeout: DefaultResolveTimeout,
		fetch:   fetchPlaylistItems,
	}
}

// SetTimeout sets the timeout for a single Resolve call.
func (r *PlaylistResolver) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

// Resolve returns the video ids of the playlist in url, in playlist order.
func (r *PlaylistResolver) Resolve(ctx context.Context, url string) ([]string, error) {
	items, err := r.Items(ctx, url)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VideoID)
	}
	return ids, nil
}

// Items returns the playlist entries with their titles.
func (r *PlaylistResolver) Items(ctx context.Context, url string) ([]PlaylistItem, error) {
	playlistID := PlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	items, err := r.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	out := items[:0]
	for _, it := range items {
		if IsVideoID(it.VideoID) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Expand replaces playlist URLs in identifiers with their videos. Other
// identifiers pass through unchanged. A playlist that cannot be resolved
// is reported through onError and skipped.
func (r *PlaylistResolver) Expand(ctx context.Context, identifiers []string, onError func(url string, err error)) []string {
	var out []string
	for _, id := range identifiers {
		if !IsPlaylistURL(id) {
			out = append(out, id)
			continue
		}
		videos, err := r.Resolve(ctx, id)
		if err != nil {
			if onError != nil {
				onError(id, err)
			}
			continue
		}
		out = append(out, videos...)
	}
	return out
}

func fetchPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	items, err := ytlist.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		out = append(out, PlaylistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}
