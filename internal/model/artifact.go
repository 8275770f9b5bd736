package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Artifact is the local result of a completed task.
//
// It carries enough metadata to tag the file, add it to the catalog and
// list it in a playlist.
type Artifact struct {
	// Identifier is the normalized source identifier the artifact came from.
	Identifier string

	Title  string
	Artist string
	Album  string

	// Duration is the track length in seconds.
	Duration float64

	// UploadDate is the publication date of the source, zero when unknown.
	UploadDate time.Time

	// SourceURL is the page the audio was extracted from.
	SourceURL string

	// ThumbnailURL points at the cover image, empty when none is known.
	ThumbnailURL string

	// Path is the absolute path of the audio file.
	Path string

	// Size is the file size in bytes, filled in after validation.
	Size int64

	// Format is the audio container, derived from the file extension
	// when the downloader does not report it.
	Format string
}

// HasThumbnail returns true if a cover image can be fetched for the artifact.
func (a *Artifact) HasThumbnail() bool {
	return a.ThumbnailURL != ""
}

// FileFormat returns the audio format, falling back to the extension of Path.
//
// Example:
//
//	a := &Artifact{Path: "/music/Song [abc].mp3"}
//	a.FileFormat() // "mp3"
func (a *Artifact) FileFormat() string {
	if a.Format != "" {
		return a.Format
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(a.Path)), ".")
}

// DisplayName returns "Artist - Title", or just the title when the artist
// is unknown.
func (a *Artifact) DisplayName() string {
	if a.Artist == "" {
		return a.Title
	}
	return a.Artist + " - " + a.Title
}
