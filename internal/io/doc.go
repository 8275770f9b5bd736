// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Cover art from video thumbnails
//
// # File Operations
//
//	// Write a playlist next to the music
//	err := ioutils.WriteFile(ctx, "/music/Road trip.m3u", content)
//
//	// Ensure the download directory exists
//	err := ioutils.EnsureDir("/music")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Cover Art
//
// PrepareCover turns a JPEG, PNG or WebP thumbnail into JPEG cover art,
// optionally cropped square and scaled to fit a bounding box:
//
//	cover, err := ioutils.PrepareCover(ctx, thumb, ioutils.CoverOptions{MaxSize: 500, Square: true})
package ioutils
