// Package app assembles the download manager with its collaborators.
//
// It opens the song catalog, builds the yt-dlp downloader and the MP3
// finisher, and exposes the operations shared by the command line and
// terminal front ends: adding identifiers (expanding playlists), running
// the manager with its metrics endpoint, and exporting catalog playlists.
package app
