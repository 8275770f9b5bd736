// Package youtube connects the download manager to YouTube.
//
// It provides:
//   - Identifier helpers that turn watch, short, embed and youtu.be URLs
//     into video ids, so one video is recognized however it was requested
//   - Downloader, a download.Downloader running yt-dlp in audio extraction
//     mode through github.com/lrstanley/go-ytdlp
//   - PlaylistResolver, which expands playlist URLs into video ids
//
// yt-dlp and ffmpeg must be installed for Downloader to work.
package youtube
