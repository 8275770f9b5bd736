// Package audio finishes downloaded audio files and exports playlists.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(artifact, jpegBytes)
//
// The tagger supports:
//   - Artist, Album Artist
//   - Album Title, Track Title
//   - Year and date, from the upload date
//   - Source URL as a comment
//   - Cover Art (embedded in MP3)
//
// # Finishing
//
// Finisher is the download.PostProcessor that fetches the thumbnail,
// prepares it as JPEG cover art and tags the file:
//
//	finisher := audio.NewFinisher(tagger, httpClient,
//	    audio.FinisherConfig{ResizeArtwork: true, ArtworkMaxSize: 1000, SquareArtwork: true}, logger)
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Road trip", "/music", songs)
//	os.WriteFile("/music/Road trip.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
