package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/tubetunes/internal/model"
)

// PlaylistCreator generates playlist files in various formats.
//
// Entries are written relative to the directory the playlist file will
// live in when possible, so a music folder can be moved as a whole.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("Road trip", "/music", songs)
//	os.WriteFile("/music/Road trip.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:212,Rick Astley - Never Gonna Give You Up
//	// Never_Gonna_Give_You_Up_[dQw4w9WgXcQ].mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format this creator writes.
func (p *PlaylistCreator) Format() model.PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for songs, in order. baseDir
// is the directory of the playlist file.
func (p *PlaylistCreator) CreatePlaylist(title, baseDir string, songs []model.Artifact) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(baseDir, songs)
	case model.PlaylistFormatWPL:
		return p.createWPL(title, baseDir, songs)
	case model.PlaylistFormatZPL:
		return p.createZPL(title, baseDir, songs)
	default:
		return p.createM3U(baseDir, songs)
	}
}

// entryPath returns path relative to baseDir, or path itself when it is
// not below baseDir.
func entryPath(baseDir, path string) string {
	if baseDir == "" {
		return path
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(baseDir string, songs []model.Artifact) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, s := range songs {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", int(s.Duration), s.DisplayName()))
		}
		sb.WriteString(entryPath(baseDir, s.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(baseDir string, songs []model.Artifact) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, s := range songs {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, entryPath(baseDir, s.Path)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, s.DisplayName()))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, int(s.Duration)))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(songs)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(title, baseDir string, songs []model.Artifact) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, s := range songs {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(entryPath(baseDir, s.Path))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist. It is WPL with
// per-entry metadata attributes.
func (p *PlaylistCreator) createZPL(title, baseDir string, songs []model.Artifact) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"tubetunes\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(songs)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, s := range songs {
		duration := time.Duration(s.Duration * float64(time.Second))
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(entryPath(baseDir, s.Path)),
			escapeXML(s.Album),
			escapeXML(s.Title),
			escapeXML(s.Artist),
			duration.Milliseconds()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
