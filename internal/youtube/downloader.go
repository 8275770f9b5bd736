package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/tubetunes/internal/download"
	"github.com/handiism/tubetunes/internal/model"
	"github.com/lrstanley/go-ytdlp"
)

// DefaultProgressInterval is how often yt-dlp progress is relayed.
const DefaultProgressInterval = 500 * time.Millisecond

// Default audio options used when a request leaves them empty.
const (
	DefaultAudioFormat    = "mp3"
	DefaultAudioQuality   = "0"
	DefaultOutputTemplate = "%(title)s [%(id)s].%(ext)s"
)

// Downloader fetches the audio track of a video with yt-dlp.
//
// It implements download.Downloader. Each call runs one yt-dlp process
// that downloads the best audio stream and converts it to the requested
// format. Progress is reported as the downloaded byte fraction.
type Downloader struct {
	progressInterval time.Duration
	logger           *slog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		progressInterval: DefaultProgressInterval,
		logger:           logger,
	}
}

// Download runs yt-dlp for req.Identifier and returns the converted file.
func (d *Downloader) Download(ctx context.Context, req download.Request, progress func(download.Progress)) (*model.Artifact, error) {
	opts := withDefaults(req.Options)

	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat(opts.AudioFormat).
		AudioQuality(opts.AudioQuality).
		NoPlaylist().
		ForceOverwrites().
		RestrictFilenames().
		Output(filepath.Join(req.OutputDir, opts.OutputTemplate))

	dl.ProgressFunc(d.progressInterval, func(update ytdlp.ProgressUpdate) {
		progress(progressFrom(update))
	})

	videoURL := VideoURL(req.Identifier)
	d.logger.Debug("running yt-dlp", "task_id", req.TaskID, "url", videoURL, "format", opts.AudioFormat)

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp %s: %w", videoURL, err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("read yt-dlp output: %w", err)
	}
	if len(infos) == 0 {
		return nil, errors.New("yt-dlp reported no downloaded item")
	}

	meta, err := decodeInfo(infos[0])
	if err != nil {
		return nil, err
	}

	artifact := meta.artifact(req.Identifier, videoURL)
	artifact.Path = resolveAudioPath(meta.filenames(), opts.AudioFormat)
	if artifact.Path == "" {
		return nil, fmt.Errorf("%w: no converted file for %s", download.ErrArtifactMissing, videoURL)
	}
	artifact.Format = strings.TrimPrefix(filepath.Ext(artifact.Path), ".")
	return artifact, nil
}

func withDefaults(opts model.Options) model.Options {
	if opts.AudioFormat == "" {
		opts.AudioFormat = DefaultAudioFormat
	}
	if opts.AudioQuality == "" {
		opts.AudioQuality = DefaultAudioQuality
	}
	if opts.OutputTemplate == "" {
		opts.OutputTemplate = DefaultOutputTemplate
	}
	return opts
}

func progressFrom(update ytdlp.ProgressUpdate) download.Progress {
	p := download.Progress{
		Fraction: byteFraction(int64(update.DownloadedBytes), int64(update.TotalBytes)),
	}
	if eta := update.ETA(); eta > 0 {
		p.Message = fmt.Sprintf("ETA %s", eta.Round(time.Second))
	}
	return p
}

func byteFraction(downloaded, total int64) float64 {
	if total <= 0 || downloaded <= 0 {
		return 0
	}
	f := float64(downloaded) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

// videoInfo holds the yt-dlp info fields used to describe an artifact.
type videoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Track      string  `json:"track"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"upload_date"`
	WebpageURL string  `json:"webpage_url"`
	Thumbnail  string  `json:"thumbnail"`
	Filename   string  `json:"filename"`
	Filepath   string  `json:"filepath"`

	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// decodeInfo converts the library's info structure through its JSON form,
// which mirrors yt-dlp's own field names.
func decodeInfo(info any) (videoInfo, error) {
	var v videoInfo
	data, err := json.Marshal(info)
	if err != nil {
		return v, fmt.Errorf("encode yt-dlp info: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode yt-dlp info: %w", err)
	}
	return v, nil
}

func (v videoInfo) artifact(identifier, videoURL string) *model.Artifact {
	a := &model.Artifact{
		Identifier:   identifier,
		Title:        firstNonEmpty(v.Track, v.Title, identifier),
		Artist:       firstNonEmpty(v.Artist, v.Uploader, v.Channel),
		Album:        v.Album,
		Duration:     v.Duration,
		UploadDate:   v.UploadDate,
		SourceURL:    firstNonEmpty(v.WebpageURL, videoURL),
		ThumbnailURL: v.Thumbnail,
	}
	return a
}

// filenames lists the paths yt-dlp may have reported, final ones first.
func (v videoInfo) filenames() []string {
	var names []string
	for _, rd := range v.RequestedDownloads {
		names = append(names, rd.Filepath)
	}
	return append(names, v.Filepath, v.Filename)
}

// resolveAudioPath returns the first existing file among candidates, also
// trying each with the extension replaced by the audio format since
// yt-dlp reports the pre-conversion name.
func resolveAudioPath(candidates []string, audioFormat string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		converted := strings.TrimSuffix(c, filepath.Ext(c)) + "." + audioFormat
		for _, p := range []string{converted, c} {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
