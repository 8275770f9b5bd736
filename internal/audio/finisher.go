package audio

import (
	"context"
	"log/slog"

	ioutils "github.com/handiism/tubetunes/internal/io"
	"github.com/handiism/tubetunes/internal/model"
)

// ArtworkFetcher downloads thumbnail bytes.
type ArtworkFetcher interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// FinisherConfig controls how downloaded files are finished.
type FinisherConfig struct {
	// ResizeArtwork scales the thumbnail to fit ArtworkMaxSize.
	ResizeArtwork bool

	// ArtworkMaxSize is the maximum width and height of embedded artwork.
	ArtworkMaxSize int

	// SquareArtwork crops the centre square of the thumbnail.
	SquareArtwork bool

	// ConvertArtworkToJPEG re-encodes artwork that is already JPEG.
	// Other formats are always converted since ID3 readers expect JPEG.
	ConvertArtworkToJPEG bool
}

// Finisher tags downloaded MP3 files and embeds their thumbnail as cover
// art. It implements download.PostProcessor.
//
// Tagging follows the task options: EmbedMetadata writes the text frames,
// EmbedArtwork the cover. Files in other formats are left alone. A
// thumbnail that cannot be fetched or decoded is logged and the text
// frames are still written.
type Finisher struct {
	tagger  *Tagger
	fetcher ArtworkFetcher
	config  FinisherConfig
	logger  *slog.Logger
}

// NewFinisher creates a Finisher.
func NewFinisher(tagger *Tagger, fetcher ArtworkFetcher, config FinisherConfig, logger *slog.Logger) *Finisher {
	if tagger == nil {
		tagger = NewTagger(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Finisher{
		tagger:  tagger,
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Process finishes one artifact.
func (f *Finisher) Process(ctx context.Context, a *model.Artifact, opts model.Options) error {
	if !opts.EmbedMetadata && !opts.EmbedArtwork {
		return nil
	}
	if a.FileFormat() != "mp3" {
		f.logger.Debug("skipping tags for non-MP3 file", "path", a.Path, "format", a.FileFormat())
		return nil
	}

	var artwork []byte
	if opts.EmbedArtwork && a.HasThumbnail() && f.fetcher != nil {
		var err error
		artwork, err = f.artwork(ctx, a.ThumbnailURL)
		if err != nil {
			f.logger.Warn("failed to prepare cover art", "url", a.ThumbnailURL, "error", err)
			artwork = nil
		}
	}

	tagger := f.tagger
	if !opts.EmbedMetadata {
		tagger = NewTagger(&TagConfig{ModifyTags: false})
	}
	if !opts.EmbedMetadata && artwork == nil {
		return nil
	}
	return tagger.SaveTags(a, artwork)
}

func (f *Finisher) artwork(ctx context.Context, url string) ([]byte, error) {
	data, err := f.fetcher.DownloadBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	opts := ioutils.CoverOptions{
		Square:    f.config.SquareArtwork,
		ForceJPEG: f.config.ConvertArtworkToJPEG,
	}
	if f.config.ResizeArtwork {
		opts.MaxSize = f.config.ArtworkMaxSize
	}
	return ioutils.PrepareCover(ctx, data, opts)
}
