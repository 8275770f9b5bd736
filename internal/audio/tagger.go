package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/bogem/id3v2"
	"github.com/handiism/tubetunes/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the artifact.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Artist:     TagModify,      // Uploader or credited artist
//	    Album:      TagDoNotModify, // Keep whatever yt-dlp embedded
//	    TrackTitle: TagModify,
//	    Year:       TagModify,      // From the upload date
//	    Comments:   TagModify,      // Source URL
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Comments controls the COMM (Comments) frame, which gets the source URL.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every frame
// is set from the artifact.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		TrackTitle:  TagModify,
		Comments:    TagModify,
	}
}

// ErrUnsupportedFormat is returned for files that cannot carry ID3 tags.
var ErrUnsupportedFormat = errors.New("unsupported audio format for ID3 tags")

// Tagger writes ID3 tags to MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	if err := tagger.SaveTags(artifact, jpegBytes); err != nil {
//	    logger.Warn("tagging failed", "path", artifact.Path, "error", err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the artifact's file.
//
// String frames are updated according to the TagConfig. artwork, when not
// nil, replaces any attached front cover; it must be JPEG data. Files
// other than MP3 yield ErrUnsupportedFormat.
func (t *Tagger) SaveTags(a *model.Artifact, artwork []byte) error {
	if a.FileFormat() != "mp3" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, a.Path)
	}

	tag, err := id3v2.Open(a.Path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, a)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, a *model.Artifact) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(a.Artist)
	}

	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.DeleteFrames("TPE2")
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, a.Artist)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		if a.Album != "" {
			tag.SetAlbum(a.Album)
		}
	}

	year, date := releaseDate(a.UploadDate)

	// TYER is ID3v2.3, TDRC its ID3v2.4 replacement.
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if year != "" {
			tag.DeleteFrames("TYER")
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, year)
		}
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if date != "" {
			tag.DeleteFrames("TDRC")
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, date)
		}
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(a.Title)
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if a.SourceURL != "" {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "Source",
				Text:        a.SourceURL,
			})
		}
	}
}

// releaseDate turns a yt-dlp upload date (YYYYMMDD) into a year and an
// ISO date. Malformed input yields empty strings.
func releaseDate(uploadDate string) (year, date string) {
	d, err := time.Parse("20060102", uploadDate)
	if err != nil {
		return "", ""
	}
	return d.Format("2006"), d.Format("2006-01-02")
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
