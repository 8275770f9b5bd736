package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // YouTube serves most thumbnails as WebP
)

// CoverQuality is the JPEG quality of re-encoded cover art.
const CoverQuality = 90

// CoverOptions controls how a thumbnail is turned into cover art.
type CoverOptions struct {
	// MaxSize bounds the width and height. Zero keeps the thumbnail size.
	MaxSize int

	// Square crops the centre square first. Video thumbnails are 16:9
	// while players show covers square.
	Square bool

	// ForceJPEG re-encodes thumbnails that are already JPEG.
	ForceJPEG bool
}

// PrepareCover turns thumbnail bytes (JPEG, PNG or WebP) into JPEG cover
// art for an ID3 APIC frame.
//
// A JPEG thumbnail that needs no crop or scaling is returned unchanged
// unless ForceJPEG is set. Everything else is decoded, cropped, scaled
// with Catmull-Rom keeping the aspect ratio and encoded at CoverQuality.
//
//	thumb, _ := client.DownloadBytes(ctx, artifact.ThumbnailURL)
//	cover, err := ioutils.PrepareCover(ctx, thumb, ioutils.CoverOptions{MaxSize: 500, Square: true})
//	// a 1280x720 thumbnail becomes a 500x500 JPEG
func PrepareCover(ctx context.Context, data []byte, opts CoverOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unrecognized thumbnail: %w", err)
	}
	src := image.Rect(0, 0, cfg.Width, cfg.Height)
	if opts.Square {
		src = centerSquare(src)
	}
	w, h := fitWithin(src.Dx(), src.Dy(), opts.MaxSize)

	unchanged := src.Dx() == cfg.Width && src.Dy() == cfg.Height && w == cfg.Width && h == cfg.Height
	if format == "jpeg" && unchanged && !opts.ForceJPEG {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src = src.Add(img.Bounds().Min)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: CoverQuality}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// centerSquare returns the largest square centred in r.
func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	x0 := r.Min.X + (r.Dx()-side)/2
	y0 := r.Min.Y + (r.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// fitWithin scales w x h down to fit in a max x max box. Sizes already
// inside the box, and a max of zero, leave it unchanged.
func fitWithin(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		return max, clampSide(h * max / w)
	}
	return clampSide(w * max / h), max
}

func clampSide(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
