package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareCover_Size(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		opts         CoverOptions
		wantW, wantH int
	}{
		{"landscape", 120, 90, CoverOptions{MaxSize: 40}, 40, 30},
		{"portrait", 50, 100, CoverOptions{MaxSize: 40}, 20, 40},
		{"already small", 30, 20, CoverOptions{MaxSize: 40}, 30, 20},
		{"no limit", 64, 36, CoverOptions{}, 64, 36},
		{"square crop", 64, 36, CoverOptions{Square: true}, 36, 36},
		{"square crop and scale", 128, 72, CoverOptions{MaxSize: 32, Square: true}, 32, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := PrepareCover(context.Background(), pngImage(t, tt.w, tt.h), tt.opts)
			if err != nil {
				t.Fatalf("PrepareCover: %v", err)
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not JPEG: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPrepareCover_KeepsFittingJPEG(t *testing.T) {
	in := jpegImage(t, 20, 20)

	out, err := PrepareCover(context.Background(), in, CoverOptions{MaxSize: 40})
	if err != nil {
		t.Fatalf("PrepareCover: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Error("fitting JPEG was re-encoded, want the original bytes")
	}

	out, err = PrepareCover(context.Background(), in, CoverOptions{MaxSize: 40, ForceJPEG: true})
	if err != nil {
		t.Fatalf("PrepareCover: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("forced output is not JPEG: %v", err)
	}
}

func TestPrepareCover_Errors(t *testing.T) {
	if _, err := PrepareCover(context.Background(), []byte("not an image"), CoverOptions{}); err == nil {
		t.Error("expected error for invalid image data")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PrepareCover(ctx, pngImage(t, 4, 4), CoverOptions{}); err == nil {
		t.Error("expected error for a cancelled context")
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1280, 720, 500, 500, 281},
		{720, 1280, 500, 281, 500},
		{500, 500, 500, 500, 500},
		{1000, 1, 10, 10, 1},
		{300, 200, 0, 300, 200},
	}

	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
