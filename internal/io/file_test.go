package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Name", "Normal Name"},
		{"Song: Part 1/2", "Song_ Part 1_2"},
		{"What?", "What_"},
		{"Track...", "Track"},
		{"Name   with  spaces", "Name with spaces"},
		{"trailing  ", "trailing"},
		{"a<b>c|d*e", "a_b_c_d_e"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFileName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "list.m3u")

	if err := WriteFile(context.Background(), path, []byte("#EXTM3U\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "#EXTM3U\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "never.txt")
	if err := WriteFile(ctx, path, []byte("x")); err == nil {
		t.Error("expected error for a cancelled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written despite cancelled context")
	}
}
