package loader

import (
	"slices"
	"testing"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"upper case jpg", "photo.JPG", true},
		{"mixed case png", "a.PnG", true},
		{"gif", "anim.gif", true},
		{"nested path", "/srv/assets/sprites/hero.webp", true},
		{"multiple dots", "backup.2024.tiff", true},
		{"netpbm", "scan.pgm", true},
		{"text file", "readme.txt", false},
		{"no extension", "Makefile", false},
		{"dot file only", ".png", false},
		{"dot file in dir", "/tmp/.png", false},
		{"trailing dot", "image.", false},
		{"empty", "", false},
		{"extension in dir name", "pics.png/readme", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupported(tt.filename); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	if !slices.IsSorted(exts) {
		t.Errorf("extensions not sorted: %v", exts)
	}
	for _, want := range []string{"jpg", "jpeg", "png", "gif", "webp", "tif", "tiff", "tga", "bmp", "ico", "hdr", "pbm", "pam", "ppm", "pgm"} {
		if !slices.Contains(exts, want) {
			t.Errorf("missing extension %q", want)
		}
	}
	for _, ext := range exts {
		if !IsSupported("file." + ext) {
			t.Errorf("listed extension %q is not accepted", ext)
		}
	}
}
