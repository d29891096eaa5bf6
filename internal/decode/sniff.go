package decode

import (
	"bytes"
	"io"
	"os"
)

// SniffLen is the number of leading bytes inspected to classify a file.
// It is comfortably larger than any header signature recognised below.
const SniffLen = 512

// Format is the container format recognised from a file's leading bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatGIF
	FormatPNG
	FormatJPEG
	FormatWebP
	FormatBMP
	FormatTIFF
	FormatICO
	FormatHDR
	FormatPNM
	// FormatTGA has no header signature; Sniff never returns it.
	FormatTGA
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatGIF:     "gif",
	FormatPNG:     "png",
	FormatJPEG:    "jpeg",
	FormatWebP:    "webp",
	FormatBMP:     "bmp",
	FormatTIFF:    "tiff",
	FormatICO:     "ico",
	FormatHDR:     "hdr",
	FormatPNM:     "pnm",
	FormatTGA:     "tga",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Streaming reports whether the format is decoded frame by frame.
func (f Format) Streaming() bool {
	return f == FormatGIF
}

type signature struct {
	magic  []byte
	offset int
	format Format
}

var signatures = []signature{
	{magic: []byte("GIF87a"), format: FormatGIF},
	{magic: []byte("GIF89a"), format: FormatGIF},
	{magic: []byte("\x89PNG\r\n\x1a\n"), format: FormatPNG},
	{magic: []byte{0xff, 0xd8, 0xff}, format: FormatJPEG},
	{magic: []byte("WEBP"), offset: 8, format: FormatWebP},
	{magic: []byte("II*\x00"), format: FormatTIFF},
	{magic: []byte("MM\x00*"), format: FormatTIFF},
	{magic: []byte{0x00, 0x00, 0x01, 0x00}, format: FormatICO},
	{magic: []byte("#?RADIANCE"), format: FormatHDR},
	{magic: []byte("#?RGBE"), format: FormatHDR},
	{magic: []byte("BM"), format: FormatBMP},
}

// Sniff classifies prefix by its header signature. It never fails; anything
// it does not recognise is FormatUnknown.
func Sniff(prefix []byte) Format {
	for _, s := range signatures {
		end := s.offset + len(s.magic)
		if len(prefix) < end {
			continue
		}
		if !bytes.Equal(prefix[s.offset:end], s.magic) {
			continue
		}
		if s.format == FormatWebP && !bytes.HasPrefix(prefix, []byte("RIFF")) {
			continue
		}
		return s.format
	}

	if len(prefix) >= 2 && prefix[0] == 'P' && prefix[1] >= '1' && prefix[1] <= '7' {
		return FormatPNM
	}
	return FormatUnknown
}

// SniffFile reads exactly SniffLen bytes from the start of the file at path
// and classifies them. Open errors and files shorter than SniffLen yield
// FormatUnknown, which callers treat as a plain single-frame image.
func SniffFile(path string) Format {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer f.Close()

	var prefix [SniffLen]byte
	if _, err := io.ReadFull(f, prefix[:]); err != nil {
		return FormatUnknown
	}
	return Sniff(prefix[:])
}
