// Package imgtest builds image fixtures on disk for tests and benchmarks.
package imgtest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	pnm "github.com/jbuchbinder/gopnm"
	ico "github.com/sergeymakinen/go-ico"
)

// Noise returns a w×h paletted image filled with pseudo-random indices into
// the 216-colour web-safe palette. Noise compresses badly, which keeps even
// small fixtures above the sniffing prefix length.
func Noise(w, h int, seed int64) *image.Paletted {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.WebSafe)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(len(palette.WebSafe)))
	}
	return img
}

// AnimatedGIF encodes frames noisy w×h frames with the given per-frame delays
// in centiseconds. len(delays) must equal frames.
func AnimatedGIF(tb testing.TB, frames, w, h int, delays []int) []byte {
	tb.Helper()
	if len(delays) != frames {
		tb.Fatalf("AnimatedGIF: %d delays for %d frames", len(delays), frames)
	}

	g := &gif.GIF{}
	for i := range frames {
		g.Image = append(g.Image, Noise(w, h, int64(i+1)))
		g.Delay = append(g.Delay, delays[i])
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		tb.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// CorruptGIF returns an animated GIF of total frames whose frame at 1-based
// position bad is replaced by an unknown block. bad must be at least 3 so
// that the valid prefix carries the same looping extension as the full file.
func CorruptGIF(tb testing.TB, total, bad, w, h int) []byte {
	tb.Helper()
	if bad < 3 || bad > total {
		tb.Fatalf("CorruptGIF: bad frame %d out of range for %d frames", bad, total)
	}

	delays := make([]int, total)
	for i := range delays {
		delays[i] = 5
	}

	full := AnimatedGIF(tb, total, w, h, delays)
	prefix := AnimatedGIF(tb, bad-1, w, h, delays[:bad-1])
	prefix = prefix[:len(prefix)-1] // drop trailer

	if !bytes.HasPrefix(full, prefix) {
		tb.Fatalf("CorruptGIF: encoder output is not prefix-stable")
	}

	out := bytes.Clone(full)
	out[len(prefix)] = 0x99
	return out
}

// CorruptLZWGIF is like CorruptGIF but keeps the block structure intact and
// scrambles the compressed pixel data of frame bad instead. Frames must be
// at least 16×16 so the damage stays inside the first data sub-block.
func CorruptLZWGIF(tb testing.TB, total, bad, w, h int) []byte {
	tb.Helper()
	if bad < 3 || bad > total || w*h < 256 {
		tb.Fatalf("CorruptLZWGIF: bad frame %d of %d at %dx%d", bad, total, w, h)
	}

	delays := make([]int, total)
	for i := range delays {
		delays[i] = 5
	}

	full := AnimatedGIF(tb, total, w, h, delays)
	prefix := AnimatedGIF(tb, bad-1, w, h, delays[:bad-1])
	prefix = prefix[:len(prefix)-1]
	if !bytes.HasPrefix(full, prefix) {
		tb.Fatalf("CorruptLZWGIF: encoder output is not prefix-stable")
	}

	// Graphic control extension (8 bytes), image descriptor (10), LZW
	// minimum code size (1) and the first sub-block length (1).
	data := len(prefix) + 8 + 10 + 1 + 1
	if full[len(prefix)] != 0x21 || full[len(prefix)+8] != 0x2C {
		tb.Fatalf("CorruptLZWGIF: unexpected block layout at frame %d", bad)
	}

	out := bytes.Clone(full)
	for i := data + 4; i < data+20; i++ {
		out[i] = 0xff
	}
	return out
}

// Gradient returns a w×h opaque image with R=x, G=y and B=0x80.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

// PNG encodes Gradient(w, h).
func PNG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Gradient(w, h)); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TGA encodes Gradient(w, h) as an uncompressed TARGA file.
func TGA(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := tga.Encode(&buf, Gradient(w, h)); err != nil {
		tb.Fatalf("encode tga: %v", err)
	}
	return buf.Bytes()
}

// ICO encodes Gradient(w, h) as a single-icon ICO file. w and h must be
// at most 256.
func ICO(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := ico.Encode(&buf, Gradient(w, h)); err != nil {
		tb.Fatalf("encode ico: %v", err)
	}
	return buf.Bytes()
}

// PPM encodes Gradient(w, h) as a binary P6 pixmap.
func PPM(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := pnm.Encode(&buf, Gradient(w, h), pnm.PPM); err != nil {
		tb.Fatalf("encode ppm: %v", err)
	}
	return buf.Bytes()
}

// PGM encodes a w×h grey ramp as a binary P5 greymap.
func PGM(tb testing.TB, w, h int) []byte {
	tb.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}

	var buf bytes.Buffer
	if err := pnm.Encode(&buf, img, pnm.PGM); err != nil {
		tb.Fatalf("encode pgm: %v", err)
	}
	return buf.Bytes()
}

// PBM encodes a w×h checkerboard as a binary P4 bitmap.
func PBM(tb testing.TB, w, h int) []byte {
	tb.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
	}

	var buf bytes.Buffer
	if err := pnm.Encode(&buf, img, pnm.PBM); err != nil {
		tb.Fatalf("encode pbm: %v", err)
	}
	return buf.Bytes()
}

// PAM writes Gradient(w, h) as an 8-bit RGB_ALPHA P7 file.
func PAM(w, h int) []byte {
	img := Gradient(w, h)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "P7\nWIDTH %d\nHEIGHT %d\nDEPTH 4\nMAXVAL 255\nTUPLTYPE RGB_ALPHA\nENDHDR\n", w, h)
	buf.Write(img.Pix)
	return buf.Bytes()
}

// WriteFile stores data under dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
