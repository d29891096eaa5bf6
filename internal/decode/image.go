package decode

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	pnm "github.com/jbuchbinder/gopnm"
	ico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("decode: unsupported image format")

// Frame is one decoded picture together with its display time.
type Frame struct {
	Image *image.RGBA
	Delay Delay
}

// FrameDecoder yields frames in decode order. Next returns io.EOF after the
// last frame; any other error is terminal and is returned by every later call.
type FrameDecoder interface {
	Next() (Frame, error)
}

// decoders maps each sniffed format to its codec. Codecs are called
// directly instead of through image.Decode: the tga package registers an
// empty magic string, which would claim every input in the global registry.
var decoders = map[Format]func(io.Reader) (image.Image, error){
	FormatGIF:  gif.Decode,
	FormatPNG:  png.Decode,
	FormatJPEG: jpeg.Decode,
	FormatWebP: webp.Decode,
	FormatBMP:  bmp.Decode,
	FormatTIFF: tiff.Decode,
	FormatICO:  ico.Decode,
	FormatPNM:  decodeNetpbm,
	FormatTGA:  tga.Decode,
}

// DecodeRGBA decodes a whole single-frame image from r into an RGBA buffer
// anchored at the origin. The format is taken from r's leading bytes.
func DecodeRGBA(r io.Reader) (*image.RGBA, error) {
	return decodeAs(r, FormatUnknown)
}

// DecodeFile opens path and decodes it. Formats without a header signature,
// such as TGA, are recognised by the file extension.
func DecodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := decodeAs(f, FormatFromExt(path))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return img, nil
}

// FormatFromExt maps a file extension to the formats that carry no magic
// number. Everything else is FormatUnknown.
func FormatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		return FormatTGA
	default:
		return FormatUnknown
	}
}

// decodeAs sniffs r and decodes it with the matching codec, falling back to
// hint when the leading bytes are not recognised.
func decodeAs(r io.Reader, hint Format) (*image.RGBA, error) {
	br := bufio.NewReaderSize(r, SniffLen)
	prefix, _ := br.Peek(SniffLen)

	format := Sniff(prefix)
	if format == FormatUnknown {
		format = hint
	}

	dec, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	img, err := dec(br)
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

func decodeNetpbm(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	if magic, _ := br.Peek(2); string(magic) == "P7" {
		return decodePAM(br)
	}
	return pnm.Decode(br)
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}

	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
