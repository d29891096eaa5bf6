// Package texture converts decoded pixel buffers into GPU textures.
//
// The conversion is a pure function of its inputs: FromImage decides how
// many mipmap levels a picture deserves and asks the supplied Device to
// allocate the texture. Only the consumer that owns the Device calls it;
// decode workers never touch the GPU.
package texture

import (
	"errors"
	"fmt"
	"image"
	"math/bits"
)

// MaxMipmapLevels caps the number of generated mipmap levels.
const MaxMipmapLevels = 4

var (
	ErrInvalidDimensions = errors.New("texture: invalid dimensions")
	ErrNilImage          = errors.New("texture: nil image")
)

// MipmapMode selects how a Device builds the mip chain.
type MipmapMode int

const (
	// NoMipmap allocates the base level only.
	NoMipmap MipmapMode = iota
	// AutoGeneratedMipmaps asks the device to derive up to Levels levels.
	AutoGeneratedMipmaps
)

func (m MipmapMode) String() string {
	switch m {
	case NoMipmap:
		return "none"
	case AutoGeneratedMipmaps:
		return "auto"
	default:
		return "unknown"
	}
}

// Desc describes the texture to allocate. Pixels are 8-bit sRGB RGBA,
// row-major, Width*4 bytes per row.
type Desc struct {
	Width   int
	Height  int
	Mipmaps MipmapMode
	Levels  int
}

// Texture is an opaque handle to a device-resident texture.
type Texture interface {
	Width() int
	Height() int
	MipmapLevels() int
}

// Device is a live display context able to allocate textures.
type Device interface {
	CreateTexture(desc Desc, pix []byte) (Texture, error)
}

// MipmapLevels returns min(floor(log2(w)), floor(log2(h)), MaxMipmapLevels),
// never less than 1. A level count of 1 means mipmapping is disabled.
func MipmapLevels(w, h int) int {
	if w <= 0 || h <= 0 {
		return 1
	}
	levels := min(floorLog2(uint32(w)), floorLog2(uint32(h)), MaxMipmapLevels) // #nosec G115 -- positive dimensions
	return max(levels, 1)
}

func floorLog2(v uint32) int {
	return 31 - bits.LeadingZeros32(v)
}

// FromImage uploads img to dev as an sRGB texture with mipmaps chosen by
// MipmapLevels. Device failures are returned wrapped.
func FromImage(dev Device, img *image.RGBA) (Texture, error) {
	if img == nil {
		return nil, ErrNilImage
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	desc := Desc{Width: w, Height: h, Mipmaps: NoMipmap, Levels: 1}
	if levels := MipmapLevels(w, h); levels > 1 {
		desc.Mipmaps = AutoGeneratedMipmaps
		desc.Levels = levels
	}

	tex, err := dev.CreateTexture(desc, packedPix(img))
	if err != nil {
		return nil, fmt.Errorf("texture: create %dx%d: %w", w, h, err)
	}
	return tex, nil
}

// packedPix returns img's pixels with no padding between rows.
func packedPix(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		return img.Pix[:rowLen*b.Dy()]
	}

	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowLen]...)
	}
	return out
}
