package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMipmapLevels(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{1, 1, 1},
		{256, 256, 4},
		{3, 5, 1},
		{2, 2, 1},
		{4, 4, 2},
		{8, 1024, 3},
		{4096, 16, 4},
		{1, 4096, 1},
		{0, 10, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MipmapLevels(tt.w, tt.h), "MipmapLevels(%d, %d)", tt.w, tt.h)
	}
}

type recordingDevice struct {
	desc Desc
	pix  []byte
	err  error
}

func (d *recordingDevice) CreateTexture(desc Desc, pix []byte) (Texture, error) {
	d.desc = desc
	d.pix = pix
	if d.err != nil {
		return nil, d.err
	}
	return (&MemoryDevice{}).CreateTexture(desc, pix)
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImage_MipmapSelection(t *testing.T) {
	t.Run("small image disables mipmaps", func(t *testing.T) {
		dev := &recordingDevice{}
		tex, err := FromImage(dev, solid(3, 5, color.RGBA{A: 255}))
		require.NoError(t, err)

		assert.Equal(t, NoMipmap, dev.desc.Mipmaps)
		assert.Equal(t, 1, dev.desc.Levels)
		assert.Equal(t, 1, tex.MipmapLevels())
	})

	t.Run("large image is capped", func(t *testing.T) {
		dev := &recordingDevice{}
		tex, err := FromImage(dev, solid(256, 256, color.RGBA{R: 10, A: 255}))
		require.NoError(t, err)

		assert.Equal(t, AutoGeneratedMipmaps, dev.desc.Mipmaps)
		assert.Equal(t, 4, dev.desc.Levels)
		assert.Equal(t, 4, tex.MipmapLevels())
		assert.Equal(t, 256, tex.Width())
		assert.Equal(t, 256, tex.Height())
	})
}

func TestFromImage_PacksSubImage(t *testing.T) {
	img := solid(4, 4, color.RGBA{R: 1, A: 255})
	img.SetRGBA(2, 2, color.RGBA{G: 9, A: 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	dev := &recordingDevice{}
	_, err := FromImage(dev, sub)
	require.NoError(t, err)

	require.Len(t, dev.pix, 2*2*4)
	// Pixel (2,2) of the parent is (1,1) of the sub-image.
	assert.Equal(t, []byte{0, 9, 0, 255}, dev.pix[12:16])
}

func TestFromImage_Errors(t *testing.T) {
	_, err := FromImage(&MemoryDevice{}, nil)
	assert.ErrorIs(t, err, ErrNilImage)

	_, err = FromImage(&MemoryDevice{}, image.NewRGBA(image.Rect(0, 0, 0, 3)))
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	boom := errors.New("context lost")
	_, err = FromImage(&recordingDevice{err: boom}, solid(2, 2, color.RGBA{}))
	assert.ErrorIs(t, err, boom)
}

func TestMemoryDevice_Limits(t *testing.T) {
	t.Run("dimension limit", func(t *testing.T) {
		dev := &MemoryDevice{MaxDimension: 8}
		_, err := FromImage(dev, solid(16, 4, color.RGBA{}))
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("budget", func(t *testing.T) {
		dev := &MemoryDevice{Budget: 2 * 4 * 4 * 4}

		a, err := FromImage(dev, solid(4, 4, color.RGBA{}))
		require.NoError(t, err)
		// 4x4 gets two levels: 64 + 16 bytes.
		assert.Equal(t, 80, dev.Used())

		_, err = FromImage(dev, solid(4, 4, color.RGBA{}))
		assert.ErrorIs(t, err, ErrOutOfMemory)

		a.(*MemoryTexture).Release()
		a.(*MemoryTexture).Release()
		assert.Equal(t, 0, dev.Used())

		_, err = FromImage(dev, solid(4, 4, color.RGBA{}))
		assert.NoError(t, err)
	})

	t.Run("pixel length mismatch", func(t *testing.T) {
		_, err := (&MemoryDevice{}).CreateTexture(Desc{Width: 2, Height: 2}, make([]byte, 3))
		assert.Error(t, err)
	})
}

func TestMemoryDevice_MipChain(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	tex, err := FromImage(&MemoryDevice{}, solid(64, 32, c))
	require.NoError(t, err)

	mt := tex.(*MemoryTexture)
	require.Len(t, mt.Levels, 4)

	wantSizes := []image.Point{{64, 32}, {32, 16}, {16, 8}, {8, 4}}
	for i, lvl := range mt.Levels {
		assert.Equal(t, wantSizes[i], lvl.Bounds().Size(), "level %d", i)
		// Scaling a flat colour leaves it unchanged.
		assert.Equal(t, c, lvl.RGBAAt(lvl.Bounds().Dx()/2, lvl.Bounds().Dy()/2), "level %d", i)
	}
}

func TestMipmapMode_String(t *testing.T) {
	assert.Equal(t, "none", NoMipmap.String())
	assert.Equal(t, "auto", AutoGeneratedMipmaps.String())
	assert.Equal(t, "unknown", MipmapMode(7).String())
}
