package texture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension matches the texture size limit of common desktop GPUs.
const DefaultMaxDimension = 16384

var ErrOutOfMemory = errors.New("texture: device out of memory")

// MemoryDevice is a headless Device that keeps textures in host memory and
// builds auto-generated mip chains on the CPU. It enforces a dimension limit
// and an optional byte budget so allocation failures can be reproduced
// without a GPU.
type MemoryDevice struct {
	// MaxDimension bounds width and height; zero means DefaultMaxDimension.
	MaxDimension int
	// Budget is the total number of bytes all live textures may occupy;
	// zero means unlimited.
	Budget int

	mu   sync.Mutex
	used int
}

// MemoryTexture is the Texture produced by MemoryDevice.
type MemoryTexture struct {
	// Levels holds the base image followed by each downsampled level.
	Levels []*image.RGBA

	dev  *MemoryDevice
	size int
	once sync.Once
}

var (
	_ Device  = (*MemoryDevice)(nil)
	_ Texture = (*MemoryTexture)(nil)
)

// CreateTexture copies pix into a new texture and derives its mip levels.
func (d *MemoryDevice) CreateTexture(desc Desc, pix []byte) (Texture, error) {
	limit := d.MaxDimension
	if limit <= 0 {
		limit = DefaultMaxDimension
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > limit || desc.Height > limit {
		return nil, fmt.Errorf("%w: %dx%d (limit %d)", ErrInvalidDimensions, desc.Width, desc.Height, limit)
	}
	if len(pix) != desc.Width*desc.Height*4 {
		return nil, fmt.Errorf("texture: %d pixel bytes for %dx%d", len(pix), desc.Width, desc.Height)
	}

	levels := 1
	if desc.Mipmaps == AutoGeneratedMipmaps {
		levels = max(desc.Levels, 1)
	}

	size := chainSize(desc.Width, desc.Height, levels)
	if err := d.reserve(size); err != nil {
		return nil, err
	}

	base := image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	copy(base.Pix, pix)

	tex := &MemoryTexture{Levels: []*image.RGBA{base}, dev: d, size: size}
	for i := 1; i < levels; i++ {
		prev := tex.Levels[i-1].Bounds()
		next := image.NewRGBA(image.Rect(0, 0, max(prev.Dx()/2, 1), max(prev.Dy()/2, 1)))
		draw.BiLinear.Scale(next, next.Bounds(), tex.Levels[i-1], prev, draw.Src, nil)
		tex.Levels = append(tex.Levels, next)
	}
	return tex, nil
}

// Used returns the number of bytes held by live textures.
func (d *MemoryDevice) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

func (d *MemoryDevice) reserve(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Budget > 0 && d.used+n > d.Budget {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrOutOfMemory, n, d.used, d.Budget)
	}
	d.used += n
	return nil
}

func (d *MemoryDevice) free(n int) {
	d.mu.Lock()
	d.used -= n
	d.mu.Unlock()
}

func (t *MemoryTexture) Width() int        { return t.Levels[0].Bounds().Dx() }
func (t *MemoryTexture) Height() int       { return t.Levels[0].Bounds().Dy() }
func (t *MemoryTexture) MipmapLevels() int { return len(t.Levels) }

// Release returns the texture's memory to its device. It is safe to call
// more than once.
func (t *MemoryTexture) Release() {
	t.once.Do(func() {
		t.dev.free(t.size)
	})
}

func chainSize(w, h, levels int) int {
	total := 0
	for range levels {
		total += w * h * 4
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return total
}
