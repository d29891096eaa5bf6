package decode

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"slices"
)

var (
	ErrNotGIF       = errors.New("gif: not a GIF stream")
	ErrEmptyScreen  = errors.New("gif: logical screen has zero size")
	ErrUnknownBlock = errors.New("gif: unknown block type")
)

// GIF89a block introducers and extension labels.
const (
	blockExtension       = 0x21
	blockImageDescriptor = 0x2C
	blockTrailer         = 0x3B

	labelGraphicControl = 0xF9
)

// GIFFrames decodes a GIF one frame at a time.
//
// Each image block is cut out of the stream, wrapped with the file's own
// header and colour table, and decoded on its own, so a corrupt block fails
// only when it is reached. Frames are composited onto a canvas the size of
// the logical screen, honouring the disposal method of the previous frame,
// and every Frame carries a private copy of that canvas.
type GIFFrames struct {
	r *bufio.Reader

	// header holds the signature, logical screen descriptor and global
	// colour table; it prefixes every per-frame stream.
	header []byte

	canvas   *image.RGBA
	previous *image.RGBA

	// Graphic control state for the next image block.
	gce      []byte
	delay    Delay
	disposal byte

	// Disposal to apply before drawing the next frame.
	lastDisposal byte
	lastRect     image.Rectangle

	index int
	err   error
}

var _ FrameDecoder = (*GIFFrames)(nil)

// NewGIFFrames reads the GIF header from r and prepares to decode frames.
func NewGIFFrames(r io.Reader) (*GIFFrames, error) {
	br := bufio.NewReader(r)

	header := make([]byte, 13)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("gif: reading header: %w", err)
	}

	sig := string(header[:6])
	if sig != "GIF87a" && sig != "GIF89a" {
		return nil, ErrNotGIF
	}
	// Graphic control extensions are a GIF89a feature.
	copy(header, "GIF89a")

	width := int(binary.LittleEndian.Uint16(header[6:8]))
	height := int(binary.LittleEndian.Uint16(header[8:10]))
	if width == 0 || height == 0 {
		return nil, ErrEmptyScreen
	}

	if flags := header[10]; flags&0x80 != 0 {
		table := make([]byte, colorTableSize(flags))
		if _, err := io.ReadFull(br, table); err != nil {
			return nil, fmt.Errorf("gif: reading global color table: %w", err)
		}
		header = append(header, table...)
	}

	return &GIFFrames{
		r:      br,
		header: header,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Next decodes the next frame. It returns io.EOF once the trailer is reached.
func (g *GIFFrames) Next() (Frame, error) {
	if g.err != nil {
		return Frame{}, g.err
	}

	f, err := g.next()
	if err != nil {
		g.err = err
		return Frame{}, err
	}
	g.index++
	return f, nil
}

func (g *GIFFrames) next() (Frame, error) {
	for {
		b, err := g.r.ReadByte()
		if err != nil {
			return Frame{}, unexpected(err)
		}

		switch b {
		case blockExtension:
			if err := g.readExtension(); err != nil {
				return Frame{}, err
			}
		case blockImageDescriptor:
			return g.readFrame()
		case blockTrailer:
			return Frame{}, io.EOF
		default:
			return Frame{}, fmt.Errorf("%w: 0x%02x before frame %d", ErrUnknownBlock, b, g.index)
		}
	}
}

func (g *GIFFrames) readExtension() error {
	label, err := g.r.ReadByte()
	if err != nil {
		return unexpected(err)
	}

	raw, err := g.readSubBlocks()
	if err != nil {
		return err
	}
	if label != labelGraphicControl {
		return nil
	}

	// raw[0] is the block size, followed by packed fields, delay and
	// transparent index.
	if len(raw) < 6 || raw[0] < 4 {
		return fmt.Errorf("gif: short graphic control extension before frame %d", g.index)
	}
	g.gce = append([]byte{blockExtension, labelGraphicControl}, raw...)
	g.disposal = (raw[1] >> 2) & 0x07
	g.delay = DelayFromCentiseconds(binary.LittleEndian.Uint16(raw[2:4]))
	return nil
}

func (g *GIFFrames) readFrame() (Frame, error) {
	desc := make([]byte, 9)
	if _, err := io.ReadFull(g.r, desc); err != nil {
		return Frame{}, unexpected(err)
	}

	var local []byte
	if flags := desc[8]; flags&0x80 != 0 {
		local = make([]byte, colorTableSize(flags))
		if _, err := io.ReadFull(g.r, local); err != nil {
			return Frame{}, unexpected(err)
		}
	}

	litWidth, err := g.r.ReadByte()
	if err != nil {
		return Frame{}, unexpected(err)
	}
	data, err := g.readSubBlocks()
	if err != nil {
		return Frame{}, err
	}

	var buf bytes.Buffer
	buf.Grow(len(g.header) + len(g.gce) + len(desc) + len(local) + len(data) + 3)
	buf.Write(g.header)
	buf.Write(g.gce)
	buf.WriteByte(blockImageDescriptor)
	buf.Write(desc)
	buf.Write(local)
	buf.WriteByte(litWidth)
	buf.Write(data)
	buf.WriteByte(blockTrailer)

	img, err := gif.Decode(&buf)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", g.index, err)
	}
	pm, ok := img.(*image.Paletted)
	if !ok {
		return Frame{}, fmt.Errorf("frame %d: unexpected image type %T", g.index, img)
	}

	g.compose(pm)
	f := Frame{Image: cloneRGBA(g.canvas), Delay: g.delay}

	// A graphic control extension only applies to the image that follows it.
	g.gce = nil
	g.delay = Delay{}
	g.disposal = 0
	return f, nil
}

func (g *GIFFrames) compose(pm *image.Paletted) {
	switch g.lastDisposal {
	case gif.DisposalBackground:
		draw.Draw(g.canvas, g.lastRect, image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		if g.previous != nil {
			draw.Draw(g.canvas, g.lastRect, g.previous, g.lastRect.Min, draw.Src)
		}
	}

	if g.disposal == gif.DisposalPrevious {
		g.previous = cloneRGBA(g.canvas)
	}

	r := pm.Bounds()
	draw.Draw(g.canvas, r, pm, r.Min, draw.Over)
	g.lastDisposal = g.disposal
	g.lastRect = r
}

// readSubBlocks returns a chain of data sub-blocks verbatim, size bytes and
// zero terminator included.
func (g *GIFFrames) readSubBlocks() ([]byte, error) {
	var raw []byte
	for {
		n, err := g.r.ReadByte()
		if err != nil {
			return nil, unexpected(err)
		}
		raw = append(raw, n)
		if n == 0 {
			return raw, nil
		}

		start := len(raw)
		raw = append(raw, make([]byte, n)...)
		if _, err := io.ReadFull(g.r, raw[start:]); err != nil {
			return nil, unexpected(err)
		}
	}
}

func colorTableSize(flags byte) int {
	return 3 * (1 << ((flags & 0x07) + 1))
}

func cloneRGBA(m *image.RGBA) *image.RGBA {
	return &image.RGBA{
		Pix:    slices.Clone(m.Pix),
		Stride: m.Stride,
		Rect:   m.Rect,
	}
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
