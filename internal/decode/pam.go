package decode

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
)

var ErrInvalidPAM = errors.New("pam: invalid header")

// maxPAMPixels bounds the raster allocated for a PAM header.
const maxPAMPixels = 1 << 28

// decodePAM reads a Netpbm P7 image. Depth 1 is grey, 2 grey with alpha,
// 3 RGB and 4 RGBA; samples are scaled from MAXVAL to 8 bits. TUPLTYPE is
// ignored, the depth alone decides the layout.
func decodePAM(r *bufio.Reader) (image.Image, error) {
	magic, err := r.ReadString('\n')
	if err != nil {
		return nil, unexpected(err)
	}
	if strings.TrimSpace(magic) != "P7" {
		return nil, fmt.Errorf("%w: missing P7 magic", ErrInvalidPAM)
	}

	var width, height, depth, maxval int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, unexpected(err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key := fields[0]
		if key == "ENDHDR" {
			break
		}
		if key == "TUPLTYPE" {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPAM, strings.TrimSpace(line))
		}

		v, err := strconv.Atoi(fields[1])
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: bad %s value %q", ErrInvalidPAM, key, fields[1])
		}
		switch key {
		case "WIDTH":
			width = v
		case "HEIGHT":
			height = v
		case "DEPTH":
			depth = v
		case "MAXVAL":
			maxval = v
		default:
			return nil, fmt.Errorf("%w: unknown field %s", ErrInvalidPAM, key)
		}
	}

	switch {
	case width == 0 || height == 0 || depth == 0 || maxval == 0:
		return nil, fmt.Errorf("%w: missing WIDTH, HEIGHT, DEPTH or MAXVAL", ErrInvalidPAM)
	case depth > 4:
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidPAM, depth)
	case maxval > 65535:
		return nil, fmt.Errorf("%w: maxval %d", ErrInvalidPAM, maxval)
	case width > maxPAMPixels/height:
		return nil, fmt.Errorf("%w: %dx%d is too large", ErrInvalidPAM, width, height)
	}

	sample := 1
	if maxval > 255 {
		sample = 2
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	row := make([]byte, width*depth*sample)
	for y := range height {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, unexpected(err)
		}

		for x := range width {
			var s [4]uint8
			for c := range depth {
				off := (x*depth + c) * sample
				v := int(row[off])
				if sample == 2 {
					v = v<<8 | int(row[off+1])
				}
				s[c] = uint8(min(v, maxval) * 255 / maxval)
			}

			px := img.Pix[img.PixOffset(x, y):]
			switch depth {
			case 1:
				px[0], px[1], px[2], px[3] = s[0], s[0], s[0], 0xff
			case 2:
				px[0], px[1], px[2], px[3] = s[0], s[0], s[0], s[1]
			case 3:
				px[0], px[1], px[2], px[3] = s[0], s[1], s[2], 0xff
			case 4:
				px[0], px[1], px[2], px[3] = s[0], s[1], s[2], s[3]
			}
		}
	}
	return img, nil
}
