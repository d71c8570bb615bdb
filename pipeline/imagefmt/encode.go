package imagefmt

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Encoder writes pixel buffers in one of the supported formats.
type Encoder struct {
	JPEGQuality int
}

// NewEncoder returns an encoder with imaging's default JPEG quality.
func NewEncoder() *Encoder {
	return &Encoder{JPEGQuality: 95}
}

var imagingFormats = map[Format]imaging.Format{
	PNG:  imaging.PNG,
	JPEG: imaging.JPEG,
	BMP:  imaging.BMP,
	TIFF: imaging.TIFF,
	GIF:  imaging.GIF,
}

func (e *Encoder) Encode(w io.Writer, img image.Image, f Format) error {
	if f == TGA {
		return encodeTGA(w, img)
	}
	imf, ok := imagingFormats[f]
	if !ok {
		return fmt.Errorf("encode: unsupported format %s", f)
	}
	return imaging.Encode(w, img, imf, imaging.JPEGQuality(e.JPEGQuality))
}

// encodeTGA writes an uncompressed 32-bit true-color TGA with a top-left
// origin.
func encodeTGA(w io.Writer, img image.Image) error {
	src := imaging.Clone(img)
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	if width > 0xffff || height > 0xffff {
		return fmt.Errorf("tga: %dx%d exceeds 65535", width, height)
	}

	var hdr [18]byte
	hdr[2] = 2 // uncompressed true-color
	binary.LittleEndian.PutUint16(hdr[12:], uint16(width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(height))
	hdr[16] = 32
	hdr[17] = 0x28 // 8 alpha bits, top-left origin
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		line := src.Pix[y*src.Stride : y*src.Stride+width*4]
		for x := 0; x < width; x++ {
			r, g, bl, a := line[x*4], line[x*4+1], line[x*4+2], line[x*4+3]
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = bl, g, r, a
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
