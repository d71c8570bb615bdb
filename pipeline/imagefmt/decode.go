package imagefmt

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

// bytesPerPixel of the uncompressed formats the decoder handles.
var bytesPerPixel = map[asset.TextureFormat]int{
	asset.FormatAlpha8:   1,
	asset.FormatR8:       1,
	asset.FormatARGB4444: 2,
	asset.FormatRGBA4444: 2,
	asset.FormatRGB565:   2,
	asset.FormatRGB24:    3,
	asset.FormatRGBA32:   4,
	asset.FormatARGB32:   4,
	asset.FormatBGRA32:   4,
}

// TextureDecoder turns uncompressed texture data into an upright image.
// Block-compressed formats are declined with asset.ErrConversionUnavailable
// so a codec-backed decoder can be plugged in instead.
type TextureDecoder struct{}

func (TextureDecoder) DecodeTexture(tex *asset.Texture) (image.Image, error) {
	if tex == nil || tex.Width <= 0 || tex.Height <= 0 {
		return nil, fmt.Errorf("texture has no dimensions: %w", asset.ErrMalformed)
	}
	bpp, ok := bytesPerPixel[tex.Format]
	if !ok {
		return nil, fmt.Errorf("texture format %d: %w", tex.Format, asset.ErrConversionUnavailable)
	}
	need := tex.Width * tex.Height * bpp
	if len(tex.ImageData) < need {
		return nil, fmt.Errorf("texture data is %d bytes, need %d: %w", len(tex.ImageData), need, asset.ErrMalformed)
	}

	img := image.NewNRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	data := tex.ImageData
	for y := 0; y < tex.Height; y++ {
		for x := 0; x < tex.Width; x++ {
			p := (y*tex.Width + x) * bpp
			img.SetNRGBA(x, y, pixel(tex.Format, data[p:p+bpp]))
		}
	}
	// Rows are stored bottom first.
	return imaging.FlipV(img), nil
}

func pixel(f asset.TextureFormat, p []byte) color.NRGBA {
	switch f {
	case asset.FormatAlpha8:
		return color.NRGBA{255, 255, 255, p[0]}
	case asset.FormatR8:
		return color.NRGBA{p[0], 0, 0, 255}
	case asset.FormatARGB4444:
		v := uint16(p[0]) | uint16(p[1])<<8
		return color.NRGBA{nibble(v >> 8), nibble(v >> 4), nibble(v), nibble(v >> 12)}
	case asset.FormatRGBA4444:
		v := uint16(p[0]) | uint16(p[1])<<8
		return color.NRGBA{nibble(v >> 12), nibble(v >> 8), nibble(v >> 4), nibble(v)}
	case asset.FormatRGB565:
		v := uint16(p[0]) | uint16(p[1])<<8
		r := uint8(v>>11) & 0x1f
		g := uint8(v>>5) & 0x3f
		b := uint8(v) & 0x1f
		return color.NRGBA{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 255}
	case asset.FormatRGB24:
		return color.NRGBA{p[0], p[1], p[2], 255}
	case asset.FormatRGBA32:
		return color.NRGBA{p[0], p[1], p[2], p[3]}
	case asset.FormatARGB32:
		return color.NRGBA{p[1], p[2], p[3], p[0]}
	case asset.FormatBGRA32:
		return color.NRGBA{p[2], p[1], p[0], p[3]}
	}
	return color.NRGBA{}
}

// nibble expands the low four bits of v to eight.
func nibble(v uint16) uint8 {
	n := uint8(v & 0xf)
	return n<<4 | n
}
