package imagefmt

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Fit scales img down, keeping its aspect ratio, so that neither side
// exceeds limit. Images already within bounds are returned as is.
func Fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}
	tw, th := limit, limit
	if w >= h {
		th = h * limit / w
	} else {
		tw = w * limit / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
