package imagefmt

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

// TextureImageDecoder is the decoding half SpriteRenderer needs.
type TextureImageDecoder interface {
	DecodeTexture(tex *asset.Texture) (image.Image, error)
}

// SpriteRenderer cuts a sprite out of its atlas texture and undoes the
// packing rotation.
type SpriteRenderer struct {
	Decoder TextureImageDecoder
}

func (r SpriteRenderer) RenderSprite(s *asset.Sprite) (image.Image, error) {
	if s == nil || s.Texture == nil {
		return nil, fmt.Errorf("sprite has no texture: %w", asset.ErrMalformed)
	}
	dec := r.Decoder
	if dec == nil {
		dec = TextureDecoder{}
	}
	atlas, err := dec.DecodeTexture(s.Texture)
	if err != nil {
		return nil, err
	}

	// Sprite rects use a bottom-left origin; the decoded atlas is upright.
	ab := atlas.Bounds()
	x0 := int(math.Floor(float64(s.Rect.X)))
	x1 := int(math.Ceil(float64(s.Rect.X + s.Rect.Width)))
	top := int(math.Floor(float64(float32(ab.Dy()) - s.Rect.Y - s.Rect.Height)))
	bottom := int(math.Ceil(float64(float32(ab.Dy()) - s.Rect.Y)))
	src := image.Rect(x0, top, x1, bottom).Add(ab.Min).Intersect(ab)
	if src.Empty() {
		return nil, fmt.Errorf("sprite rect %+v is outside its %dx%d texture: %w",
			s.Rect, ab.Dx(), ab.Dy(), asset.ErrMalformed)
	}

	out := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	xdraw.Copy(out, image.Point{}, atlas, src, xdraw.Src, nil)

	switch s.Packing {
	case asset.PackingFlipHorizontal:
		return imaging.FlipH(out), nil
	case asset.PackingFlipVertical:
		return imaging.FlipV(out), nil
	case asset.PackingRotate180:
		return imaging.Rotate180(out), nil
	case asset.PackingRotate90:
		return imaging.Rotate90(out), nil
	}
	return out, nil
}
