package convert

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

// Texture exports a texture under name. With conversion enabled the pixels
// are encoded in the configured image format; when the decoder declines
// the format, or conversion is disabled, the raw image data is written as
// .tex instead.
func (c *Converter) Texture(rec *asset.Record, name, dir string) (string, error) {
	tex, err := payload[asset.Texture](rec)
	if err != nil {
		return "", err
	}
	if c.cfg.ConvertTexture {
		img, err := c.decoder.DecodeTexture(tex)
		if err == nil && img == nil {
			err = fmt.Errorf("decoder returned no image: %w", asset.ErrConversionUnavailable)
		}
		switch {
		case err == nil:
			path, err := c.reserve(rec, name, dir, c.cfg.ImageFormat.Ext())
			if err != nil {
				return "", err
			}
			return path, c.writeImage(path, img)
		case errors.Is(err, asset.ErrConversionUnavailable):
			c.log.Warn("texture not decodable, writing raw data",
				zap.String("name", rec.Name), zap.Int("format", int(tex.Format)), zap.Error(err))
		default:
			return "", err
		}
	}

	path, err := c.reserve(rec, name, dir, ".tex")
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, tex.ImageData)
}

// Sprite renders a sprite out of its atlas and encodes it in the
// configured image format.
func (c *Converter) Sprite(rec *asset.Record, name, dir string) (string, error) {
	s, err := payload[asset.Sprite](rec)
	if err != nil {
		return "", err
	}
	path, err := c.reserve(rec, name, dir, c.cfg.ImageFormat.Ext())
	if err != nil {
		return "", err
	}
	img, err := c.sprites.RenderSprite(s)
	if err != nil {
		return "", err
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("sprite %q rendered empty: %w", rec.Name, asset.ErrMalformed)
	}
	return path, c.writeImage(path, img)
}
