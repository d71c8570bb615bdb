package convert

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

var openTypeMagic = []byte("OTTO")

// AudioClip writes a WAV transcode when enabled and possible, and the
// native stream under the codec's extension otherwise.
func (c *Converter) AudioClip(rec *asset.Record, name, dir string) (string, error) {
	clip, err := payload[asset.AudioClip](rec)
	if err != nil {
		return "", err
	}
	if len(clip.Data) == 0 {
		return "", fmt.Errorf("audio clip %q has no data: %w", rec.Name, asset.ErrMalformed)
	}
	if c.cfg.ConvertAudio && c.audio.IsTranscodable(clip) {
		wav, err := c.audio.TranscodeToWAV(clip)
		if err == nil && wav == nil {
			err = fmt.Errorf("codec returned no audio: %w", asset.ErrConversionUnavailable)
		}
		switch {
		case err == nil:
			path, err := c.reserve(rec, name, dir, ".wav")
			if err != nil {
				return "", err
			}
			return path, c.writeBytes(path, wav)
		case errors.Is(err, asset.ErrConversionUnavailable):
			c.log.Warn("audio transcode declined, writing native stream",
				zap.String("name", rec.Name), zap.Error(err))
		default:
			return "", err
		}
	}

	path, err := c.reserve(rec, name, dir, c.audio.NativeExtension(clip))
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, clip.Data)
}

// Font writes the font program, as .otf when it carries the OpenType CFF
// signature and .ttf otherwise.
func (c *Converter) Font(rec *asset.Record, name, dir string) (string, error) {
	f, err := payload[asset.Font](rec)
	if err != nil {
		return "", err
	}
	if len(f.Data) == 0 {
		return "", fmt.Errorf("font %q has no data: %w", rec.Name, asset.ErrMalformed)
	}
	ext := ".ttf"
	if bytes.HasPrefix(f.Data, openTypeMagic) {
		ext = ".otf"
	}
	path, err := c.reserve(rec, name, dir, ext)
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, f.Data)
}

// VideoClip writes clips backed by an external resource stream, keeping
// the extension of the clip's original path.
func (c *Converter) VideoClip(rec *asset.Record, name, dir string) (string, error) {
	v, err := payload[asset.VideoClip](rec)
	if err != nil {
		return "", err
	}
	if v.ExternalSize <= 0 || len(v.Data) == 0 {
		return "", fmt.Errorf("video clip %q has no external data: %w", rec.Name, asset.ErrMalformed)
	}
	path, err := c.reserve(rec, name, dir, filepath.Ext(v.OriginalPath))
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, v.Data)
}

func (c *Converter) MovieTexture(rec *asset.Record, name, dir string) (string, error) {
	m, err := payload[asset.MovieTexture](rec)
	if err != nil {
		return "", err
	}
	path, err := c.reserve(rec, name, dir, ".ogv")
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, m.Data)
}
