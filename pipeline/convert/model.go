package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/naming"
)

// Animator exports an animator hierarchy as FBX through the model
// exporter. The output goes to dir/<name>/<name>.fbx, or to
// dir/<name><uniqueID>/<name>.fbx when that file already exists.
func (c *Converter) Animator(rec *asset.Record, dir string, clips []*asset.AnimationClip) (string, error) {
	a, err := payload[asset.Animator](rec)
	if err != nil {
		return "", err
	}
	if c.models == nil {
		return "", fmt.Errorf("no model exporter for %q: %w", rec.Name, asset.ErrConversionUnavailable)
	}
	base := naming.Sanitize(rec.Name)
	path, err := naming.ReserveDir(dir, base, base+".fbx", rec.UniqueID)
	if err != nil {
		return "", err
	}
	c.log.Debug("exporting model",
		zap.String("name", rec.Name), zap.Int("clips", len(clips)), zap.Float32("scale", c.cfg.Model.ScaleFactor))
	if err := c.models.ExportModel(path, a, clips, c.cfg.Model); err != nil {
		return "", fmt.Errorf("export model %q: %w", rec.Name, err)
	}
	return path, nil
}
