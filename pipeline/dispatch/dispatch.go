// Package dispatch routes asset records to their converters and turns
// every outcome, including converter panics, into a Result.
package dispatch

import (
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/convert"
	"github.com/1siamBot/asset-exporter/pipeline/logging"
	"github.com/1siamBot/asset-exporter/pipeline/metrics"
	"github.com/1siamBot/asset-exporter/pipeline/table"
)

type Dispatcher struct {
	conv *convert.Converter
	log  *zap.Logger
}

// New returns a Dispatcher over conv. A nil log uses the global logger.
func New(conv *convert.Converter, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = logging.L()
	}
	return &Dispatcher{conv: conv, log: log}
}

// Export converts rec into dir according to its kind.
func (d *Dispatcher) Export(rec *asset.Record, dir string) Result {
	return d.ExportWithAnimations(rec, dir, nil)
}

// ExportWithAnimations is Export with animation clips forwarded to the
// model exporter when rec is an animator. Clips are ignored for other
// kinds.
func (d *Dispatcher) ExportWithAnimations(rec *asset.Record, dir string, clips []*asset.Record) Result {
	return d.run(rec, "convert", func() (string, error) {
		return d.convert(rec, dir, clips)
	})
}

func (d *Dispatcher) convert(rec *asset.Record, dir string, clips []*asset.Record) (string, error) {
	c := d.conv
	switch rec.Kind {
	case asset.KindTexture2D:
		return c.Texture(rec, rec.Name, dir)
	case asset.KindAudioClip:
		return c.AudioClip(rec, rec.Name, dir)
	case asset.KindShader:
		return c.Shader(rec, rec.Name, dir)
	case asset.KindTextAsset:
		return c.TextAsset(rec, rec.Name, dir)
	case asset.KindMonoBehaviour:
		return c.MonoBehaviour(rec, rec.Name, dir)
	case asset.KindFont:
		return c.Font(rec, rec.Name, dir)
	case asset.KindMesh:
		return c.Mesh(rec, rec.Name, dir)
	case asset.KindVideoClip:
		return c.VideoClip(rec, rec.Name, dir)
	case asset.KindMovieTexture:
		return c.MovieTexture(rec, rec.Name, dir)
	case asset.KindSprite:
		return c.Sprite(rec, rec.Name, dir)
	case asset.KindAnimator:
		return c.Animator(rec, dir, animationClips(clips))
	case asset.KindAnimationClip:
		return "", fmt.Errorf("animation clip %q: %w", rec.Name, asset.ErrNotExportable)
	}
	return c.Raw(rec, dir)
}

func animationClips(recs []*asset.Record) []*asset.AnimationClip {
	var clips []*asset.AnimationClip
	for _, r := range recs {
		if clip, ok := r.Payload.(*asset.AnimationClip); ok && clip != nil {
			clips = append(clips, clip)
		}
	}
	return clips
}

// Raw writes rec's undecoded bytes regardless of kind.
func (d *Dispatcher) Raw(rec *asset.Record, dir string) Result {
	return d.run(rec, "raw", func() (string, error) {
		return d.conv.Raw(rec, dir)
	})
}

// Dump writes a text dump of rec.
func (d *Dispatcher) Dump(rec *asset.Record, dir string) Result {
	return d.run(rec, "dump", func() (string, error) {
		return d.conv.Dump(rec, dir)
	})
}

// NewResolver returns a catalog resolver over one run's assets, sharing
// the dispatcher's converter.
func (d *Dispatcher) NewResolver(all []*asset.Record) *table.Resolver {
	return table.NewResolver(d.conv, d.conv.Types(), all, d.log)
}

// ExportTable resolves the catalog rec against all and exports each
// resolved target under its catalog name.
func (d *Dispatcher) ExportTable(rec *asset.Record, all []*asset.Record, dir string) Result {
	return d.ExportTableWith(d.NewResolver(all), rec, dir)
}

// ExportTableWith is ExportTable with a resolver shared across catalogs.
func (d *Dispatcher) ExportTableWith(res *table.Resolver, rec *asset.Record, dir string) Result {
	var report *table.Report
	r := d.run(rec, "table", func() (string, error) {
		var err error
		report, err = res.Resolve(rec, dir)
		return "", err
	})
	r.Table = report
	return r
}

func (d *Dispatcher) run(rec *asset.Record, op string, fn func() (string, error)) (res Result) {
	start := time.Now()
	res = Result{Name: rec.Name, Kind: rec.Kind}
	log := d.log.With(zap.String("op", op), logging.Asset(rec.ClassName(), rec.Name, rec.UniqueID))

	defer func() {
		if p := recover(); p != nil {
			res.Path = ""
			res.Err = fmt.Errorf("%s %q: %w: %v", rec.ClassName(), rec.Name, errPanic, p)
			log.Error("converter panicked", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
		}
		res.Reason = Classify(res.Err)
		status := "success"
		if res.Err != nil {
			status = res.Reason.String()
		}
		metrics.RecordExport(rec.Kind.String(), status, time.Since(start))

		if res.Err == nil {
			log.Debug("exported", zap.String("path", res.Path), zap.Duration("duration", time.Since(start)))
		} else if res.Reason != ReasonPanic {
			log.Warn("export failed", zap.Stringer("reason", res.Reason), zap.Error(res.Err))
		}
	}()

	path, err := fn()
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = path
	return res
}
