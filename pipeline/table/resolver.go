package table

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/checksum"
	"github.com/1siamBot/asset-exporter/pipeline/logging"
	"github.com/1siamBot/asset-exporter/pipeline/metrics"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// Exporter writes a sprite or texture under a caller-chosen name.
// *convert.Converter satisfies it.
type Exporter interface {
	Texture(rec *asset.Record, name, dir string) (string, error)
	Sprite(rec *asset.Record, name, dir string) (string, error)
}

// TypeResolver yields the structured view of a scripted object, as in
// pipeline/convert.
type TypeResolver interface {
	ResolveDeclaredType(mb *asset.MonoBehaviour) (value.Value, bool)
	InferStructuralType(mb *asset.MonoBehaviour) value.Value
}

type Outcome int

const (
	Exported Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Exported:
		return "exported"
	case Skipped:
		return "skipped"
	}
	return "failed"
}

// EntryResult is the outcome of one catalog entry.
type EntryResult struct {
	Identifier string
	// Target is the name of the resolved asset, if any.
	Target  string
	Path    string
	Outcome Outcome
	// Detail says why an entry was skipped.
	Detail string
	Err    error
}

// Report summarizes one catalog resolution.
type Report struct {
	Layout   Layout
	Exported int
	Skipped  int
	Failed   int
	Entries  []EntryResult
}

func (r *Report) add(e EntryResult) {
	switch e.Outcome {
	case Exported:
		r.Exported++
	case Skipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Entries = append(r.Entries, e)
	metrics.RecordTableEntry(r.Layout.String(), e.Outcome.String())
}

// Resolver resolves catalogs against one run's asset set. The master index
// is built on first use and shared by every catalog resolved afterwards.
// A Resolver never modifies the assets it was given.
type Resolver struct {
	exp   Exporter
	types TypeResolver
	log   *zap.Logger

	assets   []*asset.Record
	byName   map[string]*asset.Record
	byPathID map[int64]*asset.Record

	indexOnce sync.Once
	index     map[int32]string
	indexErr  error
}

// NewResolver indexes assets by name and path ID, keeping the first record
// for each key. A nil log uses the global logger.
func NewResolver(exp Exporter, types TypeResolver, assets []*asset.Record, log *zap.Logger) *Resolver {
	if log == nil {
		log = logging.L()
	}
	r := &Resolver{
		exp:      exp,
		types:    types,
		log:      log,
		assets:   assets,
		byName:   make(map[string]*asset.Record, len(assets)),
		byPathID: make(map[int64]*asset.Record, len(assets)),
	}
	for _, rec := range assets {
		if _, ok := r.byName[rec.Name]; !ok {
			r.byName[rec.Name] = rec
		}
		if rec.HasPathID {
			if _, ok := r.byPathID[rec.PathID]; !ok {
				r.byPathID[rec.PathID] = rec
			}
		}
	}
	return r
}

func (r *Resolver) tree(mb *asset.MonoBehaviour) value.Value {
	if v, ok := r.types.ResolveDeclaredType(mb); ok {
		return v
	}
	return r.types.InferStructuralType(mb)
}

func (r *Resolver) lookupIndex() (map[int32]string, error) {
	r.indexOnce.Do(func() {
		entries, err := BuildIndex(r.assets, r.tree)
		if errors.Is(err, ErrNoMasterIndex) {
			r.log.Warn("no master index, hashed references will not resolve",
				zap.String("asset", MasterIndexName))
			err = nil
		}
		if err != nil {
			r.indexErr = err
			return
		}
		r.index = make(map[int32]string, len(entries))
		for _, e := range entries {
			if _, ok := r.index[e.HashedGUID]; !ok {
				r.index[e.HashedGUID] = e.Name
			}
		}
		metrics.SetAssetIndexSize(len(entries))
		r.log.Debug("built asset index", zap.Int("entries", len(entries)))
	})
	return r.index, r.indexErr
}

// Resolve exports every target rec's catalog references, each under its
// entry identifier, into dir. Entries that do not resolve are skipped, and
// failed sub-exports are recorded in the report without failing the
// catalog. Checksum conversion errors are returned.
func (r *Resolver) Resolve(rec *asset.Record, dir string) (*Report, error) {
	mb, ok := rec.Payload.(*asset.MonoBehaviour)
	if !ok || mb == nil {
		return nil, fmt.Errorf("catalog %q is a %s: %w", rec.Name, rec.ClassName(), asset.ErrMalformed)
	}
	cat, err := normalize(r.tree(mb))
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", rec.Name, err)
	}

	report := &Report{Layout: cat.layout}
	log := r.log.With(zap.String("catalog", rec.Name), zap.Stringer("layout", cat.layout))
	if !cat.hasResources {
		for _, e := range cat.entries {
			report.add(logEntry(log, r.byPathIDEntry(log, e, dir)))
		}
		return report, nil
	}

	index, err := r.lookupIndex()
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", rec.Name, err)
	}
	var errs []error
	for i, e := range cat.entries {
		var res value.Value
		if i < len(cat.resources) {
			res = cat.resources[i]
		}
		er := r.byResourceEntry(index, e, res, dir)
		if er.Err != nil && errors.Is(er.Err, checksum.ErrConversion) {
			errs = append(errs, er.Err)
		}
		report.add(logEntry(log, er))
	}
	return report, errors.Join(errs...)
}

func logEntry(log *zap.Logger, er EntryResult) EntryResult {
	switch er.Outcome {
	case Skipped:
		log.Debug("skipped entry", zap.String("identifier", er.Identifier), zap.String("reason", er.Detail))
	case Failed:
		log.Warn("entry export failed", zap.String("identifier", er.Identifier), zap.Error(er.Err))
	}
	return er
}

func skipped(ident, detail string) EntryResult {
	return EntryResult{Identifier: ident, Outcome: Skipped, Detail: detail}
}

func (r *Resolver) byResourceEntry(index map[int32]string, entry, resource value.Value, dir string) EntryResult {
	em, err := entry.AsMap()
	if err != nil {
		return skipped("", "entry is not a map")
	}
	ident, err := em.GetString(identifierKey)
	if err != nil {
		return skipped("", "entry has no identifier")
	}
	rm, err := resource.AsMap()
	if err != nil {
		return skipped(ident, "no resource for entry")
	}
	guid, err := rm.GetString(editorGUIDKey)
	if err != nil {
		return skipped(ident, "resource has no editor guid")
	}
	hashed, err := checksum.String(guid)
	if err != nil {
		return EntryResult{Identifier: ident, Outcome: Failed, Err: fmt.Errorf("hash guid of %q: %w", ident, err)}
	}

	name, ok := index[hashed]
	if !ok {
		return skipped(ident, fmt.Sprintf("hashed guid %d not in index", hashed))
	}
	target, ok := r.byName[name]
	if !ok {
		return skipped(ident, fmt.Sprintf("no asset named %q", name))
	}

	var path string
	switch target.Kind {
	case asset.KindSprite:
		path, err = r.exp.Sprite(target, ident, dir)
	case asset.KindTexture2D:
		path, err = r.exp.Texture(target, ident, dir)
	default:
		return skipped(ident, fmt.Sprintf("%q is a %s", name, target.ClassName()))
	}
	if err != nil {
		return EntryResult{Identifier: ident, Target: name, Outcome: Failed, Err: err}
	}
	return EntryResult{Identifier: ident, Target: name, Path: path, Outcome: Exported}
}

func (r *Resolver) byPathIDEntry(log *zap.Logger, entry value.Value, dir string) EntryResult {
	em, err := entry.AsMap()
	if err != nil {
		return skipped("", "entry is not a map")
	}
	ident, err := em.GetString(identifierKey)
	if err != nil {
		return skipped("", "entry has no identifier")
	}
	ref, err := em.Path(originalSpriteKey, pathIDKey)
	if err != nil {
		log.Info("entry has no sprite reference", zap.String("identifier", ident), zap.Error(err))
		return skipped(ident, "no sprite reference")
	}
	pathID, err := ref.AsInt()
	if err != nil {
		log.Info("sprite reference is not an integer", zap.String("identifier", ident), zap.Stringer("kind", ref.Kind()))
		return skipped(ident, "sprite reference is not an integer")
	}
	if pathID == 0 {
		log.Info("entry references path id 0", zap.String("identifier", ident))
		return skipped(ident, "null sprite reference")
	}

	target, ok := r.byPathID[pathID]
	if !ok {
		return skipped(ident, fmt.Sprintf("no asset with path id %d", pathID))
	}
	if target.Kind != asset.KindSprite {
		return skipped(ident, fmt.Sprintf("path id %d is a %s", pathID, target.ClassName()))
	}
	path, err := r.exp.Sprite(target, ident, dir)
	if err != nil {
		return EntryResult{Identifier: ident, Target: target.Name, Outcome: Failed, Err: err}
	}
	return EntryResult{Identifier: ident, Target: target.Name, Path: path, Outcome: Exported}
}
