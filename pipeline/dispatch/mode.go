package dispatch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/table"
)

// Mode selects what a batch run does with each record.
type Mode int

const (
	ModeConvert Mode = iota
	ModeRaw
	ModeDump
	// ModeTable resolves each record as a catalog.
	ModeTable
)

var modeNames = []string{"convert", "raw", "dump", "table"}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeConvert, fmt.Errorf("unknown export mode %q", s)
}

// ModeExporter applies one Mode to every record it is given. In table mode
// all catalogs share one resolver over the run's assets and are resolved one
// at a time, since their entries are exported under catalog-chosen names.
type ModeExporter struct {
	d    *Dispatcher
	mode Mode
	all  []*asset.Record
	// clips are forwarded to every animator in convert mode.
	clips []*asset.Record

	resolverOnce sync.Once
	resolver     *table.Resolver
	tableMu      sync.Mutex
}

// For returns an exporter running mode over records drawn from all. When
// withAnimations is set, every animation clip in all is exported along
// with each animator.
func (d *Dispatcher) For(mode Mode, all []*asset.Record, withAnimations bool) *ModeExporter {
	e := &ModeExporter{d: d, mode: mode, all: all}
	if withAnimations {
		for _, rec := range all {
			if rec.Kind == asset.KindAnimationClip {
				e.clips = append(e.clips, rec)
			}
		}
	}
	return e
}

func (e *ModeExporter) Export(rec *asset.Record, dir string) Result {
	switch e.mode {
	case ModeRaw:
		return e.d.Raw(rec, dir)
	case ModeDump:
		return e.d.Dump(rec, dir)
	case ModeTable:
		e.resolverOnce.Do(func() { e.resolver = e.d.NewResolver(e.all) })
		e.tableMu.Lock()
		defer e.tableMu.Unlock()
		return e.d.ExportTableWith(e.resolver, rec, dir)
	}
	return e.d.ExportWithAnimations(rec, dir, e.clips)
}
