// Package batch exports a run's records concurrently.
package batch

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/dispatch"
	"github.com/1siamBot/asset-exporter/pipeline/naming"
)

// Exporter exports one record. *dispatch.ModeExporter satisfies it.
type Exporter interface {
	Export(rec *asset.Record, dir string) dispatch.Result
}

// Run exports records into dir with at most workers in flight. Results are
// in input order. Records sharing a sanitized name are exported one at a
// time so that name reservation stays deterministic. Once ctx is done no
// further records are started; those left carry ctx's error and Run
// returns it.
func Run(ctx context.Context, exp Exporter, records []*asset.Record, dir string, workers int) ([]dispatch.Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]dispatch.Result, len(records))
	started := make([]bool, len(records))
	var locks keyedMutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		started[i] = true
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = canceled(rec, err)
				return nil
			}
			unlock := locks.lock(filepath.Join(dir, naming.Sanitize(rec.Name)))
			defer unlock()
			results[i] = exp.Export(rec, dir)
			return nil
		})
	}
	_ = g.Wait()

	err := ctx.Err()
	if err != nil {
		for i, rec := range records {
			if !started[i] {
				results[i] = canceled(rec, err)
			}
		}
	}
	return results, err
}

func canceled(rec *asset.Record, err error) dispatch.Result {
	return dispatch.Result{Name: rec.Name, Kind: rec.Kind, Err: err, Reason: dispatch.Classify(err)}
}

// Summary tallies a batch's results.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByReason  map[dispatch.Reason]int
	// Table totals are summed over every catalog in the batch.
	TableExported int
	TableSkipped  int
	TableFailed   int
}

func Summarize(results []dispatch.Result) Summary {
	s := Summary{Total: len(results), ByReason: make(map[dispatch.Reason]int)}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
		} else {
			s.Failed++
			s.ByReason[r.Reason]++
		}
		if r.Table != nil {
			s.TableExported += r.Table.Exported
			s.TableSkipped += r.Table.Skipped
			s.TableFailed += r.Table.Failed
		}
	}
	return s
}

// Paths returns the files written by successful results, in order.
func Paths(results []dispatch.Result) []string {
	var paths []string
	for _, r := range results {
		if r.OK() && r.Path != "" {
			paths = append(paths, r.Path)
		}
		if r.Table != nil {
			for _, e := range r.Table.Entries {
				if e.Path != "" {
					paths = append(paths, e.Path)
				}
			}
		}
	}
	return paths
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
