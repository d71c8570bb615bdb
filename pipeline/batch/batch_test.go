package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/dispatch"
	"github.com/1siamBot/asset-exporter/pipeline/table"
)

type fakeExporter struct {
	mu       sync.Mutex
	inFlight map[string]int
	overlap  bool
	calls    atomic.Int32
	fail     string
}

func (f *fakeExporter) Export(rec *asset.Record, dir string) dispatch.Result {
	f.calls.Add(1)
	f.mu.Lock()
	if f.inFlight == nil {
		f.inFlight = make(map[string]int)
	}
	f.inFlight[rec.Name]++
	if f.inFlight[rec.Name] > 1 {
		f.overlap = true
	}
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.inFlight[rec.Name]--
	f.mu.Unlock()

	if rec.Name == f.fail {
		err := fmt.Errorf("%s: %w", rec.Name, asset.ErrMalformed)
		return dispatch.Result{Name: rec.Name, Kind: rec.Kind, Err: err, Reason: dispatch.Classify(err)}
	}
	return dispatch.Result{Name: rec.Name, Kind: rec.Kind, Path: filepath.Join(dir, rec.Name)}
}

func records(names ...string) []*asset.Record {
	recs := make([]*asset.Record, len(names))
	for i, n := range names {
		recs[i] = &asset.Record{Kind: asset.KindTextAsset, Name: n}
	}
	return recs
}

func TestRunKeepsInputOrder(t *testing.T) {
	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("item%02d", i)
	}
	exp := &fakeExporter{fail: "item07"}

	results, err := Run(context.Background(), exp, records(names...), "out", 8)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, r := range results {
		if r.Name != names[i] {
			t.Fatalf("results[%d] = %q, want %q", i, r.Name, names[i])
		}
	}
	if results[7].OK() || results[7].Reason != dispatch.ReasonMalformed {
		t.Errorf("results[7] = %+v", results[7])
	}

	s := Summarize(results)
	if s.Total != 40 || s.Succeeded != 39 || s.Failed != 1 || s.ByReason[dispatch.ReasonMalformed] != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestRunSerializesSameName(t *testing.T) {
	exp := &fakeExporter{}
	recs := records("hero", "hero", "hero", "hero", "villain", "villain")
	if _, err := Run(context.Background(), exp, recs, "out", 6); err != nil {
		t.Fatal(err)
	}
	if exp.overlap {
		t.Error("records with the same name were exported concurrently")
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exp := &fakeExporter{}

	results, err := Run(ctx, exp, records("a", "b", "c"), "out", 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if n := exp.calls.Load(); n != 0 {
		t.Errorf("exporter called %d times", n)
	}
	for i, r := range results {
		if r.Reason != dispatch.ReasonCanceled || r.Name == "" {
			t.Errorf("results[%d] = %+v", i, r)
		}
	}
}

func TestPaths(t *testing.T) {
	results := []dispatch.Result{
		{Name: "a", Path: "out/a.png"},
		{Name: "b", Err: asset.ErrMalformed},
		{Name: "cat", Table: &table.Report{Exported: 1, Skipped: 1, Entries: []table.EntryResult{
			{Identifier: "Hero", Path: "out/Hero.png", Outcome: table.Exported},
			{Identifier: "Ghost", Outcome: table.Skipped},
		}}},
	}
	got := Paths(results)
	if len(got) != 2 || got[0] != "out/a.png" || got[1] != "out/Hero.png" {
		t.Errorf("Paths = %v", got)
	}
	if s := Summarize(results); s.TableExported != 1 || s.TableSkipped != 1 {
		t.Errorf("summary = %+v", s)
	}
}
