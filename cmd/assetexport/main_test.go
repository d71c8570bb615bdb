package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/config"
	"github.com/1siamBot/asset-exporter/pipeline/dispatch"
)

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty list should be nil")
	}
}

func TestSelectRecords(t *testing.T) {
	all := []*asset.Record{
		{Kind: asset.KindMonoBehaviour, Name: "master_index"},
		{Kind: asset.KindMonoBehaviour, Name: "IconCatalog"},
		{Kind: asset.KindTexture2D, Name: "atlas"},
		{Kind: asset.KindUnknown, TypeName: "Material", Name: "mat"},
	}

	got := selectRecords(all, runOptions{mode: dispatch.ModeTable})
	if len(got) != 1 || got[0].Name != "IconCatalog" {
		t.Errorf("table default = %v", names(got))
	}
	got = selectRecords(all, runOptions{mode: dispatch.ModeTable, catalogs: []string{"master_index"}})
	if len(got) != 1 || got[0].Name != "master_index" {
		t.Errorf("named catalogs = %v", names(got))
	}
	got = selectRecords(all, runOptions{mode: dispatch.ModeConvert, kinds: []string{"texture2d", "Material"}})
	if len(got) != 2 || got[0].Name != "atlas" || got[1].Name != "mat" {
		t.Errorf("kinds = %v", names(got))
	}
	if got = selectRecords(all, runOptions{mode: dispatch.ModeRaw}); len(got) != 4 {
		t.Errorf("raw = %v", names(got))
	}
}

func names(recs []*asset.Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.json")
	doc := `{"records": [
	  {"kind": "TextAsset", "name": "readme", "container": "docs/readme.md", "payload": {"script": "aGk="}},
	  {"kind": "AnimationClip", "name": "walk", "payload": {"name": "walk"}}
	]}`
	if err := os.WriteFile(manifestPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	cfg := config.Default()
	cfg.MetricsFile = filepath.Join(dir, "metrics.prom")

	err := run(context.Background(), zaptest.NewLogger(t), cfg, runOptions{
		manifest: manifestPath,
		out:      out,
		mode:     dispatch.ModeConvert,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "readme.txt"))
	if err != nil || string(data) != "hi" {
		t.Errorf("readme.txt = %q, %v", data, err)
	}
	if _, err := os.Stat(cfg.MetricsFile); err != nil {
		t.Errorf("metrics file: %v", err)
	}
}
