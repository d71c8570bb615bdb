package dispatch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/checksum"
	"github.com/1siamBot/asset-exporter/pipeline/config"
	"github.com/1siamBot/asset-exporter/pipeline/convert"
	"github.com/1siamBot/asset-exporter/pipeline/naming"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

func newDispatcher(t *testing.T, opts ...convert.Option) *Dispatcher {
	t.Helper()
	log := zaptest.NewLogger(t)
	opts = append([]convert.Option{convert.WithLogger(log)}, opts...)
	return New(convert.New(config.Default(), opts...), log)
}

func texture(name string) *asset.Record {
	return &asset.Record{
		Kind: asset.KindTexture2D, Name: name, UniqueID: "#1",
		Payload: &asset.Texture{Width: 1, Height: 1, Format: asset.FormatRGBA32, ImageData: []byte{1, 2, 3, 4}},
	}
}

func TestAnimationClipNeverWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := newDispatcher(t)
	rec := &asset.Record{Kind: asset.KindAnimationClip, Name: "walk", Raw: []byte("x"), Payload: &asset.AnimationClip{Name: "walk"}}

	res := d.Export(rec, dir)
	if res.OK() || res.Reason != ReasonNotExportable || res.Path != "" {
		t.Errorf("result = %+v", res)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("output directory was created: %v", err)
	}
}

func TestExportRoutesByKind(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t)

	res := d.Export(texture("hero"), dir)
	if !res.OK() || filepath.Base(res.Path) != "hero.png" || res.Reason != ReasonNone {
		t.Errorf("texture result = %+v", res)
	}

	unknown := &asset.Record{Kind: asset.KindUnknown, TypeName: "Material", Name: "mat", Raw: []byte("raw")}
	res = d.Export(unknown, dir)
	if !res.OK() || filepath.Ext(res.Path) != ".dat" {
		t.Errorf("unknown result = %+v", res)
	}

	mesh := &asset.Record{Kind: asset.KindMesh, Name: "empty", Payload: &asset.Mesh{}}
	res = d.Export(mesh, dir)
	if res.OK() || res.Reason != ReasonMalformed {
		t.Errorf("empty mesh result = %+v", res)
	}
}

func TestNameTakenIsReported(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t)
	rec := texture("dup")
	for i := 0; i < 2; i++ {
		if res := d.Export(rec, dir); !res.OK() {
			t.Fatalf("export %d: %+v", i, res)
		}
	}
	if res := d.Export(rec, dir); res.Reason != ReasonNameTaken {
		t.Errorf("third export = %+v", res)
	}
}

type panickingDecoder struct{}

func (panickingDecoder) DecodeTexture(*asset.Texture) (image.Image, error) {
	panic("corrupt mip chain")
}

func TestPanicIsRecovered(t *testing.T) {
	d := newDispatcher(t, convert.WithImageDecoder(panickingDecoder{}))
	res := d.Export(texture("boom"), t.TempDir())
	if res.OK() || res.Reason != ReasonPanic {
		t.Errorf("result = %+v", res)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Reason
	}{
		{nil, ReasonNone},
		{fmt.Errorf("x: %w", naming.ErrNameTaken), ReasonNameTaken},
		{fmt.Errorf("x: %w", &checksum.ConversionError{Index: 1, Value: 300}), ReasonChecksum},
		{fmt.Errorf("x: %w", asset.ErrConversionUnavailable), ReasonConversionUnavailable},
		{fmt.Errorf("x: %w", value.ErrMissingField), ReasonMalformed},
		{&os.PathError{Op: "open", Path: "/x", Err: os.ErrPermission}, ReasonIO},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func catalogAssets(t *testing.T) (cat *asset.Record, all []*asset.Record) {
	t.Helper()
	h, err := checksum.String("guid-hero")
	if err != nil {
		t.Fatal(err)
	}
	master := value.FromMap(value.NewMap().Set("AssetBundles", value.Seq(
		value.FromMap(value.NewMap().Set("_assetIndices", value.Seq(
			value.FromMap(value.NewMap().Set("_name", value.String("hero")).Set("_hashedGuid", value.Int(int64(h)))),
		))),
	)))
	tree := value.FromMap(value.NewMap().
		Set("m_assetTable", value.Seq(value.FromMap(value.NewMap().Set("m_identifier", value.String("HeroPortrait"))))).
		Set("_resources", value.Seq(value.FromMap(value.NewMap().Set("_editorGuid", value.String("guid-hero"))))))
	cat = &asset.Record{Kind: asset.KindMonoBehaviour, Name: "catalog", Payload: &asset.MonoBehaviour{Tree: tree}}
	all = []*asset.Record{
		{Kind: asset.KindMonoBehaviour, Name: "master_index", Payload: &asset.MonoBehaviour{Tree: master}},
		texture("hero"),
		cat,
	}
	return cat, all
}

func TestExportTable(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t)
	cat, all := catalogAssets(t)

	res := d.ExportTable(cat, all, dir)
	if !res.OK() || res.Table == nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Table.Exported != 1 {
		t.Errorf("report = %+v", res.Table)
	}
	if _, err := os.Stat(filepath.Join(dir, "HeroPortrait.png")); err != nil {
		t.Errorf("renamed export missing: %v", err)
	}

	notCatalog := d.ExportTable(texture("t"), all, dir)
	if notCatalog.OK() || notCatalog.Reason != ReasonMalformed {
		t.Errorf("non-catalog result = %+v", notCatalog)
	}
}

func TestExportTableKeepsEarlierExportOfSameName(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t)
	_, all := catalogAssets(t)
	if res := d.Export(texture("hero"), dir); !res.OK() {
		t.Fatalf("plain export = %+v", res)
	}

	tree := value.FromMap(value.NewMap().
		Set("m_assetTable", value.Seq(value.FromMap(value.NewMap().Set("m_identifier", value.String("hero"))))).
		Set("_resources", value.Seq(value.FromMap(value.NewMap().Set("_editorGuid", value.String("guid-hero"))))))
	cat := &asset.Record{Kind: asset.KindMonoBehaviour, Name: "catalog", Payload: &asset.MonoBehaviour{Tree: tree}}

	res := d.ExportTable(cat, all, dir)
	if !res.OK() || res.Table == nil || res.Table.Exported != 1 {
		t.Fatalf("result = %+v", res)
	}
	for _, name := range []string{"hero.png", "hero#1.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestNilLoggerUsesGlobal(t *testing.T) {
	dir := t.TempDir()
	d := New(convert.New(config.Default()), nil)

	if res := d.Export(texture("hero"), dir); !res.OK() {
		t.Errorf("export = %+v", res)
	}
	cat, all := catalogAssets(t)
	if res := d.ExportTable(cat, all, dir); !res.OK() || res.Table.Exported != 1 {
		t.Errorf("table export = %+v", res)
	}
}

type emptyDecoder struct{}

func (emptyDecoder) DecodeTexture(*asset.Texture) (image.Image, error) { return nil, nil }

func TestDecoderWithoutImageFallsBackToRaw(t *testing.T) {
	dir := t.TempDir()
	d := newDispatcher(t, convert.WithImageDecoder(emptyDecoder{}))
	res := d.Export(texture("hero"), dir)
	if !res.OK() || filepath.Ext(res.Path) != ".tex" {
		t.Errorf("result = %+v", res)
	}

	cat, all := catalogAssets(t)
	if res := d.ExportTable(cat, all, dir); !res.OK() || res.Table.Exported != 1 {
		t.Errorf("table export = %+v", res)
	}
}

func TestModeExporter(t *testing.T) {
	d := newDispatcher(t)
	cat, all := catalogAssets(t)

	dir := t.TempDir()
	res := d.For(ModeRaw, all, false).Export(texture("hero"), dir)
	if !res.OK() || filepath.Ext(res.Path) != ".dat" {
		t.Errorf("raw = %+v", res)
	}

	res = d.For(ModeDump, all, false).Export(cat, dir)
	if !res.OK() || filepath.Ext(res.Path) != ".txt" {
		t.Errorf("dump = %+v", res)
	}

	res = d.For(ModeTable, all, false).Export(cat, t.TempDir())
	if !res.OK() || res.Table == nil || res.Table.Exported != 1 {
		t.Errorf("table = %+v", res)
	}
}

type recordingModels struct{ clips int }

func (r *recordingModels) ExportModel(path string, _ *asset.Animator, clips []*asset.AnimationClip, _ config.ModelOptions) error {
	r.clips = len(clips)
	return os.WriteFile(path, nil, 0644)
}

func TestAnimatorReceivesClips(t *testing.T) {
	models := &recordingModels{}
	d := newDispatcher(t, convert.WithModelExporter(models))
	animator := &asset.Record{Kind: asset.KindAnimator, Name: "knight", Payload: &asset.Animator{Name: "knight"}}
	all := []*asset.Record{
		animator,
		{Kind: asset.KindAnimationClip, Name: "walk", Payload: &asset.AnimationClip{Name: "walk"}},
		{Kind: asset.KindAnimationClip, Name: "run", Payload: &asset.AnimationClip{Name: "run"}},
	}

	res := d.For(ModeConvert, all, true).Export(animator, t.TempDir())
	if !res.OK() || models.clips != 2 {
		t.Errorf("result = %+v, clips = %d", res, models.clips)
	}
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"convert", "RAW", "dump", "table"} {
		if _, err := ParseMode(name); err != nil {
			t.Errorf("ParseMode(%q): %v", name, err)
		}
	}
	if _, err := ParseMode("zip"); err == nil {
		t.Error("expected error")
	}
}
