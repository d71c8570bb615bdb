// Package convert turns single asset records into output files.
//
// Each converter narrows the record to its payload, validates it, reserves a
// collision-free path through pipeline/naming and writes the result
// atomically. Decoding of compressed formats and model construction are
// delegated to the collaborator interfaces below.
package convert

import (
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/audio"
	"github.com/1siamBot/asset-exporter/pipeline/config"
	"github.com/1siamBot/asset-exporter/pipeline/imagefmt"
	"github.com/1siamBot/asset-exporter/pipeline/logging"
	"github.com/1siamBot/asset-exporter/pipeline/metrics"
	"github.com/1siamBot/asset-exporter/pipeline/naming"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// ImageDecoder turns a texture payload into pixels.
type ImageDecoder interface {
	DecodeTexture(tex *asset.Texture) (image.Image, error)
}

// ImageEncoder writes pixels in one of the output image formats.
type ImageEncoder interface {
	Encode(w io.Writer, img image.Image, f imagefmt.Format) error
}

// SpriteRenderer cuts a sprite out of its atlas.
type SpriteRenderer interface {
	RenderSprite(s *asset.Sprite) (image.Image, error)
}

// AudioCodec transcodes audio clips to WAV and names their native streams.
type AudioCodec interface {
	IsTranscodable(clip *asset.AudioClip) bool
	TranscodeToWAV(clip *asset.AudioClip) ([]byte, error)
	NativeExtension(clip *asset.AudioClip) string
}

// ShaderDisassembler renders a shader as text.
type ShaderDisassembler interface {
	Disassemble(s *asset.Shader) (string, error)
}

// TypeResolver produces the structured view of a scripted object.
// ResolveDeclaredType reports false when the declared script type is not
// available; InferStructuralType always yields a tree.
type TypeResolver interface {
	ResolveDeclaredType(mb *asset.MonoBehaviour) (value.Value, bool)
	InferStructuralType(mb *asset.MonoBehaviour) value.Value
}

// ModelExporter writes one interchange file for an animator hierarchy.
type ModelExporter interface {
	ExportModel(path string, model *asset.Animator, clips []*asset.AnimationClip, opts config.ModelOptions) error
}

// Dumper renders a record as text, reporting false when it has no dump.
type Dumper interface {
	Dump(rec *asset.Record) (string, bool)
}

// Converter holds the configuration and collaborators shared by every
// per-kind conversion. It is safe for concurrent use when its
// collaborators are.
type Converter struct {
	cfg     config.Config
	decoder ImageDecoder
	encoder ImageEncoder
	sprites SpriteRenderer
	audio   AudioCodec
	shaders ShaderDisassembler
	types   TypeResolver
	models  ModelExporter
	dumper  Dumper
	log     *zap.Logger
}

// Option overrides a collaborator.
type Option func(*Converter)

func WithImageDecoder(d ImageDecoder) Option { return func(c *Converter) { c.decoder = d } }
func WithImageEncoder(e ImageEncoder) Option { return func(c *Converter) { c.encoder = e } }
func WithSpriteRenderer(r SpriteRenderer) Option { return func(c *Converter) { c.sprites = r } }
func WithAudioCodec(a AudioCodec) Option { return func(c *Converter) { c.audio = a } }
func WithShaderDisassembler(s ShaderDisassembler) Option { return func(c *Converter) { c.shaders = s } }
func WithTypeResolver(t TypeResolver) Option { return func(c *Converter) { c.types = t } }
func WithModelExporter(m ModelExporter) Option { return func(c *Converter) { c.models = m } }
func WithDumper(d Dumper) Option { return func(c *Converter) { c.dumper = d } }
func WithLogger(l *zap.Logger) Option { return func(c *Converter) { c.log = l } }

// New returns a Converter using the built-in collaborators for anything
// not overridden. There is no built-in model exporter; animators fail with
// asset.ErrConversionUnavailable until one is supplied.
func New(cfg config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:     cfg,
		decoder: imagefmt.TextureDecoder{},
		encoder: imagefmt.NewEncoder(),
		audio:   audio.Codec{},
		shaders: SourceDisassembler{},
		types:   TreeResolver{},
		dumper:  TreeDumper{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sprites == nil {
		c.sprites = imagefmt.SpriteRenderer{Decoder: c.decoder}
	}
	if c.log == nil {
		c.log = logging.L()
	}
	return c
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() config.Config { return c.cfg }

// Types returns the scripted object type resolver.
func (c *Converter) Types() TypeResolver { return c.types }

func payload[T any](rec *asset.Record) (*T, error) {
	p, ok := rec.Payload.(*T)
	if !ok || p == nil {
		return nil, fmt.Errorf("%s %q carries %T: %w", rec.Kind, rec.Name, rec.Payload, asset.ErrMalformed)
	}
	return p, nil
}

func (c *Converter) reserve(rec *asset.Record, name, dir, ext string) (string, error) {
	return naming.Reserve(dir, naming.Sanitize(name), ext, rec.UniqueID)
}

func (c *Converter) writeBytes(path string, data []byte) error {
	if err := naming.WriteFile(path, data); err != nil {
		return err
	}
	c.wrote(path, int64(len(data)))
	return nil
}

func (c *Converter) writeImage(path string, img image.Image) error {
	if c.cfg.MaxImageSize > 0 {
		img = imagefmt.Fit(img, c.cfg.MaxImageSize)
	}
	var n int64
	err := naming.WriteFrom(path, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		err := c.encoder.Encode(cw, img, c.cfg.ImageFormat)
		n = cw.n
		return err
	})
	if err != nil {
		return err
	}
	c.wrote(path, n)
	return nil
}

func (c *Converter) wrote(path string, n int64) {
	metrics.AddBytesWritten(n)
	c.log.Debug("wrote file", zap.String("path", path), zap.Int64("bytes", n))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
