package convert

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

func (c *Converter) Shader(rec *asset.Record, name, dir string) (string, error) {
	s, err := payload[asset.Shader](rec)
	if err != nil {
		return "", err
	}
	path, err := c.reserve(rec, name, dir, ".shader")
	if err != nil {
		return "", err
	}
	text, err := c.shaders.Disassemble(s)
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, []byte(text))
}

// TextAsset writes the script bytes unchanged. With RestoreExtension set
// the extension comes from the container path.
func (c *Converter) TextAsset(rec *asset.Record, name, dir string) (string, error) {
	ta, err := payload[asset.TextAsset](rec)
	if err != nil {
		return "", err
	}
	ext := ".txt"
	if c.cfg.RestoreExtension && rec.Container != "" {
		if e := filepath.Ext(rec.Container); e != "" {
			ext = e
		}
	}
	path, err := c.reserve(rec, name, dir, ext)
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, ta.Script)
}

// MonoBehaviour writes the object as indented JSON, typed through its
// declared script when available and through the inferred layout
// otherwise.
func (c *Converter) MonoBehaviour(rec *asset.Record, name, dir string) (string, error) {
	mb, err := payload[asset.MonoBehaviour](rec)
	if err != nil {
		return "", err
	}
	path, err := c.reserve(rec, name, dir, ".json")
	if err != nil {
		return "", err
	}
	tree, ok := c.types.ResolveDeclaredType(mb)
	if !ok {
		tree = c.types.InferStructuralType(mb)
	}
	compact, err := tree.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", rec.Name, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return "", fmt.Errorf("indent %q: %w", rec.Name, err)
	}
	return path, c.writeBytes(path, buf.Bytes())
}

// Raw writes the record's undecoded bytes as .dat.
func (c *Converter) Raw(rec *asset.Record, dir string) (string, error) {
	path, err := c.reserve(rec, rec.Name, dir, ".dat")
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, rec.Raw)
}

// Dump writes a text dump of the record. Scripted objects without a dump
// fall back to their inferred layout.
func (c *Converter) Dump(rec *asset.Record, dir string) (string, error) {
	path, err := c.reserve(rec, rec.Name, dir, ".txt")
	if err != nil {
		return "", err
	}
	text, ok := c.dumper.Dump(rec)
	if !ok {
		mb, isMB := rec.Payload.(*asset.MonoBehaviour)
		if !isMB || mb == nil {
			return "", fmt.Errorf("%s %q has no dump: %w", rec.ClassName(), rec.Name, asset.ErrConversionUnavailable)
		}
		text = value.DumpString(c.types.InferStructuralType(mb))
	}
	return path, c.writeBytes(path, []byte(text))
}
