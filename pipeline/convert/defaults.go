package convert

import (
	"encoding/hex"
	"fmt"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// SourceDisassembler returns shader source when the shader shipped as text
// and a hex listing of the compiled blob otherwise.
type SourceDisassembler struct{}

func (SourceDisassembler) Disassemble(s *asset.Shader) (string, error) {
	switch {
	case s.Source != "":
		return s.Source, nil
	case len(s.Compiled) > 0:
		return fmt.Sprintf("// compiled shader, %d bytes\n%s", len(s.Compiled), hex.Dump(s.Compiled)), nil
	}
	return "", fmt.Errorf("shader has neither source nor program: %w", asset.ErrMalformed)
}

// TreeResolver reads the type trees the parser already attached to the
// object.
type TreeResolver struct{}

func (TreeResolver) ResolveDeclaredType(mb *asset.MonoBehaviour) (value.Value, bool) {
	if mb.Tree.IsNull() {
		return value.Null(), false
	}
	return mb.Tree, true
}

// InferStructuralType returns the fallback tree, or a tree holding only the
// object's name and script class when none was attached.
func (TreeResolver) InferStructuralType(mb *asset.MonoBehaviour) value.Value {
	if !mb.Fallback.IsNull() {
		return mb.Fallback
	}
	m := value.NewMap().
		Set("m_Name", value.String(mb.Name)).
		Set("m_Script", value.String(mb.ScriptClass))
	return value.FromMap(m)
}

// TreeDumper dumps scripted objects whose declared type tree is known.
type TreeDumper struct{}

func (TreeDumper) Dump(rec *asset.Record) (string, bool) {
	mb, ok := rec.Payload.(*asset.MonoBehaviour)
	if !ok || mb == nil || mb.Tree.IsNull() {
		return "", false
	}
	return value.DumpString(mb.Tree), true
}
