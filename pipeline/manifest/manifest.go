// Package manifest loads the record listing an export run works from. A
// manifest is a JSON document produced by the bundle reader:
//
//	{"records": [{"kind": "Texture2D", "name": "hero", "uniqueId": "#12",
//	              "pathId": 12, "raw": "<base64>", "payload": {...}}]}
//
// Byte fields are base64. The payload shape depends on kind; records of
// kinds without a payload shape keep only their raw bytes.
package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

type document struct {
	Records []record `json:"records"`
}

type record struct {
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Container string          `json:"container"`
	UniqueID  string          `json:"uniqueId"`
	PathID    *int64          `json:"pathId"`
	Raw       []byte          `json:"raw"`
	Payload   json.RawMessage `json:"payload"`
}

type texture struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    int    `json:"format"`
	ImageData []byte `json:"imageData"`
}

func (t *texture) asset() *asset.Texture {
	if t == nil {
		return nil
	}
	return &asset.Texture{Width: t.Width, Height: t.Height, Format: asset.TextureFormat(t.Format), ImageData: t.ImageData}
}

type audioClip struct {
	Compression   int    `json:"compression"`
	Channels      int    `json:"channels"`
	Frequency     int    `json:"frequency"`
	BitsPerSample int    `json:"bitsPerSample"`
	Data          []byte `json:"data"`
	Samples       []byte `json:"samples"`
}

type shader struct {
	Source   string `json:"source"`
	Compiled []byte `json:"compiled"`
}

type textAsset struct {
	Script []byte `json:"script"`
}

type monoBehaviour struct {
	Name        string      `json:"name"`
	ScriptClass string      `json:"scriptClass"`
	Tree        value.Value `json:"tree"`
	Fallback    value.Value `json:"fallback"`
}

type blob struct {
	Data []byte `json:"data"`
}

type subMesh struct {
	FirstIndex uint32 `json:"firstIndex"`
	IndexCount uint32 `json:"indexCount"`
}

type mesh struct {
	Name        string    `json:"name"`
	VertexCount int       `json:"vertexCount"`
	Vertices    []float32 `json:"vertices"`
	UV0         []float32 `json:"uv0"`
	Normals     []float32 `json:"normals"`
	SubMeshes   []subMesh `json:"subMeshes"`
	Indices     []uint32  `json:"indices"`
}

type videoClip struct {
	OriginalPath string `json:"originalPath"`
	ExternalSize int64  `json:"externalSize"`
	Data         []byte `json:"data"`
}

type sprite struct {
	Texture *texture `json:"texture"`
	// TextureName refers to a Texture2D record in the same manifest when
	// the atlas is not inlined.
	TextureName string `json:"textureName"`
	Rect        struct {
		X      float32 `json:"x"`
		Y      float32 `json:"y"`
		Width  float32 `json:"width"`
		Height float32 `json:"height"`
	} `json:"rect"`
	Packing int `json:"packing"`
}

type animator struct {
	Name  string `json:"name"`
	Scene any    `json:"scene"`
}

type animationClip struct {
	Name string `json:"name"`
	Clip any    `json:"clip"`
}

// Load reads the manifest at path.
func Load(path string) ([]*asset.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return recs, nil
}

// Decode reads a manifest from r. Sprites naming their atlas are linked to
// the first Texture2D record of that name; an unknown atlas name leaves the
// sprite without a texture.
func Decode(r io.Reader) ([]*asset.Record, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	recs := make([]*asset.Record, 0, len(doc.Records))
	textures := make(map[string]*asset.Texture)
	atlases := make(map[*asset.Sprite]string)
	for i, wr := range doc.Records {
		rec := &asset.Record{
			Kind:      asset.ParseKind(wr.Kind),
			TypeName:  wr.Kind,
			Name:      wr.Name,
			Container: wr.Container,
			UniqueID:  wr.UniqueID,
			Raw:       wr.Raw,
		}
		if wr.PathID != nil {
			rec.PathID, rec.HasPathID = *wr.PathID, true
		}
		if len(wr.Payload) > 0 && string(wr.Payload) != "null" {
			p, err := decodePayload(rec.Kind, wr.Payload)
			if err != nil {
				return nil, fmt.Errorf("record %d (%s %q): %w", i, wr.Kind, wr.Name, err)
			}
			rec.Payload = p
		}

		switch p := rec.Payload.(type) {
		case *asset.Texture:
			if _, ok := textures[rec.Name]; !ok {
				textures[rec.Name] = p
			}
		case *spriteRef:
			rec.Payload = p.Sprite
			if p.atlas != "" && p.Texture == nil {
				atlases[p.Sprite] = p.atlas
			}
		}
		recs = append(recs, rec)
	}

	for s, name := range atlases {
		s.Texture = textures[name]
	}
	return recs, nil
}

// spriteRef carries a sprite's atlas name until every texture is known.
type spriteRef struct {
	*asset.Sprite
	atlas string
}

func decodePayload(kind asset.Kind, data []byte) (any, error) {
	switch kind {
	case asset.KindTexture2D:
		var t texture
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return t.asset(), nil
	case asset.KindAudioClip:
		var a audioClip
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return &asset.AudioClip{
			Compression:   asset.AudioCompression(a.Compression),
			Channels:      a.Channels,
			Frequency:     a.Frequency,
			BitsPerSample: a.BitsPerSample,
			Data:          a.Data,
			Samples:       a.Samples,
		}, nil
	case asset.KindShader:
		var s shader
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &asset.Shader{Source: s.Source, Compiled: s.Compiled}, nil
	case asset.KindTextAsset:
		var t textAsset
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return &asset.TextAsset{Script: t.Script}, nil
	case asset.KindMonoBehaviour:
		var m monoBehaviour
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return &asset.MonoBehaviour{Name: m.Name, ScriptClass: m.ScriptClass, Tree: m.Tree, Fallback: m.Fallback}, nil
	case asset.KindFont:
		var b blob
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &asset.Font{Data: b.Data}, nil
	case asset.KindMovieTexture:
		var b blob
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &asset.MovieTexture{Data: b.Data}, nil
	case asset.KindMesh:
		var m mesh
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		out := &asset.Mesh{
			Name:        m.Name,
			VertexCount: m.VertexCount,
			Vertices:    m.Vertices,
			UV0:         m.UV0,
			Normals:     m.Normals,
			Indices:     m.Indices,
		}
		for _, sm := range m.SubMeshes {
			out.SubMeshes = append(out.SubMeshes, asset.SubMesh{FirstIndex: sm.FirstIndex, IndexCount: sm.IndexCount})
		}
		return out, nil
	case asset.KindVideoClip:
		var v videoClip
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &asset.VideoClip{OriginalPath: v.OriginalPath, ExternalSize: v.ExternalSize, Data: v.Data}, nil
	case asset.KindSprite:
		var s sprite
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &spriteRef{
			Sprite: &asset.Sprite{
				Texture: s.Texture.asset(),
				Rect:    asset.Rect{X: s.Rect.X, Y: s.Rect.Y, Width: s.Rect.Width, Height: s.Rect.Height},
				Packing: asset.PackingRotation(s.Packing),
			},
			atlas: s.TextureName,
		}, nil
	case asset.KindAnimator:
		var a animator
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return &asset.Animator{Name: a.Name, Scene: a.Scene}, nil
	case asset.KindAnimationClip:
		var a animationClip
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return &asset.AnimationClip{Name: a.Name, Clip: a.Clip}, nil
	}
	return nil, nil
}
