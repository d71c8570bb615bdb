package asset

import "github.com/1siamBot/asset-exporter/pipeline/value"

// TextureFormat uses the engine's numbering so manifests can carry the
// value straight from the serialized asset.
type TextureFormat int

const (
	FormatAlpha8   TextureFormat = 1
	FormatARGB4444 TextureFormat = 2
	FormatRGB24    TextureFormat = 3
	FormatRGBA32   TextureFormat = 4
	FormatARGB32   TextureFormat = 5
	FormatRGB565   TextureFormat = 7
	FormatDXT1     TextureFormat = 10
	FormatDXT5     TextureFormat = 12
	FormatRGBA4444 TextureFormat = 13
	FormatBGRA32   TextureFormat = 14
	FormatR8       TextureFormat = 63
)

type Texture struct {
	Width, Height int
	Format        TextureFormat
	// ImageData is stored bottom row first.
	ImageData []byte
}

// AudioCompression is the clip's compression format.
type AudioCompression int

const (
	AudioPCM AudioCompression = iota
	AudioVorbis
	AudioADPCM
	AudioMP3
	AudioVAG
	AudioHEVAG
	AudioXMA
	AudioAAC
	AudioGCADPCM
	AudioATRAC9
)

type AudioClip struct {
	Compression   AudioCompression
	Channels      int
	Frequency     int
	BitsPerSample int
	// Data is the clip's native stream (usually an FSB bank).
	Data []byte
	// Samples holds interleaved little-endian PCM when the decoding stage
	// was able to produce it.
	Samples []byte
}

type Shader struct {
	// Source is set when the shader was shipped as text.
	Source   string
	Compiled []byte
}

type TextAsset struct {
	Script []byte
}

// MonoBehaviour is a scripted object. Tree is the object decoded through
// its declared script type, Fallback the tree inferred from serialized
// layout when the declared type was unavailable.
type MonoBehaviour struct {
	Name        string
	ScriptClass string
	Tree        value.Value
	Fallback    value.Value
}

type Font struct {
	Data []byte
}

type SubMesh struct {
	FirstIndex uint32
	IndexCount uint32
}

// Mesh holds flat attribute buffers. Attribute arrays are parallel: the
// i-th position, texcoord and normal belong to the same vertex.
type Mesh struct {
	Name        string
	VertexCount int
	Vertices    []float32
	UV0         []float32
	Normals     []float32
	SubMeshes   []SubMesh
	// Indices is the flat triangle index buffer for all sub-meshes.
	Indices []uint32
}

type VideoClip struct {
	OriginalPath string
	// ExternalSize is the size of the referenced resource stream.
	ExternalSize int64
	Data         []byte
}

type MovieTexture struct {
	Data []byte
}

// PackingRotation is how a sprite was rotated when packed into an atlas.
type PackingRotation int

const (
	PackingNone PackingRotation = iota
	PackingFlipHorizontal
	PackingFlipVertical
	PackingRotate180
	PackingRotate90
)

type Rect struct {
	X, Y, Width, Height float32
}

type Sprite struct {
	Texture *Texture
	// Rect is in texture pixels with a bottom-left origin.
	Rect    Rect
	Packing PackingRotation
}

// Animator is the root of a hierarchical model. Scene is opaque to the
// pipeline and only interpreted by the model exporter.
type Animator struct {
	Name  string
	Scene any
}

type AnimationClip struct {
	Name string
	Clip any
}
