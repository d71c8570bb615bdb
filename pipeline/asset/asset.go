// Package asset defines the parsed records the export pipeline consumes.
//
// Records come from the container parser (or the JSON manifest) fully
// decoded into one of the payload types below. The pipeline never mutates
// a record.
package asset

import (
	"errors"
	"strings"
)

// Kind is the closed set of record kinds the pipeline knows how to route.
type Kind uint16

const (
	KindUnknown Kind = iota
	KindTexture2D
	KindAudioClip
	KindShader
	KindTextAsset
	KindMonoBehaviour
	KindFont
	KindMesh
	KindVideoClip
	KindMovieTexture
	KindSprite
	KindAnimator
	KindAnimationClip
	kindMax
)

var kindNames = [kindMax]string{
	KindUnknown:       "Unknown",
	KindTexture2D:     "Texture2D",
	KindAudioClip:     "AudioClip",
	KindShader:        "Shader",
	KindTextAsset:     "TextAsset",
	KindMonoBehaviour: "MonoBehaviour",
	KindFont:          "Font",
	KindMesh:          "Mesh",
	KindVideoClip:     "VideoClip",
	KindMovieTexture:  "MovieTexture",
	KindSprite:        "Sprite",
	KindAnimator:      "Animator",
	KindAnimationClip: "AnimationClip",
}

func (k Kind) String() string {
	if k < kindMax {
		return kindNames[k]
	}
	return "Unknown"
}

// ParseKind maps a class name to its Kind, case-insensitively. Names the
// pipeline has no converter for map to KindUnknown.
func ParseKind(name string) Kind {
	for k := KindTexture2D; k < kindMax; k++ {
		if strings.EqualFold(kindNames[k], name) {
			return k
		}
	}
	return KindUnknown
}

// Error taxonomy shared by converters, the resolver and the dispatcher.
var (
	// ErrMalformed: a payload is missing required buffers or is empty
	// where content is mandatory.
	ErrMalformed = errors.New("malformed asset")
	// ErrConversionUnavailable: a decode or transcode collaborator declined.
	ErrConversionUnavailable = errors.New("conversion unavailable")
	// ErrNotExportable: the kind is never exported on its own.
	ErrNotExportable = errors.New("not exportable standalone")
)

// Record is one parsed asset.
type Record struct {
	Kind Kind
	// TypeName is the original class name, kept for kinds the pipeline
	// does not recognize.
	TypeName string
	Name     string
	// Container is the original virtual path inside the bundle, if known.
	Container string
	// UniqueID disambiguates records sharing a name within one run.
	UniqueID  string
	PathID    int64
	HasPathID bool
	// Raw is the undecoded payload, used by raw dumps.
	Raw     []byte
	Payload any
}

// ClassName is the folder-friendly type name of the record.
func (r *Record) ClassName() string {
	if r.Kind == KindUnknown && r.TypeName != "" {
		return r.TypeName
	}
	return r.Kind.String()
}
