// Package audio adapts audio clip payloads: it names their native stream
// formats and transcodes decoded PCM samples to WAV.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

var nativeExt = map[asset.AudioCompression]string{
	asset.AudioPCM:     ".fsb",
	asset.AudioVorbis:  ".fsb",
	asset.AudioADPCM:   ".fsb",
	asset.AudioMP3:     ".fsb",
	asset.AudioVAG:     ".vag",
	asset.AudioHEVAG:   ".vag",
	asset.AudioXMA:     ".wav",
	asset.AudioAAC:     ".m4a",
	asset.AudioGCADPCM: ".fsb",
	asset.AudioATRAC9:  ".at9",
}

// Codec handles clips whose PCM samples were already decoded upstream.
type Codec struct{}

// NativeExtension is the extension for the clip's undecoded stream.
func (Codec) NativeExtension(clip *asset.AudioClip) string {
	if ext, ok := nativeExt[clip.Compression]; ok {
		return ext
	}
	return ".AudioClip"
}

func (Codec) IsTranscodable(clip *asset.AudioClip) bool {
	return clip != nil && len(clip.Samples) > 0 && clip.Channels > 0 && clip.Frequency > 0
}

// TranscodeToWAV wraps the clip's samples in a RIFF/WAVE container.
func (c Codec) TranscodeToWAV(clip *asset.AudioClip) ([]byte, error) {
	if !c.IsTranscodable(clip) {
		return nil, fmt.Errorf("no decoded samples: %w", asset.ErrConversionUnavailable)
	}
	bits := clip.BitsPerSample
	if bits == 0 {
		bits = 16
	}
	if bits%8 != 0 || bits > 32 {
		return nil, fmt.Errorf("unsupported sample width %d: %w", bits, asset.ErrConversionUnavailable)
	}
	blockAlign := clip.Channels * bits / 8
	if len(clip.Samples)%blockAlign != 0 {
		return nil, fmt.Errorf("%d sample bytes is not a multiple of the %d byte frame: %w",
			len(clip.Samples), blockAlign, asset.ErrMalformed)
	}

	hdr := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(clip.Samples)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      uint16(clip.Channels),
		SampleRate:    uint32(clip.Frequency),
		ByteRate:      uint32(clip.Frequency * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(bits),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(clip.Samples)),
	}
	var buf bytes.Buffer
	buf.Grow(44 + len(clip.Samples))
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	buf.Write(clip.Samples)
	return buf.Bytes(), nil
}

type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}
