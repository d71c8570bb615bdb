// Package config holds the export settings shared by the dispatcher and the
// converters. A Config is built once per run and passed by value.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/1siamBot/asset-exporter/pipeline/imagefmt"
)

// ModelOptions are handed through unchanged to the model exporter.
type ModelOptions struct {
	EulerFilter               bool
	FilterPrecision           float32
	ExportAllNodes            bool
	ExportSkins               bool
	ExportAnimations          bool
	ExportBlendShape          bool
	CastToBone                bool
	BoneSize                  int
	ExportAllUVsAsDiffuseMaps bool
	ScaleFactor               float32
	FBXVersion                int
	// FBXBinary selects binary output; false writes ASCII.
	FBXBinary bool
}

// Mirror configures the optional S3 copy of exported files.
type Mirror struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Enabled reports whether a bucket was configured.
func (m Mirror) Enabled() bool { return m.Bucket != "" }

type Config struct {
	// Conversion
	ConvertTexture   bool
	ImageFormat      imagefmt.Format
	ConvertAudio     bool
	RestoreExtension bool
	// MaxImageSize bounds the longer side of encoded images; 0 keeps the
	// decoded size.
	MaxImageSize int
	Model        ModelOptions

	// Batch
	Workers int

	// Logging
	LogLevel  string
	LogFormat string

	// MetricsFile, if set, receives a prometheus textfile after the run.
	MetricsFile string

	Mirror Mirror
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ConvertTexture: true,
		ImageFormat:    imagefmt.PNG,
		ConvertAudio:   true,
		Model: ModelOptions{
			EulerFilter:      true,
			FilterPrecision:  0.25,
			ExportAllNodes:   true,
			ExportSkins:      true,
			ExportAnimations: true,
			ExportBlendShape: true,
			BoneSize:         10,
			ScaleFactor:      1,
			FBXVersion:       3,
		},
		Workers:   4,
		LogLevel:  "info",
		LogFormat: "console",
		Mirror:    Mirror{Region: "us-east-1", UseSSL: true},
	}
}

// FromEnv reads configuration from environment variables on top of Default.
func FromEnv() (Config, error) {
	d := Default()
	cfg := Config{
		ConvertTexture:   envBool("EXPORT_CONVERT_TEXTURE", d.ConvertTexture),
		ConvertAudio:     envBool("EXPORT_CONVERT_AUDIO", d.ConvertAudio),
		RestoreExtension: envBool("EXPORT_RESTORE_EXTENSION", d.RestoreExtension),
		MaxImageSize:     envInt("EXPORT_MAX_IMAGE_SIZE", d.MaxImageSize),
		Model: ModelOptions{
			EulerFilter:               envBool("FBX_EULER_FILTER", d.Model.EulerFilter),
			FilterPrecision:           envFloat32("FBX_FILTER_PRECISION", d.Model.FilterPrecision),
			ExportAllNodes:            envBool("FBX_EXPORT_ALL_NODES", d.Model.ExportAllNodes),
			ExportSkins:               envBool("FBX_EXPORT_SKINS", d.Model.ExportSkins),
			ExportAnimations:          envBool("FBX_EXPORT_ANIMATIONS", d.Model.ExportAnimations),
			ExportBlendShape:          envBool("FBX_EXPORT_BLEND_SHAPE", d.Model.ExportBlendShape),
			CastToBone:                envBool("FBX_CAST_TO_BONE", d.Model.CastToBone),
			BoneSize:                  envInt("FBX_BONE_SIZE", d.Model.BoneSize),
			ExportAllUVsAsDiffuseMaps: envBool("FBX_ALL_UVS_AS_DIFFUSE", d.Model.ExportAllUVsAsDiffuseMaps),
			ScaleFactor:               envFloat32("FBX_SCALE_FACTOR", d.Model.ScaleFactor),
			FBXVersion:                envInt("FBX_VERSION", d.Model.FBXVersion),
			FBXBinary:                 envBool("FBX_BINARY", d.Model.FBXBinary),
		},
		Workers:     envInt("EXPORT_WORKERS", d.Workers),
		LogLevel:    envOr("LOG_LEVEL", d.LogLevel),
		LogFormat:   envOr("LOG_FORMAT", d.LogFormat),
		MetricsFile: envOr("METRICS_FILE", ""),
		Mirror: Mirror{
			Endpoint:  envOr("S3_ENDPOINT", ""),
			Bucket:    envOr("S3_BUCKET", ""),
			Prefix:    envOr("S3_PREFIX", ""),
			AccessKey: envOr("S3_ACCESS_KEY", ""),
			SecretKey: envOr("S3_SECRET_KEY", ""),
			Region:    envOr("S3_REGION", d.Mirror.Region),
			UseSSL:    envBool("S3_USE_SSL", d.Mirror.UseSSL),
		},
	}

	f, err := imagefmt.ParseFormat(envOr("EXPORT_IMAGE_FORMAT", d.ImageFormat.String()))
	if err != nil {
		return Config{}, fmt.Errorf("EXPORT_IMAGE_FORMAT: %w", err)
	}
	cfg.ImageFormat = f

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late in a run.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxImageSize < 0 {
		return fmt.Errorf("max image size must not be negative, got %d", c.MaxImageSize)
	}
	if c.Model.ScaleFactor <= 0 {
		return fmt.Errorf("fbx scale factor must be positive, got %g", c.Model.ScaleFactor)
	}
	if c.Model.BoneSize < 0 {
		return fmt.Errorf("fbx bone size must not be negative, got %d", c.Model.BoneSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat32(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}
