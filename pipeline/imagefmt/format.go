// Package imagefmt converts texture payloads to pixel buffers and pixel
// buffers to the configurable output image formats.
package imagefmt

import (
	"fmt"
	"strings"
)

// Format is an output image encoding.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	TGA
	TIFF
	GIF
)

var formatNames = []string{"png", "jpeg", "bmp", "tga", "tiff", "gif"}

func (f Format) String() string {
	if int(f) >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Ext is the file extension including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + f.String()
}

// ParseFormat accepts the format names above plus "jpg" and "tif".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tga":
		return TGA, nil
	case "tiff", "tif":
		return TIFF, nil
	case "gif":
		return GIF, nil
	}
	return PNG, fmt.Errorf("unknown image format %q", s)
}
