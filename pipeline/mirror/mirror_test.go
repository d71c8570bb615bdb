package mirror

import (
	"path/filepath"
	"testing"
)

func TestObjectKey(t *testing.T) {
	root := filepath.Join("exports", "run1")
	tests := []struct {
		prefix, file, want string
	}{
		{"", filepath.Join(root, "hero.png"), "hero.png"},
		{"assets/", filepath.Join(root, "knight", "knight.fbx"), "assets/knight/knight.fbx"},
		{"/nightly/", filepath.Join(root, "a b.txt"), "nightly/a b.txt"},
	}
	for _, tt := range tests {
		got, err := ObjectKey(tt.prefix, root, tt.file)
		if err != nil {
			t.Errorf("ObjectKey(%q, %q): %v", tt.prefix, tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.file, got, tt.want)
		}
	}
}

func TestObjectKeyOutsideRoot(t *testing.T) {
	root := filepath.Join("exports", "run1")
	for _, file := range []string{root, filepath.Join("exports", "other.png")} {
		if _, err := ObjectKey("", root, file); err == nil {
			t.Errorf("ObjectKey(%q): expected error", file)
		}
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", true, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"http://localhost:9000", true, "http://localhost:9000"},
	}
	for _, tt := range tests {
		if got := endpointURL(tt.endpoint, tt.ssl); got != tt.want {
			t.Errorf("endpointURL(%q, %v) = %q, want %q", tt.endpoint, tt.ssl, got, tt.want)
		}
	}
}
