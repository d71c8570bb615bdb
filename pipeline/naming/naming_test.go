package naming

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeReplacesReserved(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a/b\\c", "a_b_c"},
		{`what?*"<>|:`, "what_______"},
		{"tab\there", "tab_here"},
		{"ünïcode ok", "ünïcode ok"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeNeverReturnsReserved(t *testing.T) {
	var b strings.Builder
	for r := rune(0); r < 128; r++ {
		b.WriteRune(r)
	}
	got := Sanitize(b.String())
	for _, r := range got {
		if isReserved(r) {
			t.Fatalf("Sanitize left reserved rune %q in %q", r, got)
		}
	}
}

func TestSanitizeLongNameIsRandom(t *testing.T) {
	long := strings.Repeat("x", MaxNameLength)
	a := Sanitize(long)
	b := Sanitize(long)
	if a == "" || b == "" {
		t.Fatal("random name is empty")
	}
	if a == long || len(a) >= MaxNameLength {
		t.Errorf("long name not replaced: %q", a)
	}
	if a == b {
		t.Errorf("two random names are equal: %q", a)
	}
	for _, r := range a + b {
		if isReserved(r) {
			t.Fatalf("random name contains reserved rune %q", r)
		}
	}

	// One below the threshold is kept.
	short := strings.Repeat("y", MaxNameLength-1)
	if got := Sanitize(short); got != short {
		t.Errorf("name of %d runes was replaced", MaxNameLength-1)
	}
}

func TestReserveSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "Texture2D")

	first, err := Reserve(dir, "hero", ".png", "#42")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	again, err := Reserve(dir, "hero", ".png", "#42")
	if err != nil {
		t.Fatalf("Reserve again: %v", err)
	}
	if want := filepath.Join(dir, "hero.png"); first != want || again != want {
		t.Fatalf("got %q and %q, want %q", first, again, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("directory not created by reservation: %v", err)
	}

	if err := os.WriteFile(first, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	second, err := Reserve(dir, "hero", ".png", "#42")
	if err != nil {
		t.Fatalf("Reserve after first write: %v", err)
	}
	if want := filepath.Join(dir, "hero#42.png"); second != want {
		t.Fatalf("second = %q, want %q", second, want)
	}

	if err := os.WriteFile(second, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Reserve(dir, "hero", ".png", "#42"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("third Reserve err = %v, want ErrNameTaken", err)
	}
}

func TestReserveDir(t *testing.T) {
	dir := t.TempDir()
	p, err := ReserveDir(dir, "Knight", "Knight.fbx", "#7")
	if err != nil {
		t.Fatalf("ReserveDir: %v", err)
	}
	if want := filepath.Join(dir, "Knight", "Knight.fbx"); p != want {
		t.Fatalf("got %q, want %q", p, want)
	}
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatal(err)
	}
	p2, err := ReserveDir(dir, "Knight", "Knight.fbx", "#7")
	if err != nil {
		t.Fatalf("ReserveDir second: %v", err)
	}
	if want := filepath.Join(dir, "Knight#7", "Knight.fbx"); p2 != want {
		t.Fatalf("got %q, want %q", p2, want)
	}
	if err := os.WriteFile(p2, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReserveDir(dir, "Knight", "Knight.fbx", "#7"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}
}

func TestWriteFileLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.dat")
	if err := WriteFile(path, []byte("payload")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "payload" {
		t.Fatalf("ReadFile = %q, %v", got, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFromFailureRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	boom := errors.New("encoder failed")
	err := WriteFrom(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped encoder error", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}
