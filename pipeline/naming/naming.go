// Package naming turns free-form asset names into file names and reserves
// output paths.
//
// The filesystem is the only collision oracle: a candidate is free when
// nothing exists at its path. The existence check and the later write are
// not atomic; callers exporting concurrently into one directory serialize
// on (directory, base name) themselves (see pipeline/batch).
package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength is the length at which a name is replaced by a random one.
const MaxNameLength = 260

// ErrNameTaken is returned when both the plain and the uniquified
// candidate already exist.
var ErrNameTaken = errors.New("output name taken")

// Reserved characters are the union of what Windows and POSIX refuse in a
// path segment, so exports stay portable between the two.
func isReserved(r rune) bool {
	if r < 32 {
		return true
	}
	switch r {
	case '"', '<', '>', '|', ':', '*', '?', '\\', '/':
		return true
	}
	return false
}

// Sanitize replaces reserved characters with '_'. Names of MaxNameLength
// characters or more are replaced by a random name.
func Sanitize(name string) string {
	if utf8.RuneCountInString(name) >= MaxNameLength {
		return randomName()
	}
	return strings.Map(func(r rune) rune {
		if isReserved(r) {
			return '_'
		}
		return r
	}, name)
}

func randomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Reserve picks dir/base+ext, or dir/base+uniquifier+ext when the first is
// taken, and creates dir. base must already be sanitized.
func Reserve(dir, base, ext, uniquifier string) (string, error) {
	for _, name := range []string{base + ext, base + uniquifier + ext} {
		path := filepath.Join(dir, name)
		free, err := isFree(path)
		if err != nil {
			return "", err
		}
		if free {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", fmt.Errorf("create %s: %w", dir, err)
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("%s%s in %s: %w", base, ext, dir, ErrNameTaken)
}

// ReserveDir is Reserve with the uniquifier applied to a per-asset
// directory: dir/base/file, else dir/base+uniquifier/file.
func ReserveDir(dir, base, file, uniquifier string) (string, error) {
	for _, sub := range []string{base, base + uniquifier} {
		path := filepath.Join(dir, sub, file)
		free, err := isFree(path)
		if err != nil {
			return "", err
		}
		if free {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", file, dir, ErrNameTaken)
}

func isFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
