// Package safepath confines untrusted URL paths to a directory.
package safepath

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafe is returned for paths that could escape their root
var ErrUnsafe = errors.New("unsafe path")

// Rel sanitizes a slash-separated request path into a clean relative path.
// A single leading slash is accepted; anything that still looks absolute after
// it is removed, as well as NUL bytes, backslashes and dot segments, is rejected.
func Rel(p string) (string, error) {
	rel := strings.TrimPrefix(p, "/")
	if rel == "" {
		return "", ErrUnsafe
	}

	// %00 decodes to NUL
	if strings.IndexByte(rel, 0) != -1 {
		return "", ErrUnsafe
	}
	if strings.Contains(rel, "\\") {
		return "", ErrUnsafe
	}
	// "//etc/passwd"
	if strings.HasPrefix(rel, "/") {
		return "", ErrUnsafe
	}

	// Reject dot segments before cleaning so traversal is not cleaned away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", ErrUnsafe
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", ErrUnsafe
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", ErrUnsafe
	}
	return clean, nil
}

// Join returns root joined with the sanitized form of p.
// The result always lies under root.
func Join(root, p string) (string, error) {
	rel, err := Rel(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}
