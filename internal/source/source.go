// Package source resolves argument values that point at content
// rather than carrying it inline: @path, file://, http(s):// and
// s3:// forms.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// Looks reports whether value names a source instead of inline
// content. A bare existing file path counts.
func Looks(value string) bool {
	if strings.HasPrefix(value, "@") ||
		strings.HasPrefix(value, "file://") ||
		strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "s3://") {
		return true
	}
	_, err := os.Stat(value)
	return err == nil
}

// ReadString resolves a source value to its content.
func ReadString(value string) (string, error) {
	path, cleanup, err := Fetch(value)
	if err != nil {
		return "", err
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

// Fetch resolves a source value to a local file path. Remote sources
// are downloaded to a temporary file; the returned cleanup removes
// it. Local paths are returned as-is with a no-op cleanup.
func Fetch(value string) (path string, cleanup func(), err error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(value, "@"):
		return strings.TrimPrefix(value, "@"), noop, nil
	case strings.HasPrefix(value, "file://"):
		return strings.TrimPrefix(value, "file://"), noop, nil
	case strings.HasPrefix(value, "http://"),
		strings.HasPrefix(value, "https://"),
		strings.HasPrefix(value, "s3://"):
		dir, err := os.MkdirTemp("", "opcli-source-")
		if err != nil {
			return "", noop, fmt.Errorf("create temp dir: %w", err)
		}
		dst := filepath.Join(dir, "download")
		if err := getter.GetFile(dst, value); err != nil {
			os.RemoveAll(dir)
			return "", noop, fmt.Errorf("download %s: %w", value, err)
		}
		return dst, func() { os.RemoveAll(dir) }, nil
	}

	if _, err := os.Stat(value); err != nil {
		return "", noop, fmt.Errorf("file not found: %s", value)
	}
	return value, noop, nil
}
