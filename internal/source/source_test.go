package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLooks(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{}`), 0644))

	tests := []struct {
		value    string
		expected bool
	}{
		{"@payload.json", true},
		{"file:///tmp/payload.json", true},
		{"https://example.com/payload.json", true},
		{"s3://bucket/key", true},
		{existing, true},
		{`{"name": "inline"}`, false},
		{"not-a-file-or-url", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, Looks(tt.value), tt.value)
	}
}

func TestReadString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "x"}`), 0644))

	t.Run("at prefix", func(t *testing.T) {
		content, err := ReadString("@" + path)
		require.NoError(t, err)
		require.Equal(t, `{"name": "x"}`, content)
	})

	t.Run("bare path", func(t *testing.T) {
		content, err := ReadString(path)
		require.NoError(t, err)
		require.Equal(t, `{"name": "x"}`, content)
	})

	t.Run("file scheme", func(t *testing.T) {
		content, err := ReadString("file://" + path)
		require.NoError(t, err)
		require.Equal(t, `{"name": "x"}`, content)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadString("@" + filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}
