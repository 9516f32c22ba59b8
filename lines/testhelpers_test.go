package lines

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

const fourLines = "This is the first line.\nSecond.\nThird line that is longer...\nLast.\n"

// writeFile writes content to a temp file and returns its path.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

// buildReader indexes content and returns a Reader whose opens are counted.
func buildReader(t *testing.T, content string) (*Reader, *atomic.Int64) {
	t.Helper()
	ix, err := Build(context.Background(), writeFile(t, content))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	r := NewReader(ix, nil)
	opens := &atomic.Int64{}
	r.open = func(name string) (file, error) {
		opens.Add(1)
		return os.Open(name)
	}
	return r, opens
}
