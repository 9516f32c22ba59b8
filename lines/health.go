package lines

import (
	"context"
	"fmt"
	"os"

	"github.com/jonwraymond/lineserve/health"
)

// Checker names.
const (
	IndexCheckerName = "index"
	FileCheckerName  = "file"
)

// IndexChecker reports whether the served file still matches the size it
// had when serving started.
type IndexChecker struct {
	name  string
	path  string
	size  int64
	lines int // -1 when no index was built
	stat  func(name string) (os.FileInfo, error)
}

// NewIndexChecker creates a health checker for ix.
func NewIndexChecker(ix *Index) *IndexChecker {
	return &IndexChecker{
		name:  IndexCheckerName,
		path:  ix.Path(),
		size:  ix.Size(),
		lines: ix.Len(),
		stat:  os.Stat,
	}
}

// NewFileChecker creates a health checker for a file served without an
// index, such as by Scanner. size is the file size at startup.
func NewFileChecker(path string, size int64) *IndexChecker {
	return &IndexChecker{
		name:  FileCheckerName,
		path:  path,
		size:  size,
		lines: -1,
		stat:  os.Stat,
	}
}

// Name returns the name of this checker.
func (c *IndexChecker) Name() string {
	return c.name
}

// Check stats the served file. A missing file is unhealthy. A size that
// differs from the startup size is degraded, since offsets may be stale.
func (c *IndexChecker) Check(ctx context.Context) health.Result {
	select {
	case <-ctx.Done():
		return health.Unhealthy("context cancelled", ctx.Err())
	default:
	}

	details := map[string]any{
		"path":  c.path,
		"bytes": c.size,
	}
	if c.lines >= 0 {
		details["lines"] = c.lines
	}

	info, err := c.stat(c.path)
	if err != nil {
		return health.Unhealthy("served file unavailable", err).WithDetails(details)
	}
	details["current_bytes"] = info.Size()

	if info.Size() != c.size {
		return health.Degraded(
			fmt.Sprintf("file size changed since startup: %d -> %d bytes", c.size, info.Size()),
		).WithDetails(details)
	}

	if c.lines < 0 {
		return health.Healthy(fmt.Sprintf("%d bytes served by scan", c.size)).WithDetails(details)
	}
	return health.Healthy(fmt.Sprintf("%d lines indexed", c.lines)).WithDetails(details)
}

var _ health.Checker = (*IndexChecker)(nil)
