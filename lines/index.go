package lines

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonwraymond/lineserve/observe"
)

// DefaultScanBufferSize is the chunk size used while scanning for terminators.
const DefaultScanBufferSize = 64 * 1024

// Index maps line numbers to the byte offsets of their terminators.
// Entry i is the offset of the '\n' that ends line i. An Index is immutable
// once built and safe for concurrent use without locking.
type Index struct {
	path    string
	size    int64
	offsets []int64
}

// NewIndex creates an Index from precomputed terminator offsets. The slice
// is copied.
func NewIndex(path string, size int64, offsets []int64) (*Index, error) {
	prev := int64(-1)
	for _, off := range offsets {
		if off <= prev {
			return nil, ErrUnorderedOffsets
		}
		prev = off
	}

	cp := make([]int64, len(offsets))
	copy(cp, offsets)
	return &Index{path: path, size: size, offsets: cp}, nil
}

// Len returns the number of recorded terminators.
func (ix *Index) Len() int {
	return len(ix.offsets)
}

// Offset returns the byte offset of the terminator ending line i.
// It panics if i is out of range, like a slice index.
func (ix *Index) Offset(i int) int64 {
	return ix.offsets[i]
}

// Path returns the indexed file path.
func (ix *Index) Path() string {
	return ix.path
}

// Size returns the number of bytes scanned.
func (ix *Index) Size() int64 {
	return ix.size
}

// lineRange returns where line i starts and where its terminator sits.
// end is -1 when i addresses the fragment after the last terminator, which
// may or may not hold data. ok is false when no such line can exist.
func (ix *Index) lineRange(i int) (start, end int64, ok bool) {
	n := len(ix.offsets)
	if i < 0 || (i > 0 && i-1 >= n) {
		return 0, 0, false
	}

	if i > 0 {
		start = ix.offsets[i-1] + 1
	}
	end = -1
	if i < n {
		end = ix.offsets[i]
	}
	return start, end, true
}

// BuildConfig configures Build.
type BuildConfig struct {
	// Logger receives progress messages. Default: no-op.
	Logger observe.Logger

	// Metrics receives the index size and build duration. Default: no-op.
	Metrics observe.Metrics

	// BufferSize is the scan chunk size. Default: DefaultScanBufferSize.
	BufferSize int
}

// Build scans the file at path once and records the offset of every '\n'.
//
// On failure Build returns an empty, usable Index together with an error
// wrapping ErrIndexBuild; lookups against that Index are always absent.
// Cancelling ctx stops the scan between chunks.
func Build(ctx context.Context, path string, config ...BuildConfig) (*Index, error) {
	cfg := BuildConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NewNoopMetrics()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultScanBufferSize
	}

	empty := &Index{path: path}
	if path == "" {
		return empty, fmt.Errorf("%w: %w", ErrIndexBuild, ErrEmptyPath)
	}

	logger := cfg.Logger.With(observe.F("file.path", path))
	logger.Debug(ctx, "beginning index build")
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		logger.Error(ctx, "failed to open file for indexing", observe.F("error", err))
		return empty, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}
	defer f.Close()

	offsets, size, err := scanTerminators(ctx, f, cfg.BufferSize)
	if err != nil {
		logger.Error(ctx, "failed to scan file", observe.F("error", err), observe.F("bytes_scanned", size))
		return empty, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}

	elapsed := time.Since(start)
	cfg.Metrics.RecordIndexBuild(ctx, len(offsets), size, elapsed)
	logger.Info(ctx, "index build completed",
		observe.F("lines", len(offsets)),
		observe.F("bytes", size),
		observe.F("duration_ms", float64(elapsed.Microseconds())/1000),
	)

	return &Index{path: path, size: size, offsets: offsets}, nil
}

// scanTerminators returns the offset of every '\n' in r and the total number
// of bytes read.
func scanTerminators(ctx context.Context, r io.Reader, bufSize int) ([]int64, int64, error) {
	buf := make([]byte, bufSize)
	var offsets []int64
	var pos int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, pos, err
		}

		n, err := r.Read(buf)
		chunk := buf[:n]
		for base := 0; ; {
			i := bytes.IndexByte(chunk[base:], '\n')
			if i < 0 {
				break
			}
			offsets = append(offsets, pos+int64(base+i))
			base += i + 1
		}
		pos += int64(n)

		if err == io.EOF {
			return offsets, pos, nil
		}
		if err != nil {
			return nil, pos, err
		}
	}
}
