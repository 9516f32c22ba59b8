package lines

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/jonwraymond/lineserve/observe"
)

// Lookuper returns the line at a zero-based index.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Lookup never fails; every non-success outcome is an absent Result.
type Lookuper interface {
	Lookup(ctx context.Context, index int) Result
}

// LookupFunc adapts an ordinary function to a Lookuper.
type LookupFunc func(ctx context.Context, index int) Result

// Lookup calls f(ctx, index).
func (f LookupFunc) Lookup(ctx context.Context, index int) Result {
	return f(ctx, index)
}

// file is the subset of *os.File a Reader uses.
type file interface {
	io.ReaderAt
	io.ReadSeeker
	io.Closer
}

// Reader reads single lines from the indexed file. Each lookup opens the
// file on its own, so concurrent lookups never share a cursor.
type Reader struct {
	index  *Index
	logger observe.Logger
	open   func(name string) (file, error)
}

// NewReader creates a Reader over ix. A nil logger discards output.
func NewReader(ix *Index, logger observe.Logger) *Reader {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return &Reader{
		index:  ix,
		logger: logger,
		open: func(name string) (file, error) {
			return os.Open(name)
		},
	}
}

// Index returns the Index the Reader serves.
func (r *Reader) Index() *Index {
	return r.index
}

// Lookup returns the line at index. Out-of-range indices return absent
// without touching the file. I/O failures are logged and return absent.
func (r *Reader) Lookup(ctx context.Context, index int) Result {
	start, end, ok := r.index.lineRange(index)
	if !ok {
		return Absent()
	}

	f, err := r.open(r.index.path)
	if err != nil {
		r.logger.Error(ctx, "failed to open file for lookup",
			observe.F("line.index", index),
			observe.F("file.path", r.index.path),
			observe.F("error", err),
		)
		return Absent()
	}
	defer f.Close()

	var text []byte
	if end >= 0 {
		text, err = readBounded(f, start, end)
	} else {
		text, err = readTrailing(f, start)
	}
	if err != nil {
		r.logger.Error(ctx, "failed to read line",
			observe.F("line.index", index),
			observe.F("file.path", r.index.path),
			observe.F("offset", start),
			observe.F("error", err),
		)
		return Absent()
	}
	if text == nil {
		return Absent()
	}
	return Present(string(text))
}

// readBounded reads the bytes in [start, end). The terminator at end is
// known, so the whole line comes back from one positioned read.
func readBounded(f file, start, end int64) ([]byte, error) {
	buf := make([]byte, end-start)
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := f.ReadAt(buf, start)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

// readTrailing reads from start up to the next '\n' or EOF. It returns nil
// with no error when start is at or past EOF.
func readTrailing(f file, start int64) ([]byte, error) {
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(line) == 0 {
		return nil, nil
	}
	if line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line, nil
}

var _ Lookuper = (*Reader)(nil)
