package lines

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/jonwraymond/lineserve/observe"
)

// Scanner answers lookups by streaming the file from the start on every
// call. It needs no Index, so it can serve before or without one, at a
// cost linear in the requested index.
type Scanner struct {
	path   string
	logger observe.Logger
}

// NewScanner creates a Scanner over the file at path.
func NewScanner(path string, logger observe.Logger) *Scanner {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return &Scanner{path: path, logger: logger}
}

// Lookup skips index lines and returns the next one. As with Reader,
// cancellation of ctx does not cut a lookup short.
func (s *Scanner) Lookup(ctx context.Context, index int) Result {
	if index < 0 {
		return Absent()
	}

	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Error(ctx, "failed to open file for scan",
			observe.F("line.index", index),
			observe.F("file.path", s.path),
			observe.F("error", err),
		)
		return Absent()
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, DefaultScanBufferSize)
	for n := 0; ; n++ {
		if n < index {
			if err := skipLine(br); err != nil {
				return s.readErr(ctx, index, err)
			}
			continue
		}

		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return s.readErr(ctx, index, err)
		}
		if len(line) == 0 {
			return Absent()
		}
		if line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		return Present(string(line))
	}
}

// skipLine discards through the next '\n' without buffering the line.
func skipLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func (s *Scanner) readErr(ctx context.Context, index int, err error) Result {
	if !errors.Is(err, io.EOF) {
		s.logger.Error(ctx, "failed to scan file",
			observe.F("line.index", index),
			observe.F("file.path", s.path),
			observe.F("error", err),
		)
	}
	return Absent()
}

var _ Lookuper = (*Scanner)(nil)
