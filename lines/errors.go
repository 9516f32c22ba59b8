package lines

import "errors"

var (
	// ErrIndexBuild indicates the file could not be opened or scanned.
	ErrIndexBuild = errors.New("lines: index build failed")

	// ErrEmptyPath indicates no file path was supplied.
	ErrEmptyPath = errors.New("lines: file path is required")

	// ErrUnorderedOffsets indicates offsets passed to NewIndex are not
	// strictly increasing or are negative.
	ErrUnorderedOffsets = errors.New("lines: offsets must be non-negative and strictly increasing")
)
