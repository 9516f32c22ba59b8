package config

import "errors"

var (
	// ErrMissingFilePath indicates no file to serve was configured.
	ErrMissingFilePath = errors.New("config: file path is required")

	// ErrInvalidStrategy indicates an unknown lookup strategy.
	ErrInvalidStrategy = errors.New("config: unknown lookup strategy")

	// ErrInvalidCharset indicates an unsupported response charset.
	ErrInvalidCharset = errors.New("config: unsupported charset")

	// ErrInvalidServer indicates a negative limit or timeout.
	ErrInvalidServer = errors.New("config: invalid server setting")
)
