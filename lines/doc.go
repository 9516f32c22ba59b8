// Package lines serves individual lines of a large file by zero-based index.
//
// Build scans the file once and records the byte offset of every '\n'.
// A Reader uses those offsets to read any single line with one positioned
// read, independent of file size. Cached puts a bounded LRU in front of a
// Lookuper, Limit caps the lookups that reach the file, and Instrument adds
// tracing, metrics and logging:
//
//	Instrument(Cached(Limit(reader, bulkhead), cache), tracer, metrics, logger, path)
//
// Lines are byte sequences. Text is ISO-8859-1: each byte is one character,
// so offsets stay exact. '\r' is ordinary content.
//
// A lookup never fails from the caller's point of view. Negative indices,
// indices past the end of the file and I/O errors all produce an absent
// Result. The exception is a lookup that Limit declined to run: it carries
// Err and is never cached.
package lines
