// Package server exposes line lookups over HTTP.
//
//	GET /lines/{index}
//
// answers 200 with the line as text/plain, or 413 Request Entity Too Large
// with an empty body when no line exists at index. An index that is not a
// base-10 integer, or does not fit in an int, is treated the same as an
// index past the end of the file.
//
// A lookup Result carrying Err (see lines.Limit) is answered with 503 and
// Retry-After.
// When an Authenticator is configured, the line endpoint answers 401 to
// requests without valid credentials. Health and metrics endpoints are
// never authenticated.
package server
