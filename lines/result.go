package lines

import "golang.org/x/text/encoding/charmap"

// Result is the outcome of a line lookup. An absent Result is distinct from
// a present empty line.
type Result struct {
	// Text is the line without its terminator, one byte per character.
	Text string

	// Found is false when no line exists at the requested index.
	Found bool

	// Err is set when the lookup was not attempted, for example because
	// Limit had no free slot. Such results say nothing about the file and
	// are never cached.
	Err error
}

// Present returns a Result carrying text.
func Present(text string) Result {
	return Result{Text: text, Found: true}
}

// Absent returns a Result with no line.
func Absent() Result {
	return Result{}
}

// Unavailable returns a Result for a lookup that could not be attempted.
func Unavailable(err error) Result {
	return Result{Err: err}
}

// UTF8 returns Text decoded from ISO-8859-1 into UTF-8.
func (r Result) UTF8() string {
	s, err := charmap.ISO8859_1.NewDecoder().String(r.Text)
	if err != nil {
		return r.Text
	}
	return s
}
