package cache

import (
	"fmt"
	"strconv"
)

// Keyer derives the string used to collapse concurrent loads of one key.
//
// Contract:
// - Determinism: equal keys must produce equal strings.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer[K comparable] interface {
	Key(key K) string
}

// DefaultKeyer formats integers and strings directly and falls back to
// fmt.Sprint for anything else.
type DefaultKeyer[K comparable] struct{}

// Key returns the string form of key.
func (DefaultKeyer[K]) Key(key K) string {
	switch v := any(key).(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// KeyerFunc adapts a function to Keyer.
type KeyerFunc[K comparable] func(K) string

// Key calls f(key).
func (f KeyerFunc[K]) Key(key K) string { return f(key) }
