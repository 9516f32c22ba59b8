package cache

import "context"

// NopCache never stores anything. Every Get is a miss.
type NopCache[K comparable, V any] struct{}

func (NopCache[K, V]) Get(context.Context, K) (V, bool) {
	var zero V
	return zero, false
}

func (NopCache[K, V]) Set(context.Context, K, V) bool { return false }
func (NopCache[K, V]) Delete(context.Context, K)      {}
func (NopCache[K, V]) Len() int                       { return 0 }

var _ Cache[string, []byte] = NopCache[string, []byte]{}
