package cache

import "fmt"

// DefaultCapacity is the entry count used by DefaultPolicy.
const DefaultCapacity = 10000

// Policy configures the result cache.
type Policy struct {
	// Capacity is the maximum number of memoized entries. Must be positive.
	Capacity int `yaml:"size"`
}

// DefaultPolicy returns a policy holding DefaultCapacity entries.
func DefaultPolicy() Policy {
	return Policy{Capacity: DefaultCapacity}
}

// Validate reports ErrInvalidCapacity for a non-positive capacity.
func (p Policy) Validate() error {
	if p.Capacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, p.Capacity)
	}
	return nil
}
