package discord

// Uint64Set is a simple map-based set of unique uint64 values, used for snowflake lookups.
type Uint64Set struct {
	backingMap map[uint64]struct{}
}

// NewUint64Set creates a new Uint64Set from the specified array of uint64. Zero values are skipped since
// no Discord entity has snowflake 0.
func NewUint64Set(s []uint64) *Uint64Set {
	set := &Uint64Set{make(map[uint64]struct{}, len(s))}
	for _, i := range s {
		if i != 0 {
			set.backingMap[i] = struct{}{}
		}
	}
	return set
}

// Contains checks if this Uint64Set contains the specified uint64. A nil set contains nothing.
func (s *Uint64Set) Contains(i uint64) bool {
	if s == nil {
		return false
	}
	_, exists := s.backingMap[i]
	return exists
}

func (s *Uint64Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.backingMap)
}
