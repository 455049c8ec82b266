package querycache

import (
	"encoding/json"
	"slices"
)

// Key identifies a query, e.g. Key{"/publications"} or Key{"/news", id}.
// Keys compare segment by segment.
type Key []string

// NewKey copies parts into a new Key.
func NewKey(parts ...string) Key {
	return slices.Clone(Key(parts))
}

// String encodes k unambiguously; it is the map key inside the cache.
func (k Key) String() string {
	b, _ := json.Marshal([]string(k))
	return string(b)
}

func (k Key) Equal(other Key) bool {
	return slices.Equal(k, other)
}

// HasPrefix reports whether the first len(prefix) segments of k equal prefix.
func (k Key) HasPrefix(prefix Key) bool {
	return len(prefix) <= len(k) && slices.Equal(k[:len(prefix)], prefix)
}

// Root is the first segment, or "" for an empty key.
func (k Key) Root() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}
