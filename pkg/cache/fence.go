package cache

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const fenceStripes = 256

// Fence tracks an invalidation generation per key so that a fetch which
// started before an invalidation can tell its result is stale. Keys share
// one of a fixed set of counters; a collision only causes an extra miss.
// The zero value is ready to use and a nil *Fence never reports a change.
//
// Generations are local to the process.
type Fence struct {
	stripes [fenceStripes]atomic.Uint64
}

func (f *Fence) slot(key string) *atomic.Uint64 {
	return &f.stripes[xxhash.Sum64String(key)%fenceStripes]
}

// Generation returns the current generation of key.
func (f *Fence) Generation(key string) uint64 {
	if f == nil {
		return 0
	}
	return f.slot(key).Load()
}

// Advance moves every key to a new generation.
func (f *Fence) Advance(keys ...string) {
	if f == nil {
		return
	}
	for _, key := range keys {
		f.slot(key).Add(1)
	}
}

// Changed reports whether key was advanced since gen was read.
func (f *Fence) Changed(key string, gen uint64) bool {
	if f == nil {
		return false
	}
	return f.slot(key).Load() != gen
}
