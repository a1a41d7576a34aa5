// Package cache holds small looked-up values, such as remote dictionary
// verdicts, that we would rather not fetch twice. Keys are spread over
// mutex-guarded shards so rooms checking words in parallel do not contend
// on one lock.
package cache

import (
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
)

const defaultShards = 16

type shard[V any] struct {
	sync.Mutex
	objects map[string]V
}

// Sharded is a bounded string-keyed cache. When a shard is full an
// arbitrary entry is evicted to make room.
type Sharded[V any] struct {
	shards      []*shard[V]
	maxPerShard int
}

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[V any] func(key string) (V, error)

// NewSharded creates a cache holding roughly capacity entries.
func NewSharded[V any](capacity int) *Sharded[V] {
	per := capacity / defaultShards
	if per < 1 {
		per = 1
	}
	c := &Sharded[V]{shards: make([]*shard[V], defaultShards), maxPerShard: per}
	for i := range c.shards {
		c.shards[i] = &shard[V]{objects: make(map[string]V)}
	}
	return c
}

func (c *Sharded[V]) shardFor(key string) *shard[V] {
	return c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

// Get returns the cached value for key.
func (c *Sharded[V]) Get(key string) (V, bool) {
	s := c.shardFor(key)
	s.Lock()
	defer s.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Set stores a value, evicting another entry from the shard if needed.
func (c *Sharded[V]) Set(key string, obj V) {
	s := c.shardFor(key)
	s.Lock()
	defer s.Unlock()
	c.set(s, key, obj)
}

func (c *Sharded[V]) set(s *shard[V], key string, obj V) {
	if _, ok := s.objects[key]; !ok && len(s.objects) >= c.maxPerShard {
		for k := range s.objects {
			delete(s.objects, k)
			break
		}
	}
	s.objects[key] = obj
}

// Load returns the cached value, calling loadFunc on a miss. Errors are
// not cached. The shard lock is not held while loading, so two callers
// may load the same key at once; the last one wins.
func (c *Sharded[V]) Load(key string, loadFunc LoadFunc[V]) (V, error) {
	if obj, ok := c.Get(key); ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, obj)
	return obj, nil
}

// Len is the number of cached entries.
func (c *Sharded[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.Lock()
		n += len(s.objects)
		s.Unlock()
	}
	return n
}
