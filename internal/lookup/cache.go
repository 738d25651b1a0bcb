// internal/lookup/cache.go
//
// Tiny TTL'd LRU over successful lookup results.  No external deps;
// good for a few thousand entries.
package lookup

import (
	"container/list"
	"sync"
	"time"
)

type resultCache struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	ll   *list.List
	dict map[string]*list.Element
}

type entry struct {
	key string
	rec *Record
	exp time.Time
}

func newResultCache(capacity int, ttl time.Duration) *resultCache {
	return &resultCache{
		cap:  capacity,
		ttl:  ttl,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
}

// get retrieves a live entry and marks it MRU.  Expired entries are
// dropped on access.
func (c *resultCache) get(key string) (*Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return nil, false
	}
	e := ele.Value.(entry)
	if time.Now().After(e.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	return e.rec, true
}

// add inserts or refreshes an entry, evicting the LRU tail past cap.
func (c *resultCache) add(key string, rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{key: key, rec: rec, exp: time.Now().Add(c.ttl)}
	if ele, hit := c.dict[key]; hit {
		ele.Value = e
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(e)
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(entry).key)
	}
}
