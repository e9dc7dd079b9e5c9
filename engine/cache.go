package engine

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/hashicorp/golang-lru/simplelru"
)

// fingerprint is the cache key: the query's identity is fully determined by
// the target/observer pair, the output frame, the precession model (which
// only matters for EclipticOfDate but is cheap to always include), and the
// epoch rounded to integer microseconds past J2000 TDB. Rounding to a fixed
// tick avoids cache misses caused by repeated UTC->TDB conversions of the
// same wall-clock instant landing on slightly different float64 bit
// patterns.
type fingerprint struct {
	target, observer int
	frame            int
	model            int
	ticks            int64
}

// cache is a bounded, clone-out-by-value store of StateVector keyed by
// fingerprint. Its eviction policy and accounting come entirely from
// hashicorp/golang-lru; cache itself only chooses between that package's
// mutex-guarded Cache and its unsynchronized simplelru.LRU building block.
type cache struct {
	safe   *lru.Cache
	unsafe *simplelru.LRU
}

func newCache(capacity int, threadSafe bool) (*cache, error) {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if threadSafe {
		c, err := lru.New(capacity)
		if err != nil {
			return nil, err
		}
		return &cache{safe: c}, nil
	}
	c, err := simplelru.NewLRU(capacity, nil)
	if err != nil {
		return nil, err
	}
	return &cache{unsafe: c}, nil
}

func (c *cache) get(key fingerprint) (StateVector, bool) {
	var v interface{}
	var ok bool
	if c.safe != nil {
		v, ok = c.safe.Get(key)
	} else {
		v, ok = c.unsafe.Get(key)
	}
	if !ok {
		return StateVector{}, false
	}
	return v.(StateVector), true
}

func (c *cache) put(key fingerprint, v StateVector) {
	if c.safe != nil {
		c.safe.Add(key, v)
		return
	}
	c.unsafe.Add(key, v)
}

func (c *cache) len() int {
	if c.safe != nil {
		return c.safe.Len()
	}
	return c.unsafe.Len()
}
