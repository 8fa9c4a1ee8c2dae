package gnubg

import (
	"fmt"
	"sync"
)

/* race cache entries hold the five outputs followed by mu[0], mu[1] */
const _CACHE_VALUES = _NUM_OUTPUTS + 2

type _CacheNodeDetail struct {
	key          _PositionKey
	nEvalContext int /* number of trials */
	ar           [_CACHE_VALUES]float32
}

type _CacheNode struct {
	nd_primary   _CacheNodeDetail
	nd_secondary _CacheNodeDetail
}

type _HashKey uint32

type _EvalCache struct {
	mu       sync.Mutex
	entries  []_CacheNode
	size     int
	hashMask _HashKey
	cLookup  int
	cHit     int
}

func cacheCreate(pc *_EvalCache, s int) error {
	if s < 2 || s > 1<<31 {
		return fmt.Errorf("%w: cache size %d", ErrInvalidArgument, s)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.size = s
	/* adjust size to smallest power of 2 GE to s */
	for (s & (s - 1)) != 0 {
		s &= (s - 1)
	}
	if s < pc.size {
		pc.size = 2 * s
	} else {
		pc.size = s
	}
	pc.hashMask = _HashKey((pc.size >> 1) - 1)

	pc.entries = make([]_CacheNode, pc.size/2)
	pc.cLookup = 0
	pc.cHit = 0

	cacheFlush(pc)
	return nil
}

func cacheDestroy(pc *_EvalCache) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.entries = nil
	pc.size = 0
}

/* caller holds pc.mu */
func cacheFlush(pc *_EvalCache) {
	for k := range pc.entries {
		pc.entries[k].nd_primary.key.data[0] = -1
		pc.entries[k].nd_secondary.key.data[0] = -1
	}
}

func cacheLookup(pc *_EvalCache, e *_CacheNodeDetail, arOut *[_CACHE_VALUES]float32) (hit bool, l _HashKey) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.entries == nil {
		return
	}

	l = getHashKey(pc.hashMask, e)

	pc.cLookup++

	if !pc.entries[l].nd_primary.key.equals(e.key) || pc.entries[l].nd_primary.nEvalContext != e.nEvalContext { /* Not in primary slot */
		if !pc.entries[l].nd_secondary.key.equals(e.key) || pc.entries[l].nd_secondary.nEvalContext != e.nEvalContext { /* Cache miss */
			return
		} else { /* Found in second slot, promote "hot" entry */
			tmp := pc.entries[l].nd_primary

			pc.entries[l].nd_primary = pc.entries[l].nd_secondary
			pc.entries[l].nd_secondary = tmp
		}
	}

	/* Cache hit */
	hit = true
	*arOut = pc.entries[l].nd_primary.ar
	pc.cHit++

	return
}

func getHashKey(hashMask _HashKey, e *_CacheNodeDetail) _HashKey {
	hash := _HashKey(e.nEvalContext)

	hash *= 0xcc9e2d51
	hash = (hash << 15) | (hash >> (32 - 15))
	hash *= 0x1b873593

	hash = (hash << 13) | (hash >> (32 - 13))
	hash = hash*5 + 0xe6546b64

	for i := 0; i < 7; i++ {
		k := _HashKey(e.key.data[i])

		k *= 0xcc9e2d51
		k = (k << 15) | (k >> (32 - 15))
		k *= 0x1b873593

		hash ^= k
		hash = (hash << 13) | (hash >> (32 - 13))
		hash = hash*5 + 0xe6546b64
	}

	/* Real MurmurHash3 has a "hash ^= len" here,
	 * but for us len is constant. Skip it */

	hash ^= hash >> 16
	hash *= 0x85ebca6b
	hash ^= hash >> 13
	hash *= 0xc2b2ae35
	hash ^= hash >> 16

	return hash & hashMask
}

func cacheAdd(pc *_EvalCache, e *_CacheNodeDetail, l _HashKey) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.entries == nil {
		return
	}

	pc.entries[l].nd_secondary = pc.entries[l].nd_primary
	pc.entries[l].nd_primary = *e
}

func cacheStats(pc *_EvalCache) (cLookup int, cHit int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	return pc.cLookup, pc.cHit
}
