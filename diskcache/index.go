/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package diskcache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nabbar/zfproxy/rbtree"
)

// Lookup is the outcome of Zone.Lookup, spec.md §4.5 steps 2/5.
type Lookup int

const (
	LookupMiss Lookup = iota
	LookupScarce
	LookupHit
	LookupStale
	LookupUpdating
)

// IndexNode is the rb-tree/LRU-resident cache entry of spec.md §3 "Cache
// entry (index node)". It never holds the response body — only the
// bookkeeping needed to find and validate the on-disk file.
type IndexNode struct {
	Key Key

	ValidSec    int64
	ValidMsec   uint16
	UpdatingSec int64
	ErrorSec    int64
	LastModified int64

	ETag string
	Vary string

	BodyStart int64
	Size      int64
	Uniq      uint64

	Count   int // refcount
	Uses    int // hit count since insertion, gates min_uses/scarce
	Exists  bool
	Updating bool
	Deleting bool
	Error    bool

	LockTime int64 // unix seconds; updater's exclusivity deadline

	Expire int64 // LRU inactive deadline, unix seconds

	node  *rbtree.Node[*IndexNode]
	lru   *rbtree.QNode[*IndexNode]
}

// Zone is one cache zone's shared state, spec.md §3 "Cache shared state":
// the rb-tree + LRU + size/count counters + cold flag, all behind one
// mutex (spec.md §5 "one mutex per zone; O(log n) or O(1) inside it; no
// I/O while holding it").
type Zone struct {
	mu   sync.Mutex
	tree *rbtree.Tree[*IndexNode]
	lru  *rbtree.Queue[*IndexNode]

	SizeBlocks int64
	MaxSize    int64
	MaxEntries int
	MinFree    int64
	BlockSize  int64

	MinUses int
	Cold    bool

	LockAge     time.Duration
	LockTimeout time.Duration

	// updaters dedups concurrent revalidation of the same key: the first
	// caller to go STALE becomes the singleflight "leader" and the rest
	// share its Do() call rather than each polling lock_time on their own
	// goroutine, approximating spec.md §4.5's "wait up to lock_timeout"
	// cache lock with an idiomatic Go primitive (SPEC_FULL.md §4.5
	// substitution — see DESIGN.md).
	updaters singleflight.Group
}

// NewZone returns an empty Zone sized by the given caps.
func NewZone(maxSize int64, maxEntries int, minFree int64, blockSize int64, minUses int) *Zone {
	return &Zone{
		tree:        rbtree.New[*IndexNode](),
		lru:         rbtree.NewQueue[*IndexNode](),
		MaxSize:     maxSize,
		MaxEntries:  maxEntries,
		MinFree:     minFree,
		BlockSize:   blockSize,
		MinUses:     minUses,
		LockAge:     5 * time.Second,
		LockTimeout: 500 * time.Millisecond,
		Cold:        true,
	}
}

// Lookup implements spec.md §4.5 step 2: find-or-allocate under the zone
// lock. now is the caller's notion of current time (unix seconds) so
// tests can drive it deterministically.
func (z *Zone) Lookup(k Key, now int64) (*IndexNode, Lookup) {
	z.mu.Lock()
	defer z.mu.Unlock()

	key, tie := k.TreeKey()
	if n := z.tree.Find(key, tie); n != nil {
		n.Value.Uses++
		z.lru.MoveToFront(n.Value.lru)
		return n.Value, z.classify(n.Value, now)
	}

	if z.MinUses > 1 && z.Cold {
		return nil, LookupScarce
	}

	if z.full() {
		z.forcedExpireLocked(now, nil)
	}

	e := &IndexNode{Key: k, Uses: 1, Count: 1, Expire: now + 1}
	e.node = z.tree.Insert(key, tie, e)
	e.lru = z.lru.PushFront(e)

	return e, LookupMiss
}

func (z *Zone) full() bool {
	return (z.MaxEntries > 0 && z.tree.Len() >= z.MaxEntries) ||
		(z.MaxSize > 0 && z.SizeBlocks >= z.MaxSize)
}

// classify implements the HIT/STALE/UPDATING branch of spec.md §4.5 step
//5, assuming the caller already validated the file's header (CRC32, key
// bytes, version) before calling in with exists=true.
func (z *Zone) classify(e *IndexNode, now int64) Lookup {
	if !e.Exists {
		return LookupMiss
	}
	if e.ValidSec >= now {
		return LookupHit
	}
	if e.ValidSec+e.UpdatingSec >= now {
		if e.Updating && e.LockTime > now {
			return LookupUpdating
		}
		e.Updating = true
		e.LockTime = now + int64(z.LockAge/time.Second)
		return LookupStale
	}
	if e.ValidSec+e.ErrorSec >= now {
		return LookupStale
	}
	return LookupMiss
}

// Release decrements the refcount taken by Lookup; it never evicts by
// itself (eviction is the manager's job per spec.md §4.7).
func (z *Zone) Release(e *IndexNode) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if e.Count > 0 {
		e.Count--
	}
}

// CompleteUpdate implements spec.md §4.6's atomic shared-memory update at
// write-path finalization: size accounting adjusted by delta, exists and
// uniq set, updating cleared.
func (z *Zone) CompleteUpdate(e *IndexNode, newUniq uint64, newSize int64, bodyStart int64, now int64) {
	z.mu.Lock()
	defer z.mu.Unlock()

	z.SizeBlocks += (newSize - e.Size + z.BlockSize - 1) / max64(z.BlockSize, 1)
	e.Size = newSize
	e.Exists = true
	e.Uniq = newUniq
	e.BodyStart = bodyStart
	e.Updating = false
	e.LastModified = now
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Revalidate runs fn at most once per key concurrently: the first caller
// in becomes the updater and the rest block on the same result, the
// singleflight-shaped analogue of spec.md §4.5's "Exactly one updater at
// a time per entry ... guaranteed by the updating flag plus lock_time
// expiry." A caller unwilling to wait should instead just honor the
// LookupUpdating result and serve stale directly, never calling this.
func (z *Zone) Revalidate(hexKey string, fn func() (interface{}, error)) (interface{}, error, bool) {
	v, err, shared := z.updaters.Do(hexKey, fn)
	return v, err, shared
}

// removeLocked deletes an entry from both the tree and the LRU. Caller
// must hold z.mu.
func (z *Zone) removeLocked(e *IndexNode) {
	z.tree.Delete(e.node)
	z.lru.Remove(e.lru)
	z.SizeBlocks -= (e.Size + z.BlockSize - 1) / max64(z.BlockSize, 1)
}

// ForcedExpire implements spec.md §4.7 "forced_expire": a single pass from
// the LRU tail, evicting the first refcount==0 entry found within 20
// tries even if it is not yet inactive. An entry found with count>0 is
// bumped to the LRU head with a fresh expire instead (Open Question 2,
// "requeue-on-leak") and, if onLeak is non-nil, reported to the caller so
// it can log once per entry per process — Zone itself carries no logger.
// Used both by Lookup's slab-full path (onLeak nil) and by the manager's
// size-forced eviction (onLeak set).
func (z *Zone) ForcedExpire(now int64, onLeak func(*IndexNode)) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.forcedExpireLocked(now, onLeak)
}

func (z *Zone) forcedExpireLocked(now int64, onLeak func(*IndexNode)) bool {
	n := z.lru.Back()
	tries := 0
	for n != nil && tries < 20 {
		e := n.Value
		prev := n.Prev()

		if e.Count == 0 {
			z.removeLocked(e)
			return true
		}

		e.Expire = now + 1
		z.lru.MoveToFront(n)
		if onLeak != nil {
			onLeak(e)
		}

		n = prev
		tries++
	}
	return false
}

// EvictInactive deletes the single LRU-tail entry if it is both
// unreferenced and past its inactive deadline (expire < now), per
// spec.md §4.7 "iterates the LRU queue from the tail, deleting entries
// whose expire < now." Returns the freed size in bytes, or (0, false) if
// the tail entry doesn't qualify.
func (z *Zone) EvictInactive(now int64) (int64, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()

	n := z.lru.Back()
	if n == nil {
		return 0, false
	}
	e := n.Value
	if e.Count != 0 || e.Expire >= now {
		return 0, false
	}

	size := e.Size
	z.removeLocked(e)
	return size, true
}

// NeedsEviction reports whether the zone is still over any of its
// configured watermarks (size, entry count, free disk space), the
// manager's loop-continuation condition in spec.md §4.7.
func (z *Zone) NeedsEviction(freeBytes int64) bool {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.MaxSize > 0 && z.SizeBlocks >= z.MaxSize {
		return true
	}
	if z.MaxEntries > 0 && z.tree.Len() >= z.MaxEntries {
		return true
	}
	if z.MinFree > 0 && freeBytes < z.MinFree {
		return true
	}
	return false
}

// Entries reports the current entry count, mostly for tests/metrics.
func (z *Zone) Entries() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.tree.Len()
}
