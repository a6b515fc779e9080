package buffer

import "fmt"

// lruKNode is an intrusive doubly-linked-list node, keyed by frame ID,
// living in exactly one of the replacer's two lists at a time.
type lruKNode struct {
	frameID     int
	history     []int64 // oldest first, length capped at k
	accessCount int64
	evictable   bool
	prev, next  *lruKNode
}

func (n *lruKNode) oldestTimestamp() int64 {
	return n.history[0]
}

// LRUKReplacer implements Replacer with the LRU-K policy: frames with
// fewer than K recorded accesses ("sub-K") are always preferred for
// eviction over frames with K or more ("full-K"), and are themselves
// ordered by plain recency; full-K frames are ordered by the timestamp
// of their K-th-most-recent access, oldest first.
type LRUKReplacer struct {
	k         int
	numFrames int
	timestamp int64

	nodes map[int]*lruKNode

	// subKHead is the least-recently-used end (evict first); subKTail
	// is the most-recently-used end (fresh accesses land here).
	subKHead, subKTail *lruKNode

	// fullKHead is the newest oldest-timestamp; fullKTail is the
	// oldest, i.e. the next victim. Evict scans from fullKTail toward
	// fullKHead.
	fullKHead, fullKTail *lruKNode

	evictableCount int
}

// NewLRUKReplacer constructs a replacer for a pool of numFrames frames
// using the given K.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	if numFrames <= 0 {
		panic("buffer: numFrames must be positive")
	}
	if k <= 0 {
		panic("buffer: k must be positive")
	}
	return &LRUKReplacer{
		k:         k,
		numFrames: numFrames,
		nodes:     make(map[int]*lruKNode, numFrames),
	}
}

func (r *LRUKReplacer) assertValidFrame(frameID int) {
	if frameID < 0 || frameID >= r.numFrames {
		panic(fmt.Sprintf("buffer: frame id %d out of range [0,%d)", frameID, r.numFrames))
	}
}

// RecordAccess records a touch of frameID at the replacer's next logical
// timestamp, creating the frame's node if this is its first access, and
// moving it between the sub-K and full-K lists as its access count
// crosses K.
func (r *LRUKReplacer) RecordAccess(frameID int, accessType AccessType) {
	r.assertValidFrame(frameID)

	r.timestamp++
	ts := r.timestamp

	node, ok := r.nodes[frameID]
	if !ok {
		node = &lruKNode{frameID: frameID, history: []int64{ts}, accessCount: 1}
		r.nodes[frameID] = node
		r.subKPushTail(node)
		return
	}

	node.accessCount++
	node.history = append(node.history, ts)
	if len(node.history) > r.k {
		node.history = node.history[1:]
	}

	switch {
	case node.accessCount == int64(r.k):
		r.subKRemove(node)
		r.fullKInsert(node)
	case node.accessCount < int64(r.k):
		r.subKRemove(node)
		r.subKPushTail(node)
	default:
		r.fullKRemove(node)
		r.fullKInsert(node)
	}
}

// Evict picks the current victim: the least-recently-used evictable
// sub-K frame if any exists, otherwise the evictable full-K frame with
// the oldest K-th-most-recent access.
func (r *LRUKReplacer) Evict() (int, bool) {
	if r.evictableCount == 0 {
		return 0, false
	}

	for n := r.subKHead; n != nil; n = n.next {
		if n.evictable {
			return r.evictNode(n), true
		}
	}
	for n := r.fullKTail; n != nil; n = n.prev {
		if n.evictable {
			return r.evictNode(n), true
		}
	}
	return 0, false
}

func (r *LRUKReplacer) evictNode(n *lruKNode) int {
	if n.accessCount < int64(r.k) {
		r.subKRemove(n)
	} else {
		r.fullKRemove(n)
	}
	delete(r.nodes, n.frameID)
	r.evictableCount--
	return n.frameID
}

// SetEvictable marks frameID's evictable bit. A frame unknown to the
// replacer is ignored.
func (r *LRUKReplacer) SetEvictable(frameID int, evictable bool) {
	r.assertValidFrame(frameID)

	node, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if node.evictable == evictable {
		return
	}
	node.evictable = evictable
	if evictable {
		r.evictableCount++
	} else {
		r.evictableCount--
	}
}

// Remove drops frameID's bookkeeping entirely. Panics if the frame is
// known and currently non-evictable.
func (r *LRUKReplacer) Remove(frameID int) {
	r.assertValidFrame(frameID)

	node, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if !node.evictable {
		panic(ErrFrameNotEvictable)
	}
	if node.accessCount < int64(r.k) {
		r.subKRemove(node)
	} else {
		r.fullKRemove(node)
	}
	delete(r.nodes, frameID)
	r.evictableCount--
}

// Size returns the number of frames currently marked evictable.
func (r *LRUKReplacer) Size() int {
	return r.evictableCount
}

func (r *LRUKReplacer) subKPushTail(n *lruKNode) {
	n.prev = r.subKTail
	n.next = nil
	if r.subKTail != nil {
		r.subKTail.next = n
	} else {
		r.subKHead = n
	}
	r.subKTail = n
}

func (r *LRUKReplacer) subKRemove(n *lruKNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		r.subKHead = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		r.subKTail = n.prev
	}
	n.prev, n.next = nil, nil
}

// fullKInsert scans from the newest end toward the oldest, placing n
// just before the first existing node with a strictly older
// oldest-timestamp; ties keep the existing relative order.
func (r *LRUKReplacer) fullKInsert(n *lruKNode) {
	newTS := n.oldestTimestamp()
	cur := r.fullKHead
	for cur != nil && cur.oldestTimestamp() >= newTS {
		cur = cur.next
	}

	if cur == nil {
		n.prev = r.fullKTail
		n.next = nil
		if r.fullKTail != nil {
			r.fullKTail.next = n
		} else {
			r.fullKHead = n
		}
		r.fullKTail = n
		return
	}

	n.next = cur
	n.prev = cur.prev
	if cur.prev != nil {
		cur.prev.next = n
	} else {
		r.fullKHead = n
	}
	cur.prev = n
}

func (r *LRUKReplacer) fullKRemove(n *lruKNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		r.fullKHead = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		r.fullKTail = n.prev
	}
	n.prev, n.next = nil, nil
}
