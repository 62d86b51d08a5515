package search

import (
	"container/heap"
	"sort"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
)

// entry is one kept combination, discs in original slot order.
type entry struct {
	damage float64
	score  float64
	seq    int64
	discs  [combat.NumSlots]*combat.DiscCandidate
}

// worse orders entries for eviction: lower damage first, and among equal
// damage the later find first.
func worse(a, b *entry) bool {
	if a.damage != b.damage {
		return a.damage < b.damage
	}
	return a.seq > b.seq
}

// minHeap keeps the worst kept entry at the root.
type minHeap []*entry

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(*entry)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// topK is a bounded min-heap of the best entries by damage.
type topK struct {
	k int
	h minHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(minHeap, 0, k)}
}

func (t *topK) Len() int { return len(t.h) }

func (t *topK) Full() bool { return len(t.h) >= t.k }

// Min is the worst kept entry, nil when empty.
func (t *topK) Min() *entry {
	if len(t.h) == 0 {
		return nil
	}
	return t.h[0]
}

// Offer keeps e if there is room or it beats the worst kept entry.
func (t *topK) Offer(e *entry) bool {
	if len(t.h) < t.k {
		heap.Push(&t.h, e)
		return true
	}
	if e.damage <= t.h[0].damage {
		return false
	}
	t.h[0] = e
	heap.Fix(&t.h, 0)
	return true
}

// Drain empties the heap, best first.
func (t *topK) Drain() []*entry {
	out := make([]*entry, len(t.h))
	copy(out, t.h)
	t.h = t.h[:0]
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}
