package referral

import (
	"github.com/google/btree"
)

// SpanSet stores a set of integers as merged [lo, hi] spans in a B-tree, so
// Add, Remove and NextFree all run in O(log n). The allocator uses it to
// hand out the smallest unused registration-number suffix.
// Not safe for concurrent use; callers serialize access.

type span struct {
	lo, hi int
}

func (a span) Less(b btree.Item) bool {
	return a.lo < b.(span).lo
}

type SpanSet struct {
	tree *btree.BTree
}

func NewSpanSet() *SpanSet {
	return &SpanSet{
		tree: btree.New(2),
	}
}

// Add a number to the set
func (s *SpanSet) Add(x int) {
	sp := span{x, x}
	// find the rightmost span starting at or before x that can absorb it
	var prev *span
	s.tree.DescendLessOrEqual(sp, func(it btree.Item) bool {
		p := it.(span)
		if p.hi+1 >= x {
			prev = &p
		}
		return false
	})

	if prev != nil {
		s.tree.Delete(*prev)
		if x > prev.hi {
			prev.hi = x
		}
		// absorb the successor if the gap closed
		var next *span
		s.tree.AscendGreaterOrEqual(*prev, func(it btree.Item) bool {
			n := it.(span)
			if prev.hi+1 >= n.lo {
				next = &n
			}
			return false
		})
		if next != nil {
			s.tree.Delete(*next)
			if next.hi > prev.hi {
				prev.hi = next.hi
			}
		}
		s.tree.ReplaceOrInsert(*prev)
		return
	}

	// no span on the left; maybe x touches the successor
	var next *span
	s.tree.AscendGreaterOrEqual(sp, func(it btree.Item) bool {
		n := it.(span)
		if n.lo <= x+1 {
			next = &n
		}
		return false
	})
	if next != nil {
		s.tree.Delete(*next)
		if x < next.lo {
			next.lo = x
		}
		if x > next.hi {
			next.hi = x
		}
		s.tree.ReplaceOrInsert(*next)
	} else {
		s.tree.ReplaceOrInsert(sp)
	}
}

// Remove a number from the set
func (s *SpanSet) Remove(x int) {
	sp := span{x, x}
	var target *span
	s.tree.DescendLessOrEqual(sp, func(it btree.Item) bool {
		p := it.(span)
		if p.lo <= x && x <= p.hi {
			target = &p
		}
		return false
	})
	if target == nil {
		return
	}
	s.tree.Delete(*target)
	if target.lo < x {
		s.tree.ReplaceOrInsert(span{target.lo, x - 1})
	}
	if x < target.hi {
		s.tree.ReplaceOrInsert(span{x + 1, target.hi})
	}
}

// NextFree returns the smallest integer >= x that is not in the set.
// Spans are kept merged, so hi+1 of the span containing x is always free.
func (s *SpanSet) NextFree(x int) int {
	sp := span{x, x}
	free := x
	s.tree.DescendLessOrEqual(sp, func(it btree.Item) bool {
		p := it.(span)
		if p.lo <= x && x <= p.hi {
			free = p.hi + 1
		}
		return false
	})
	return free
}
