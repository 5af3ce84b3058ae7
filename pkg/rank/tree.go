// Package rank implements a static merge-sort segment tree that answers
// "top K by frequency" over any contiguous index range.
//
// The tree is an array-backed binary tree: node v covers a half-open range and
// its children live at 2v+1 and 2v+2. Every node caches the (frequency, index)
// entries of its range sorted by descending frequency, ties by ascending index,
// so a query only has to merge the heads of O(log n) pre-sorted lists.
package rank

import (
	"github.com/bastiangx/wordrank/internal/heap"
)

// entry pairs a frequency with the store index it belongs to.
type entry struct {
	freq  int
	index int
}

// before reports whether a ranks ahead of b.
func (a entry) before(b entry) bool {
	if a.freq != b.freq {
		return a.freq > b.freq
	}
	return a.index < b.index
}

// Tree is immutable after Build and safe for concurrent queries.
type Tree struct {
	size  int
	nodes [][]entry
}

// Build constructs the tree over frequencies. Position i in frequencies is the
// index reported back by TopK. Time and space are O(n log n).
func Build(frequencies []int) *Tree {
	n := len(frequencies)
	t := &Tree{size: n}
	if n == 0 {
		return t
	}
	t.nodes = make([][]entry, 4*n)
	t.build(frequencies, 0, 0, n)
	return t
}

func (t *Tree) build(frequencies []int, v, l, r int) {
	if r-l == 1 {
		t.nodes[v] = []entry{{freq: frequencies[l], index: l}}
		return
	}
	m := (l + r) / 2
	t.build(frequencies, 2*v+1, l, m)
	t.build(frequencies, 2*v+2, m, r)
	t.nodes[v] = merge(t.nodes[2*v+1], t.nodes[2*v+2])
}

// merge is stable: on equal frequency the left list wins, which keeps indices
// ascending because the left child always covers the lower indices.
func merge(left, right []entry) []entry {
	out := make([]entry, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i].freq >= right[j].freq {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.size }

// NodeCount returns the number of populated nodes.
func (t *Tree) NodeCount() int {
	count := 0
	for _, n := range t.nodes {
		if n != nil {
			count++
		}
	}
	return count
}

// cursor points at the next unread entry of a canonical node.
type cursor struct {
	node int
	pos  int
	head entry
}

// TopK returns up to k indices within [l, r) with the highest frequencies,
// ordered by descending frequency and then ascending index. The range is
// clamped to the tree; an empty range or k <= 0 yields nil.
func (t *Tree) TopK(k, l, r int) []int {
	if l < 0 {
		l = 0
	}
	if r > t.size {
		r = t.size
	}
	if k <= 0 || l >= r {
		return nil
	}

	canonical := make([]int, 0, 32)
	canonical = t.decompose(0, 0, t.size, l, r, canonical)

	pq := heap.New(func(a, b cursor) bool { return a.head.before(b.head) }, len(canonical))
	for _, v := range canonical {
		pq.Push(cursor{node: v, pos: 0, head: t.nodes[v][0]})
	}

	if n := r - l; k > n {
		k = n
	}
	result := make([]int, 0, k)
	for len(result) < k {
		top, ok := pq.Peek()
		if !ok {
			break
		}
		result = append(result, top.head.index)

		next := top.pos + 1
		if next < len(t.nodes[top.node]) {
			pq.ReplaceRoot(cursor{node: top.node, pos: next, head: t.nodes[top.node][next]})
		} else {
			pq.Pop()
		}
	}
	return result
}

// decompose appends the canonical nodes whose ranges tile [askL, askR).
func (t *Tree) decompose(v, l, r, askL, askR int, out []int) []int {
	if l >= askR || r <= askL {
		return out
	}
	if l >= askL && r <= askR {
		return append(out, v)
	}
	m := (l + r) / 2
	out = t.decompose(2*v+1, l, m, askL, askR, out)
	return t.decompose(2*v+2, m, r, askL, askR, out)
}
