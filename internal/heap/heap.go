// Package heap provides a generic binary heap and a fixed-capacity variant that
// keeps the best K items seen so far.
//
// Heap operations are implemented directly on a typed slice instead of through
// container/heap so that pushes and pops do not box every element in an interface.
package heap

// Heap is a binary heap ordered by less: the root is the element for which less
// reports true against every other element.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

// New creates an empty heap with room for capacity elements.
func New[T any](less func(a, b T) bool, capacity int) *Heap[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap[T]{
		items: make([]T, 0, capacity),
		less:  less,
	}
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// Peek returns the root without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Push adds x and bubbles it up to restore the heap invariant.
func (h *Heap[T]) Push(x T) {
	h.items = append(h.items, x)
	h.up(len(h.items) - 1)
}

// Pop removes and returns the root.
func (h *Heap[T]) Pop() (T, bool) {
	n := len(h.items)
	if n == 0 {
		var zero T
		return zero, false
	}
	root := h.items[0]
	last := n - 1
	h.items[0] = h.items[last]
	var zero T
	h.items[last] = zero
	h.items = h.items[:last]
	if last > 0 {
		h.down(0)
	}
	return root, true
}

// ReplaceRoot overwrites the root with x and sinks it into place.
// It is a cheaper Pop followed by Push.
func (h *Heap[T]) ReplaceRoot(x T) {
	if len(h.items) == 0 {
		h.Push(x)
		return
	}
	h.items[0] = x
	h.down(0)
}

func (h *Heap[T]) up(j int) {
	for j > 0 {
		i := (j - 1) / 2 // parent
		if !h.less(h.items[j], h.items[i]) {
			break
		}
		h.items[i], h.items[j] = h.items[j], h.items[i]
		j = i
	}
}

func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			return
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.less(h.items[j2], h.items[j1]) {
			j = j2
		}
		if !h.less(h.items[j], h.items[i]) {
			return
		}
		h.items[i], h.items[j] = h.items[j], h.items[i]
		i = j
	}
}
