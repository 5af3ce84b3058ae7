package heap

// Bounded keeps at most limit items, retaining the best ones according to
// better. The worst retained item sits at the root so it can be evicted in
// O(log limit) whenever a better candidate arrives.
type Bounded[T any] struct {
	h      *Heap[T]
	better func(a, b T) bool
	limit  int
}

// NewBounded creates a bounded heap. better(a, b) reports whether a ranks
// strictly ahead of b. A limit below 1 yields a heap that retains nothing.
func NewBounded[T any](limit int, better func(a, b T) bool) *Bounded[T] {
	if limit < 0 {
		limit = 0
	}
	worse := func(a, b T) bool { return better(b, a) }
	return &Bounded[T]{
		h:      New(worse, limit),
		better: better,
		limit:  limit,
	}
}

// Len returns the number of retained items.
func (b *Bounded[T]) Len() int { return b.h.Len() }

// Offer considers x for retention and reports whether it was kept.
func (b *Bounded[T]) Offer(x T) bool {
	if b.limit == 0 {
		return false
	}
	if b.h.Len() < b.limit {
		b.h.Push(x)
		return true
	}
	worst, _ := b.h.Peek()
	if !b.better(x, worst) {
		return false
	}
	b.h.ReplaceRoot(x)
	return true
}

// Drain empties the heap and returns its items ordered best first.
func (b *Bounded[T]) Drain() []T {
	n := b.h.Len()
	out := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		out[i], _ = b.h.Pop()
	}
	return out
}
