package heap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestHeapPopsInOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := New(intLess, 0)

	values := make([]int, 200)
	for i := range values {
		values[i] = rng.Intn(50)
		h.Push(values[i])
	}
	require.Equal(t, len(values), h.Len())

	sort.Ints(values)
	for _, want := range values {
		got, ok := h.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := h.Pop()
	assert.False(t, ok, "pop on empty heap")
	_, ok = h.Peek()
	assert.False(t, ok, "peek on empty heap")
}

func TestHeapReplaceRoot(t *testing.T) {
	h := New(intLess, 4)
	for _, v := range []int{5, 3, 8, 1} {
		h.Push(v)
	}

	h.ReplaceRoot(9)

	var got []int
	for h.Len() > 0 {
		v, _ := h.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []int{3, 5, 8, 9}, got)
}

func TestHeapReplaceRootOnEmpty(t *testing.T) {
	h := New(intLess, 0)
	h.ReplaceRoot(4)

	v, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestBoundedKeepsBest(t *testing.T) {
	// higher is better
	b := NewBounded(3, func(x, y int) bool { return x > y })

	for _, v := range []int{4, 10, 1, 7, 7, 2, 12} {
		b.Offer(v)
	}
	require.Equal(t, 3, b.Len())

	assert.False(t, b.Offer(7), "ties with the worst retained item are rejected")
	assert.Equal(t, []int{12, 10, 7}, b.Drain())
	assert.Equal(t, 0, b.Len())
}

func TestBoundedRejectsEqualToWorst(t *testing.T) {
	b := NewBounded(1, func(x, y int) bool { return x < y })

	assert.True(t, b.Offer(3))
	assert.False(t, b.Offer(3), "ties do not displace the retained item")
	assert.True(t, b.Offer(2))
	assert.Equal(t, []int{2}, b.Drain())
}

func TestBoundedZeroLimit(t *testing.T) {
	b := NewBounded(0, intLess)
	assert.False(t, b.Offer(1))
	assert.Empty(t, b.Drain())

	neg := NewBounded(-5, intLess)
	assert.False(t, neg.Offer(1))
}

func TestBoundedMatchesSortedPrefix(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := make([]int, 500)
	for i := range values {
		values[i] = rng.Intn(1000)
	}

	for _, k := range []int{1, 5, 50, 499, 500, 800} {
		b := NewBounded(k, intLess)
		for _, v := range values {
			b.Offer(v)
		}

		sorted := append([]int(nil), values...)
		sort.Ints(sorted)
		want := sorted
		if k < len(sorted) {
			want = sorted[:k]
		}
		assert.Equal(t, want, b.Drain(), "k=%d", k)
	}
}
