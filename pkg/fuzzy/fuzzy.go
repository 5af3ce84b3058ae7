// Package fuzzy handles approximate matching of a query against every phrase of
// a corpus using a width-bounded Levenshtein distance.
package fuzzy

import (
	"math"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/heap"
	"github.com/charmbracelet/log"
)

// DefaultWidthFactor caps the DP table at |query|+1+floor(|query|*0.2) columns.
const DefaultWidthFactor = 0.2

// Source is the read-only corpus the matcher scores against.
type Source interface {
	Len() int
	PhraseAt(i int) string
	FrequencyAt(i int) int
}

// Match is a scored corpus entry.
type Match struct {
	Index     int
	Distance  int
	Frequency int
}

// better orders matches by ascending distance, then descending frequency,
// then ascending index.
func better(a, b Match) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	return a.Index < b.Index
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWidthFactor sets the fraction of the query length the DP table may extend
// past the query. Negative values are treated as 0, NaN is ignored and +Inf
// selects exact distance.
func WithWidthFactor(f float64) Option {
	return func(m *Matcher) {
		switch {
		case math.IsNaN(f):
			log.Warnf("fuzzy width factor NaN ignored, keeping %v", m.widthFactor)
		case math.IsInf(f, 1):
			m.exact = true
		case f < 0:
			m.widthFactor = 0
		default:
			m.widthFactor = f
		}
	}
}

// WithExactDistance disables the width cap so every score is the exact
// Levenshtein distance.
func WithExactDistance() Option {
	return func(m *Matcher) { m.exact = true }
}

// Matcher scores queries against a fixed corpus. It holds no per-query state
// and is safe for concurrent use.
type Matcher struct {
	runes       [][]rune
	freqs       []int
	maxLen      int
	widthFactor float64
	exact       bool
	rowPool     sync.Pool
}

// NewMatcher decodes every phrase of src once so queries do not have to.
func NewMatcher(src Source, opts ...Option) *Matcher {
	n := src.Len()
	m := &Matcher{
		runes:       make([][]rune, n),
		freqs:       make([]int, n),
		widthFactor: DefaultWidthFactor,
	}
	for _, opt := range opts {
		opt(m)
	}

	for i := 0; i < n; i++ {
		r := []rune(src.PhraseAt(i))
		m.runes[i] = r
		m.freqs[i] = src.FrequencyAt(i)
		if len(r) > m.maxLen {
			m.maxLen = len(r)
		}
	}
	m.rowPool.New = func() any {
		buf := make([]int, 0, 64)
		return &buf
	}
	log.Debugf("fuzzy matcher ready: %d phrases, longest %d runes, width factor %.2f, exact %v",
		n, m.maxLen, m.widthFactor, m.exact)
	return m
}

// TopK scores query against every phrase and returns the k best matches,
// best first. k <= 0 yields nil. k is capped at the corpus size.
func (m *Matcher) TopK(query string, k int) []Match {
	if k <= 0 || len(m.runes) == 0 {
		return nil
	}
	k = min(k, len(m.runes))
	q := []rune(query)

	cols := tableWidth(len(q), m.maxLen, m.widthFactor, m.exact)
	prev, cur, release := m.rows(cols)
	defer release()

	best := heap.NewBounded(k, better)
	for i, candidate := range m.runes {
		w := tableWidth(len(q), len(candidate), m.widthFactor, m.exact)
		d := distance(q, candidate, w, prev, cur)
		best.Offer(Match{Index: i, Distance: d, Frequency: m.freqs[i]})
	}
	return best.Drain()
}

// rows borrows two DP rows of at least cols entries from the pool.
func (m *Matcher) rows(cols int) (prev, cur []int, release func()) {
	a := m.rowPool.Get().(*[]int)
	b := m.rowPool.Get().(*[]int)
	if cap(*a) < cols {
		*a = make([]int, cols)
	}
	if cap(*b) < cols {
		*b = make([]int, cols)
	}
	return (*a)[:cols], (*b)[:cols], func() {
		m.rowPool.Put(a)
		m.rowPool.Put(b)
	}
}

// tableWidth is the number of DP columns used for a query of q runes against a
// candidate of c runes.
func tableWidth(q, c int, factor float64, exact bool) int {
	m := c + 1
	if exact {
		return m
	}
	// extra may be NaN, Inf or beyond int range; compare as floats first.
	extra := float64(q) * factor
	if !(extra < float64(c)) {
		return m
	}
	if limit := q + 1 + int(extra); limit < m {
		return limit
	}
	return m
}

// ScoreDistance returns the width-bounded edit distance between query and
// candidate. When candidate is longer than the table width the result is the
// distance to its leading code points, not the exact Levenshtein distance.
func ScoreDistance(query, candidate string) int {
	q, c := []rune(query), []rune(candidate)
	w := tableWidth(len(q), len(c), DefaultWidthFactor, false)
	return distance(q, c, w, make([]int, w), make([]int, w))
}

// LevenshteinDistance returns the exact edit distance between a and b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return utf8.RuneCountInString(b)
	}
	if b == "" {
		return utf8.RuneCountInString(a)
	}
	q, c := []rune(a), []rune(b)
	w := len(c) + 1
	return distance(q, c, w, make([]int, w), make([]int, w))
}

// distance fills a (|q|+1) x width table two rows at a time and returns the
// cell (|q|, width-1). prev and cur must hold at least width entries.
func distance(q, c []rune, width int, prev, cur []int) int {
	prev, cur = prev[:width], cur[:width]
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(q); i++ {
		cur[0] = i
		for j := 1; j < width; j++ {
			if q[i-1] == c[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = 1 + min(prev[j-1], cur[j-1], prev[j])
		}
		prev, cur = cur, prev
	}
	return prev[width-1]
}
