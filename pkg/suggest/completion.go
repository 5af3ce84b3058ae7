package suggest

import (
	"time"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/fuzzy"
	"github.com/bastiangx/wordrank/pkg/rank"
	"github.com/charmbracelet/log"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is a single completion result.
type Suggestion struct {
	Word      string
	Frequency int
	// Distance is the edit distance to the input, 0 for prefix matches.
	Distance     int  `json:",omitempty"`
	WasCorrected bool `json:",omitempty"`
}

type options struct {
	fuzzy      []fuzzy.Option
	maxEntries int
}

// Option configures a Completer.
type Option func(*options)

// WithFuzzyWidth sets how far past the input length, as a fraction of it,
// fuzzy scoring looks into each candidate.
func WithFuzzyWidth(f float64) Option {
	return func(o *options) { o.fuzzy = append(o.fuzzy, fuzzy.WithWidthFactor(f)) }
}

// WithExactDistance makes the fuzzy fallback score with exact Levenshtein
// distance instead of the width-bounded approximation.
func WithExactDistance() Option {
	return func(o *options) { o.fuzzy = append(o.fuzzy, fuzzy.WithExactDistance()) }
}

// WithMaxEntries caps the entry count LoadCompleter accepts from a binary
// dictionary header. n <= 0 keeps dictionary.DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// Completer answers top-K completion queries over a static corpus.
// It is immutable after construction and safe for concurrent readers.
type Completer struct {
	store        *PhraseStore
	tree         *rank.Tree
	matcher      *fuzzy.Matcher
	trie         *patricia.Trie
	maxFrequency int
}

// NewCompleter builds every index over records.
func NewCompleter(records []dictionary.Record, opts ...Option) (*Completer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	store, err := NewPhraseStore(records)
	if err != nil {
		return nil, err
	}

	c := &Completer{
		store:   store,
		tree:    rank.Build(store.freqs),
		matcher: fuzzy.NewMatcher(store, o.fuzzy...),
		trie:    patricia.NewTrie(),
	}

	for i, phrase := range store.phrases {
		freq := store.freqs[i]
		if freq > c.maxFrequency {
			c.maxFrequency = freq
		}
		if phrase == "" {
			continue
		}
		if existing := c.trie.Get(patricia.Prefix(phrase)); existing != nil && existing.(int) >= freq {
			continue
		}
		c.trie.Set(patricia.Prefix(phrase), freq)
	}

	log.Debugf("Built completer over %d phrases (%d tree nodes) in %v",
		store.Len(), c.tree.NodeCount(), time.Since(start))
	return c, nil
}

// LoadCompleter reads the corpus at path and builds a Completer from it.
// Loader failures are returned as is.
func LoadCompleter(path string, opts ...Option) (*Completer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	records, err := dictionary.NewLoader(o.maxEntries).Load(path)
	if err != nil {
		return nil, err
	}
	return NewCompleter(records, opts...)
}

// search runs the exact-or-fuzzy decision. Prefix ranges holding at least k
// phrases are answered from the rank tree, anything else by scoring the
// whole corpus.
func (c *Completer) search(word string, k int) (matches []fuzzy.Match, corrected bool) {
	query := utils.Normalize(word)
	if l, r, ok := c.store.FindRange(query); ok && r-l >= k {
		indices := c.tree.TopK(k, l, r)
		matches = make([]fuzzy.Match, len(indices))
		for i, idx := range indices {
			matches[i] = fuzzy.Match{Index: idx, Frequency: c.store.freqs[idx]}
		}
		return matches, false
	}
	log.Debugf("Falling back to fuzzy matching for %q (k=%d)", query, k)
	return c.matcher.TopK(query, k), true
}

// TopK returns up to k phrases for word, best first. It never returns nil.
func (c *Completer) TopK(word string, k int) []string {
	if k <= 0 {
		return []string{}
	}
	matches, _ := c.search(word, k)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = c.store.phrases[m.Index]
	}
	return out
}

// Complete is TopK with frequencies and the fuzzy marker attached.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}
	matches, corrected := c.search(prefix, limit)

	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		out[i] = Suggestion{
			Word:         c.store.phrases[m.Index],
			Frequency:    m.Frequency,
			Distance:     m.Distance,
			WasCorrected: corrected,
		}
	}
	return out
}

// Lookup reports the frequency of an exact phrase. Duplicate phrases resolve
// to their highest frequency.
func (c *Completer) Lookup(phrase string) (Suggestion, bool) {
	phrase = utils.Normalize(phrase)
	if phrase == "" {
		// Empty phrases sort first and cannot be trie keys.
		best := 0
		for i := 0; i < c.store.Len() && c.store.phrases[i] == ""; i++ {
			best = max(best, c.store.freqs[i])
		}
		return Suggestion{Frequency: best}, best > 0
	}
	item := c.trie.Get(patricia.Prefix(phrase))
	if item == nil {
		return Suggestion{}, false
	}
	return Suggestion{Word: phrase, Frequency: item.(int)}, true
}

func (c *Completer) Len() int { return c.store.Len() }

func (c *Completer) PhraseAt(i int) string { return c.store.PhraseAt(i) }

func (c *Completer) FrequencyAt(i int) int { return c.store.FrequencyAt(i) }

// Records returns the normalized corpus in index order.
func (c *Completer) Records() []dictionary.Record { return c.store.Records() }

func (c *Completer) Stats() map[string]int {
	return map[string]int{
		"totalWords":   c.store.Len(),
		"maxFrequency": c.maxFrequency,
		"treeNodes":    c.tree.NodeCount(),
	}
}
