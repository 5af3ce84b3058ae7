package suggest

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(pairs ...any) []dictionary.Record {
	out := make([]dictionary.Record, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, dictionary.Record{Phrase: pairs[i].(string), Frequency: pairs[i+1].(int)})
	}
	return out
}

func mustCompleter(t testing.TB, recs []dictionary.Record, opts ...Option) *Completer {
	t.Helper()
	c, err := NewCompleter(recs, opts...)
	require.NoError(t, err)
	return c
}

func TestTopKScenarios(t *testing.T) {
	tests := []struct {
		name   string
		corpus []dictionary.Record
		word   string
		k      int
		want   []string
	}{
		{"prefix range", records("cat", 5, "car", 3, "cart", 1), "ca", 2, []string{"cat", "car"}},
		{"no prefix match", records("cat", 5), "dog", 1, []string{"cat"}},
		{"typo", records("hello", 2, "hallo", 1), "helo", 1, []string{"hello"}},
		{"empty word", records("a", 1, "b", 2), "", 2, []string{"b", "a"}},
		{"uppercase input", records("cat", 5, "car", 3, "cart", 1), "CA", 2, []string{"cat", "car"}},
		{"short range falls back", records("cat", 5, "car", 3, "dog", 9), "ca", 3, []string{"cat", "car", "dog"}},
		{"k larger than corpus", records("x", 1, "y", 1), "", 5, []string{"x", "y"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := mustCompleter(t, tc.corpus)
			assert.Equal(t, tc.want, c.TopK(tc.word, tc.k))
		})
	}
}

func TestEmptyCorpus(t *testing.T) {
	_, err := NewCompleter(nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = NewPhraseStore([]dictionary.Record{})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestTopKNonPositive(t *testing.T) {
	c := mustCompleter(t, records("a", 1))
	got := c.TopK("a", 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, c.TopK("a", -3))
	assert.Empty(t, c.Complete("a", 0))
}

func TestTopKHugeK(t *testing.T) {
	c := mustCompleter(t, records("cat", 5, "car", 3))
	for _, k := range []int{1 << 50, math.MaxInt} {
		assert.Equal(t, []string{"cat", "car"}, c.TopK("dog", k))
		assert.Equal(t, []string{"cat", "car"}, c.TopK("ca", k))
		assert.Len(t, c.Complete("", k), 2)
	}
}

func TestFuzzyWidthNonFinite(t *testing.T) {
	corpus := records("helloworld", 1, "help", 4)
	for _, f := range []float64{math.Inf(1), math.NaN(), 1e18} {
		c := mustCompleter(t, corpus, WithFuzzyWidth(f))
		assert.Equal(t, []string{"helloworld"}, c.TopK("helloworlds", 1), "factor %v", f)
	}
}

func TestCompleteMarksFuzzyPath(t *testing.T) {
	c := mustCompleter(t, records("hello", 2, "hallo", 1, "help", 8))

	exact := c.Complete("hel", 2)
	require.Len(t, exact, 2)
	assert.Equal(t, Suggestion{Word: "help", Frequency: 8}, exact[0])
	assert.Equal(t, Suggestion{Word: "hello", Frequency: 2}, exact[1])

	fuzzy := c.Complete("helo", 2)
	require.Len(t, fuzzy, 2)
	for _, s := range fuzzy {
		assert.True(t, s.WasCorrected)
	}
	// help and hello are both one edit away, help is more frequent.
	assert.Equal(t, Suggestion{Word: "help", Frequency: 8, Distance: 1, WasCorrected: true}, fuzzy[0])
	assert.Equal(t, Suggestion{Word: "hello", Frequency: 2, Distance: 1, WasCorrected: true}, fuzzy[1])
}

func TestStoreNormalizesAndClamps(t *testing.T) {
	s, err := NewPhraseStore(records("Beta", 0, "alpha", -4, "ALPHA", 3))
	require.NoError(t, err)
	assert.Equal(t, []dictionary.Record{
		{Phrase: "alpha", Frequency: 1},
		{Phrase: "alpha", Frequency: 3},
		{Phrase: "beta", Frequency: 1},
	}, s.Records())
	assert.Equal(t, []int{1, 3, 1}, []int{s.FrequencyAt(0), s.FrequencyAt(1), s.FrequencyAt(2)})
}

func TestFindRange(t *testing.T) {
	s, err := NewPhraseStore(records("car", 1, "cart", 1, "cat", 1, "dog", 1, "", 1))
	require.NoError(t, err)

	tests := []struct {
		prefix string
		l, r   int
		ok     bool
	}{
		{"", 0, 5, true},
		{"ca", 1, 4, true},
		{"car", 1, 3, true},
		{"cart", 2, 3, true},
		{"carts", 0, 0, false},
		{"d", 4, 5, true},
		{"e", 0, 0, false},
		{"b", 0, 0, false},
	}
	for _, tc := range tests {
		l, r, ok := s.FindRange(tc.prefix)
		assert.Equal(t, tc.ok, ok, "prefix %q", tc.prefix)
		if tc.ok {
			assert.Equal(t, [2]int{tc.l, tc.r}, [2]int{l, r}, "prefix %q", tc.prefix)
		}
	}
}

func randomCorpus(rng *rand.Rand, n int) []dictionary.Record {
	const alphabet = "abcé"
	runes := []rune(alphabet)
	out := make([]dictionary.Record, n)
	for i := range out {
		var sb strings.Builder
		for j := rng.Intn(5); j > 0; j-- {
			sb.WriteRune(runes[rng.Intn(len(runes))])
		}
		out[i] = dictionary.Record{Phrase: sb.String(), Frequency: 1 + rng.Intn(20)}
	}
	return out
}

func TestStoreProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		s, err := NewPhraseStore(randomCorpus(rng, 1+rng.Intn(60)))
		require.NoError(t, err)

		for i := 1; i < s.Len(); i++ {
			require.LessOrEqual(t, s.PhraseAt(i-1), s.PhraseAt(i))
		}

		for _, prefix := range []string{"", "a", "ab", "é", "cé", "bbb", "z"} {
			l, r, ok := s.FindRange(prefix)
			var want []int
			for i := 0; i < s.Len(); i++ {
				if strings.HasPrefix(s.PhraseAt(i), prefix) {
					want = append(want, i)
				}
			}
			if len(want) == 0 {
				assert.False(t, ok, "prefix %q", prefix)
				continue
			}
			require.True(t, ok, "prefix %q", prefix)
			assert.Equal(t, want[0], l)
			assert.Equal(t, want[len(want)-1]+1, r)
			assert.Equal(t, len(want), r-l, "matches are contiguous")
		}
	}
}

func TestExactPathMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		c := mustCompleter(t, randomCorpus(rng, 1+rng.Intn(80)))
		recs := c.Records()

		for _, prefix := range []string{"", "a", "b", "c", "é", "ab"} {
			var idx []int
			for i, rec := range recs {
				if strings.HasPrefix(rec.Phrase, prefix) {
					idx = append(idx, i)
				}
			}
			if len(idx) == 0 {
				continue
			}
			sort.SliceStable(idx, func(a, b int) bool {
				return recs[idx[a]].Frequency > recs[idx[b]].Frequency
			})
			k := 1 + rng.Intn(len(idx))
			want := make([]string, k)
			for i := 0; i < k; i++ {
				want[i] = recs[idx[i]].Phrase
			}

			got := c.Complete(prefix, k)
			require.Len(t, got, k)
			for i, s := range got {
				assert.False(t, s.WasCorrected)
				assert.Equal(t, want[i], s.Word, "prefix %q k=%d pos %d", prefix, k, i)
				if i > 0 {
					assert.GreaterOrEqual(t, got[i-1].Frequency, s.Frequency)
				}
			}
		}
	}
}

func TestFuzzyFallbackOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := mustCompleter(t, randomCorpus(rng, 100))

	got := c.Complete("zzab", 10)
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		require.True(t, cur.WasCorrected)
		if prev.Distance == cur.Distance {
			assert.GreaterOrEqual(t, prev.Frequency, cur.Frequency)
		} else {
			assert.Less(t, prev.Distance, cur.Distance)
		}
	}
}

func TestIdempotent(t *testing.T) {
	c := mustCompleter(t, randomCorpus(rand.New(rand.NewSource(9)), 200))
	for _, q := range []string{"", "a", "abc", "zz", "éa"} {
		for k := 1; k < 12; k += 5 {
			assert.Equal(t, c.TopK(q, k), c.TopK(q, k))
		}
	}
}

func TestExactDistanceOption(t *testing.T) {
	corpus := records("ab", 1, "abcdefgh", 9)
	approx := mustCompleter(t, corpus)
	exact := mustCompleter(t, corpus, WithExactDistance())

	// Only the leading columns of long candidates are scored by default.
	assert.Equal(t, []string{"abcdefgh"}, approx.TopK("ax", 1))
	assert.Equal(t, []string{"ab"}, exact.TopK("ax", 1))
}

func TestLookup(t *testing.T) {
	c := mustCompleter(t, records("Cat", 2, "cat", 7, "car", 3, "", 4))

	s, ok := c.Lookup("CAT")
	require.True(t, ok)
	assert.Equal(t, Suggestion{Word: "cat", Frequency: 7}, s)

	_, ok = c.Lookup("ca")
	assert.False(t, ok)

	s, ok = c.Lookup("")
	require.True(t, ok)
	assert.Equal(t, 4, s.Frequency)

	noEmpty := mustCompleter(t, records("x", 1))
	_, ok = noEmpty.Lookup("")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	c := mustCompleter(t, records("a", 1, "b", 10, "c", 4))
	stats := c.Stats()
	assert.Equal(t, 3, stats["totalWords"])
	assert.Equal(t, 10, stats["maxFrequency"])
	assert.Equal(t, 5, stats["treeNodes"])
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "b", c.PhraseAt(1))
	assert.Equal(t, 10, c.FrequencyAt(1))
}

func TestLoadCompleter(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat:5\ncar:3\ncart:1\n"), 0o644))
	c, err := LoadCompleter(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "car"}, c.TopK("ca", 2))

	_, err = LoadCompleter(filepath.Join(dir, "missing.txt"))
	var le *dictionary.LoadError
	assert.True(t, errors.As(err, &le))

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadCompleter(empty)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestLoadCompleterMaxEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.bin")
	require.NoError(t, dictionary.Save(path, records("cat", 5, "car", 3, "cart", 1)))

	_, err := LoadCompleter(path, WithMaxEntries(2))
	assert.ErrorIs(t, err, dictionary.ErrBadHeader)

	c, err := LoadCompleter(path, WithMaxEntries(3))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestConcurrentReaders(t *testing.T) {
	c := mustCompleter(t, randomCorpus(rand.New(rand.NewSource(11)), 300))
	queries := []string{"a", "ab", "zzz", "", "cé", "bca"}
	want := make(map[string][]string, len(queries))
	for _, q := range queries {
		want[q] = c.TopK(q, 7)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q := queries[i%len(queries)]
				assert.Equal(t, want[q], c.TopK(q, 7))
			}
		}()
	}
	wg.Wait()
}

func BenchmarkTopK(b *testing.B) {
	c := mustCompleter(b, randomCorpus(rand.New(rand.NewSource(1)), 20000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.TopK("ab", 10)
	}
}
