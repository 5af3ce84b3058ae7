package suggest

import (
	"errors"
	"sort"
	"strings"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/dictionary"
)

// ErrEmptyCorpus is returned when an index is built from zero records.
var ErrEmptyCorpus = errors.New("empty corpus")

// PhraseStore holds the corpus sorted by phrase. A phrase's position in the
// sorted order is its index, which every other structure refers to.
type PhraseStore struct {
	phrases []string
	freqs   []int
}

// NewPhraseStore normalizes, sorts and indexes records. The sort is stable,
// so equal phrases keep their input order.
func NewPhraseStore(records []dictionary.Record) (*PhraseStore, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	sorted := make([]dictionary.Record, len(records))
	for i, rec := range records {
		sorted[i] = dictionary.Record{Phrase: utils.Normalize(rec.Phrase), Frequency: rec.Frequency}
		if sorted[i].Frequency < 1 {
			sorted[i].Frequency = 1
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Phrase < sorted[j].Phrase
	})

	s := &PhraseStore{
		phrases: make([]string, len(sorted)),
		freqs:   make([]int, len(sorted)),
	}
	for i, rec := range sorted {
		s.phrases[i] = rec.Phrase
		s.freqs[i] = rec.Frequency
	}
	return s, nil
}

func (s *PhraseStore) Len() int { return len(s.phrases) }

func (s *PhraseStore) PhraseAt(i int) string { return s.phrases[i] }

func (s *PhraseStore) FrequencyAt(i int) int { return s.freqs[i] }

// Records returns the corpus in index order.
func (s *PhraseStore) Records() []dictionary.Record {
	out := make([]dictionary.Record, len(s.phrases))
	for i := range s.phrases {
		out[i] = dictionary.Record{Phrase: s.phrases[i], Frequency: s.freqs[i]}
	}
	return out
}

// FindRange returns the half-open index range [l, r) of phrases starting with
// prefix. The empty prefix matches everything.
func (s *PhraseStore) FindRange(prefix string) (l, r int, ok bool) {
	l = sort.SearchStrings(s.phrases, prefix)
	if l == len(s.phrases) || !strings.HasPrefix(s.phrases[l], prefix) {
		return 0, 0, false
	}
	// Phrases sharing the prefix are contiguous from l on.
	tail := s.phrases[l:]
	r = l + sort.Search(len(tail), func(i int) bool {
		return !strings.HasPrefix(tail[i], prefix)
	})
	return l, r, true
}
