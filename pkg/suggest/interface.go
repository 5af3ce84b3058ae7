// Package suggest ranks completions of a prefix over a static phrase corpus,
// falling back to edit-distance matching when the prefix has too few matches.
package suggest

// ICompleter defines the query surface the server and CLI depend on
type ICompleter interface {
	// Complete returns up to limit suggestions for prefix, best first
	Complete(prefix string, limit int) []Suggestion

	// TopK returns up to k phrases for word, best first
	TopK(word string, k int) []string

	// Lookup returns the frequency of an exact phrase
	Lookup(phrase string) (Suggestion, bool)

	// Stats returns statistics about the loaded corpus
	Stats() map[string]int
}

var _ ICompleter = (*Completer)(nil)
