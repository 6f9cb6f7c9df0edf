package lang

import (
	"log/slog"
	"slices"

	"github.com/sahilm/fuzzy"
)

// Keywords lists the statement keywords in alphabetical order.
var Keywords = []string{
	"block", "call", "execute", "find", "for", "if", "include", "raw", "set",
}

// Suggest returns the candidate most similar to word.
//
// A candidate matches if word is a fuzzy subsequence of it, or if it is a
// subsequence of word; the former is preferred.
func Suggest(word string, candidates []string) (string, bool) {
	if word == "" || len(candidates) == 0 {
		return "", false
	}

	if m := fuzzy.Find(word, candidates); m.Len() > 0 {
		return m[0].Str, true
	}

	var (
		best  string
		score int
		found bool
	)

	for _, c := range slices.Sorted(slices.Values(candidates)) {
		m := fuzzy.Find(c, []string{word})
		if m.Len() > 0 && (!found || m[0].Score > score) {
			best, score, found = c, m[0].Score, true
		}
	}

	return best, found
}

func hint(word string, candidates []string) []slog.Attr {
	s, ok := Suggest(word, candidates)
	if !ok || s == word {
		return nil
	}

	return []slog.Attr{slog.String("hint", "did you mean '"+s+"'?")}
}
