package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/moustache/lang"
)

// commands are the REPL commands, each entered with a leading ':'.
var commands = []string{"blocks", "clear", "help", "quit", "unset", "vars"}

// isWordBoundary reports whether r separates completion words. Dots are not
// boundaries so that "module.function" completes as one word.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'{', '}', '%', '#',
		'(', ')', '"', '$', ':',
		'+', '=', '!', '|', '&', ',':
		return true
	}

	return false
}

// wordBounds returns the word around the cursor and its byte boundaries
// within input.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completions available for the word starting at
// wordStart: command names after a leading ':', otherwise statement
// keywords, variable and block names, and extension functions.
func candidates(input string, wordStart int, engine *lang.Engine) []string {
	if wordStart == 1 && strings.HasPrefix(input, ":") {
		return commands
	}

	names := slices.Clone(lang.Keywords)
	names = append(names, engine.Environment().Names()...)

	if reg := engine.Extensions(); reg != nil {
		names = append(names, reg.Names()...)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches returns the fuzzy matches, best first, for the word at the
// cursor and the word boundaries. An empty word has no matches.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, start, end
	}

	return fuzzy.Find(word, candidates(input, start, m.engine)), start, end
}

// renderCandidateBar builds the single-line completion bar, cut short with
// an ellipsis to fit within width. The selected candidate is highlighted
// while tabbing.
func renderCandidateBar(
	matches fuzzy.Matches,
	selected int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w+reserve > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters emphasized.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, bold := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, bold = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
