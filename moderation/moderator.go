// Package moderation censors forbidden words in chat payloads before they
// are broadcast. Matching runs over a normalized view of the text (lowered,
// leet-speak folded, separators stripped) while the replacement is applied
// to the original runes, so spacing and casing around a hit are preserved.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	machine     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized word
// list. An empty list yields a moderator that passes everything through.
func NewModerator(words []string, replacement rune) (Moderator, error) {
	if len(words) == 0 {
		return Moderator{replacement: replacement}, nil
	}
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		norm, _ := normalize(w)
		if len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{machine: machine, replacement: replacement}, nil
}

// Censor replaces every forbidden span with the replacement rune.
func (m Moderator) Censor(original string) string {
	if m.machine == nil {
		return original
	}
	norm, origIdx := normalize(original)
	if len(norm) == 0 {
		return original
	}
	hits := m.machine.MultiPatternSearch(norm, false)
	if len(hits) == 0 {
		return original
	}

	out := []rune(original)
	for _, hit := range hits {
		start := hit.Pos
		end := start + len(hit.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			out[i] = m.replacement
		}
	}
	return string(out)
}

// normalize lowers and folds the input, dropping separator noise. The second
// return value maps each normalized rune back to its original index.
func normalize(input string) ([]rune, []int) {
	orig := []rune(input)
	norm := make([]rune, 0, len(orig))
	origIdx := make([]int, 0, len(orig))
	for i, r := range orig {
		folded := foldLeet(r)
		if unicode.IsPunct(folded) || unicode.IsSpace(folded) || unicode.IsSymbol(folded) {
			continue
		}
		norm = append(norm, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

// foldLeet maps the usual digit/symbol substitutions back to letters.
func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
