// Package mention finds @handle tags in message content.
package mention

import (
	"sort"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

const tagPrefix = '@'

// Scanner matches every known handle in a single pass over the content.
type Scanner struct {
	matcher *goahocorasick.Machine
}

// NewScanner builds the automaton over "@"+handle for each non-empty handle.
// A scanner built without handles matches nothing.
func NewScanner(handles []string) (*Scanner, error) {
	handles = lo.Uniq(lo.Compact(handles))
	if len(handles) == 0 {
		return &Scanner{}, nil
	}
	sort.Strings(handles)

	patterns := make([][]rune, len(handles))
	for i, handle := range handles {
		patterns[i] = append([]rune{tagPrefix}, []rune(handle)...)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Scanner{matcher: m}, nil
}

// Scan returns the distinct handles tagged in content, in order of first
// appearance. A tag only counts when it is not followed by another handle
// character, so "@bob" does not tag bob inside "@bobby".
func (s *Scanner) Scan(content string) []string {
	if s.matcher == nil || content == "" {
		return nil
	}
	runes := []rune(content)
	terms := s.matcher.MultiPatternSearch(runes, false)

	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Pos < terms[j].Pos })

	var handles []string
	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(runes) {
			continue
		}
		if end < len(runes) && isHandleRune(runes[end]) {
			continue
		}
		handles = append(handles, string(term.Word[1:]))
	}
	if len(handles) == 0 {
		return nil
	}
	return lo.Uniq(handles)
}

func isHandleRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
