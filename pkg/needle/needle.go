// Package needle locates normalized phrases back in original comment text.
// Phrases arrive lowercased while the haystack keeps its original casing, so
// matching is case-insensitive; the located substring is returned exactly as
// it appears in the haystack. A phrase the tokenizer has drifted away from
// may simply not be present: absence is an expected result, never an error.
package needle

import (
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Clean normalizes a haystack the same way phrases were normalized: the
// characters ()[]+ are deleted and whitespace runs collapse to single
// spaces. It is idempotent and does not change case.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch ch {
		case '(', ')', '[', ']', '+':
		default:
			b.WriteRune(ch)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Finder locates a fixed set of phrases in haystacks with one automaton
// scan per haystack. The automaton folds ASCII case only, so phrases with
// non-ASCII letters are matched separately against a Unicode-lowered copy of
// the haystack.
type Finder struct {
	ac      ahocorasick.AhoCorasick
	phrases []string
	folded  []string
}

// NewFinder builds a case-insensitive automaton over the given phrases.
// Empty phrases are kept in the index but never match.
func NewFinder(phrases []string) *Finder {
	ascii := make([]string, 0, len(phrases))
	var folded []string
	for _, p := range phrases {
		if isASCII(p) {
			ascii = append(ascii, p)
		} else {
			folded = append(folded, p)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.StandardMatch, // required for IterOverlapping
		DFA:                  false,
	})
	return &Finder{ac: builder.Build(ascii), phrases: ascii, folded: folded}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Find scans the haystack once and returns, for each phrase that occurs, its
// first literal occurrence with the haystack's original casing. Phrases that
// do not occur are simply absent from the map.
func (f *Finder) Find(haystack string) map[string]string {
	found := make(map[string]string, len(f.phrases)+len(f.folded))
	if haystack == "" {
		return found
	}

	if len(f.phrases) > 0 {
		iter := f.ac.IterOverlapping(haystack)
		for {
			m := iter.Next()
			if m == nil {
				break
			}
			phrase := f.phrases[m.Pattern()]
			if _, seen := found[phrase]; seen {
				continue
			}
			found[phrase] = haystack[m.Start():m.End()]
		}
	}

	if len(f.folded) > 0 {
		lowered, offsets := foldHaystack(haystack)
		for _, p := range f.folded {
			if _, seen := found[p]; seen {
				continue
			}
			lp := strings.ToLower(p)
			i := strings.Index(lowered, lp)
			if i < 0 {
				continue
			}
			found[p] = haystack[offsets[i]:offsets[i+len(lp)]]
		}
	}
	return found
}

// foldHaystack lowercases the haystack rune by rune and records, for every
// byte of the lowered string plus one past its end, the corresponding byte
// offset in the original. Lowering can change a rune's encoded width, so the
// map is per byte rather than a constant shift.
func foldHaystack(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}

// FindNeedle locates a single phrase in a haystack, returning the original
// substring and whether it was found.
func FindNeedle(phrase, haystack string) (string, bool) {
	if phrase == "" {
		return "", false
	}
	got, ok := NewFinder([]string{phrase}).Find(haystack)[phrase]
	return got, ok
}
