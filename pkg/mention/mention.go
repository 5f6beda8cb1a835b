// Package mention turns chunk pairs into labeled phrase mentions. Pairs are
// filtered through a closed allow-list of chunk-label combinations; accepted
// pairs are themed by pluggable category classifiers and normalized into a
// phrase string.
package mention

import (
	"fmt"
	"strings"

	"github.com/feedbacklens/phrasekit/pkg/chunker"
)

// Key is the ordered pair of chunk labels that classifies a combination.
type Key [2]string

// Mention is the record produced when a chunk pair passes the allow-list.
type Mention struct {
	Key    Key
	Phrase string
	Theme  string
	Args   [2]string
}

// Categorizer maps a lowercase string to a category label. Implementations
// are pure functions over string content and return a defined default for
// unmatched input.
type Categorizer interface {
	Categorize(s string) string
}

// CategorizerFunc adapts a plain function to Categorizer.
type CategorizerFunc func(string) string

// Categorize implements Categorizer.
func (f CategorizerFunc) Categorize(s string) string { return f(s) }

// ResolveFunc transforms a comment's mention list into the user-facing list.
// Policy is opaque to the extraction engine; it may drop or rewrite mentions
// but never invents new ones.
type ResolveFunc func([]Mention) []Mention

// allowed is the closed set of chunk-label pairs that produce mentions.
// Everything else is discarded silently.
var allowed = map[Key]bool{
	{"verb", "noun"}:           true,
	{"verb", "prep_noun"}:      true,
	{"verb", "noun_verb"}:      true,
	{"noun", "prep_noun"}:      true,
	{"prep_noun", "noun"}:      true,
	{"prep_noun", "prep_noun"}: true,
}

// stripper deletes bracket and plus characters. Characters are removed, not
// replaced by spaces, so adjacent tokens may fuse; that matches the
// normalization applied to the haystack text at span resolution.
var stripper = strings.NewReplacer("(", "", ")", "", "[", "", "]", "", "+", "")

// Strip removes the characters ()[]+ from s. Idempotent.
func Strip(s string) string {
	return stripper.Replace(s)
}

// Extractor classifies chunk pairs into themed mentions.
type Extractor struct {
	verbs  Categorizer
	themes Categorizer
}

// NewExtractor builds an Extractor from the two category classifiers.
func NewExtractor(verbs, themes Categorizer) *Extractor {
	return &Extractor{verbs: verbs, themes: themes}
}

// Extract enumerates pairwise chunk combinations per sentence and emits a
// mention for every allow-listed pair, in sentence order then
// pair-generation order within a sentence.
func (e *Extractor) Extract(sentences [][]chunker.Chunk) []Mention {
	var mentions []Mention
	for combo := range chunker.Combinations(sentences, 2) {
		key := Key{combo[0].Label, combo[1].Label}
		if !allowed[key] {
			continue
		}

		arg1 := strings.ToLower(combo[0].Text)
		arg2 := strings.ToLower(combo[1].Text)
		theme := fmt.Sprintf("%s - %s", e.verbs.Categorize(arg1), e.themes.Categorize(arg2))

		arg1 = Strip(arg1)
		arg2 = Strip(arg2)
		mentions = append(mentions, Mention{
			Key:    key,
			Phrase: arg1 + " " + arg2,
			Theme:  theme,
			Args:   [2]string{arg1, arg2},
		})
	}
	return mentions
}

// Dedupe is the default ResolveFunc: it keeps the first occurrence of each
// (phrase, theme) pair, preserving encounter order. The output is never
// longer than the input.
func Dedupe(mentions []Mention) []Mention {
	type ident struct {
		phrase string
		theme  string
	}
	seen := make(map[ident]bool, len(mentions))
	out := make([]Mention, 0, len(mentions))
	for _, m := range mentions {
		id := ident{phrase: m.Phrase, theme: m.Theme}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, m)
	}
	return out
}
