// Package pipeline wires the extraction stages together: tag, chunk,
// combine, classify, resolve spans and aggregate into display columns. One
// comment is processed fully before the next; every intermediate artifact is
// row-scoped, so rows can never corrupt each other.
package pipeline

import (
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/feedbacklens/phrasekit/internal/store"
	"github.com/feedbacklens/phrasekit/internal/survey"
	"github.com/feedbacklens/phrasekit/pkg/chunker"
	"github.com/feedbacklens/phrasekit/pkg/mention"
	"github.com/feedbacklens/phrasekit/pkg/needle"
	"github.com/feedbacklens/phrasekit/pkg/tagger"
)

// Pipeline holds the collaborators for one extraction run. Tagger, parser
// and extractor are reused across rows; none of them keep per-row state.
type Pipeline struct {
	Tagger    tagger.Capability
	Parser    *chunker.Parser
	Extractor *mention.Extractor

	// Resolve derives the user-facing mention list; defaults to
	// mention.Dedupe when nil.
	Resolve mention.ResolveFunc

	// Cache, when non-nil, stores tagged documents keyed by comment
	// content so re-runs skip the tagging pass.
	Cache *store.TagCache
}

// Result is everything extracted from one comment row.
type Result struct {
	// Cleaned is the original text with bracket/plus stripping and
	// whitespace normalization only; case is preserved. Spans are
	// resolved against this.
	Cleaned string

	// Words and Lemmas flatten the tagged document's tokens and lemmas in
	// document order, space-joined; both are empty for filtered rows.
	Words  string
	Lemmas string

	// Mentions and UserMentions are the raw and resolved phrase mention
	// lists (theme_mentions / theme_mentions_user).
	Mentions     []mention.Mention
	UserMentions []mention.Mention

	// PhraseSpans and UserPhraseSpans map each mention's phrase to its
	// located substring; absence means the span was not found.
	PhraseSpans     map[string]string
	UserPhraseSpans map[string]string

	// PhrasesList / UserPhrasesList are the located spans in mention
	// order; Phrases / UserPhrases join them with ", ".
	PhrasesList     []string
	UserPhrasesList []string
	Phrases         string
	UserPhrases     string
}

// ProcessComment runs the full per-row flow. Rows filtered out by
// preprocessing still get a cleaned text but no mentions.
func (p *Pipeline) ProcessComment(c survey.Comment) Result {
	res := Result{Cleaned: needle.Clean(c.Text)}
	if !c.Keep {
		return p.aggregate(res)
	}

	doc := p.tagComment(c.Redacted)
	res.Words, res.Lemmas = flatten(doc)
	sentences := p.Parser.ExtractPhrases(doc, true)
	res.Mentions = p.Extractor.Extract(sentences)

	resolve := p.Resolve
	if resolve == nil {
		resolve = mention.Dedupe
	}
	res.UserMentions = resolve(res.Mentions)
	if len(res.UserMentions) > len(res.Mentions) {
		// resolution may drop or rewrite mentions but never adds
		slog.Warn("resolve function grew mention list, truncating",
			"in", len(res.Mentions), "out", len(res.UserMentions))
		res.UserMentions = res.UserMentions[:len(res.Mentions)]
	}

	return p.aggregate(res)
}

// aggregate resolves each mention's phrase against the cleaned text and
// builds the display columns. A row with no mentions yields empty lists and
// "". That is a result, not an error.
func (p *Pipeline) aggregate(res Result) Result {
	res.PhraseSpans, res.PhrasesList = locate(res.Mentions, res.Cleaned)
	res.UserPhraseSpans, res.UserPhrasesList = locate(res.UserMentions, res.Cleaned)
	res.Phrases = strings.Join(res.PhrasesList, ", ")
	res.UserPhrases = strings.Join(res.UserPhrasesList, ", ")
	return res
}

// flatten joins the document's token texts and lemmas into the word and
// lemma summary columns.
func flatten(doc chunker.TaggedDocument) (string, string) {
	var words, lemmas []string
	for _, sent := range doc {
		for _, tok := range sent {
			words = append(words, tok.Text)
			lemmas = append(lemmas, tok.Lemma)
		}
	}
	return strings.Join(words, " "), strings.Join(lemmas, " ")
}

// locate finds every mention phrase in the haystack with a single automaton
// scan. The returned list preserves mention order and skips absent spans; a
// phrase mentioned twice contributes its span twice.
func locate(mentions []mention.Mention, haystack string) (map[string]string, []string) {
	if len(mentions) == 0 {
		return map[string]string{}, nil
	}

	phrases := make([]string, 0, len(mentions))
	seen := make(map[string]bool, len(mentions))
	for _, m := range mentions {
		if !seen[m.Phrase] {
			seen[m.Phrase] = true
			phrases = append(phrases, m.Phrase)
		}
	}

	spans := needle.NewFinder(phrases).Find(haystack)
	var list []string
	for _, m := range mentions {
		if span, ok := spans[m.Phrase]; ok {
			list = append(list, span)
		}
	}
	return spans, list
}

// tagComment returns the tagged document for a comment, via the cache when
// one is configured. Cache failures degrade to re-tagging; they never abort
// the row.
func (p *Pipeline) tagComment(text string) chunker.TaggedDocument {
	if p.Cache == nil {
		return p.Tagger.Tag(text)
	}

	key := cacheKey(text)
	if doc, ok, err := p.Cache.Get(key); err == nil && ok {
		return doc
	} else if err != nil {
		slog.Warn("tag cache read failed", "err", err)
	}

	doc := p.Tagger.Tag(text)
	if err := p.Cache.Put(key, doc); err != nil {
		slog.Warn("tag cache write failed", "err", err)
	}
	return doc
}

func cacheKey(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Run processes every comment in order and returns the per-row results,
// index-aligned with the input. The progress callback (may be nil) fires
// once per row.
func (p *Pipeline) Run(comments []survey.Comment, progress func()) []Result {
	results := make([]Result, len(comments))
	for i, c := range comments {
		results[i] = p.ProcessComment(c)
		if progress != nil {
			progress()
		}
	}
	return results
}
