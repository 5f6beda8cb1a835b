package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbacklens/phrasekit/internal/store"
	"github.com/feedbacklens/phrasekit/internal/survey"
	"github.com/feedbacklens/phrasekit/pkg/category"
	"github.com/feedbacklens/phrasekit/pkg/chunker"
	"github.com/feedbacklens/phrasekit/pkg/grammar"
	"github.com/feedbacklens/phrasekit/pkg/mention"
)

// fixedTagger returns canned tag sequences instead of running the model.
type fixedTagger struct {
	docs  map[string]chunker.TaggedDocument
	calls int
}

func (f *fixedTagger) Tag(text string) chunker.TaggedDocument {
	f.calls++
	return f.docs[text]
}

func submitDoc() chunker.TaggedDocument {
	return chunker.TaggedDocument{{
		{Text: "Submit", Tag: "VB", Lemma: "submit"},
		{Text: "the", Tag: "DT", Lemma: "the"},
		{Text: "report", Tag: "NN", Lemma: "report"},
		{Text: "on", Tag: "IN", Lemma: "on"},
		{Text: "time", Tag: "NN", Lemma: "time"},
	}}
}

func newPipeline(t *testing.T, tg *fixedTagger) *Pipeline {
	t.Helper()
	return &Pipeline{
		Tagger:    tg,
		Parser:    chunker.NewParser(grammar.MustDefault()),
		Extractor: mention.NewExtractor(category.VerbGroups(), category.Themes()),
	}
}

func comment(text string) survey.Comment {
	return survey.Comment{Text: text, Redacted: text, Language: "en", Keep: true}
}

func TestProcessCommentEndToEnd(t *testing.T) {
	text := "Submit the report on time"
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{text: submitDoc()}}
	p := newPipeline(t, tg)

	res := p.ProcessComment(comment(text))
	require.Len(t, res.Mentions, 3)
	assert.Equal(t, "submit the report", res.Mentions[0].Phrase)
	assert.Equal(t, "submit on time", res.Mentions[1].Phrase)
	assert.Equal(t, "the report on time", res.Mentions[2].Phrase)

	// "submit on time" is not a literal substring of the comment, so its
	// span is absent; the other two resolve with original casing.
	assert.Equal(t, []string{"Submit the report", "the report on time"}, res.PhrasesList)
	assert.Equal(t, "Submit the report, the report on time", res.Phrases)
	assert.Equal(t, res.Phrases, res.UserPhrases)

	assert.Equal(t, "Submit the report on time", res.Words)
	assert.Equal(t, "submit the report on time", res.Lemmas)
}

func TestProcessCommentPreservesCasing(t *testing.T) {
	text := "the form crashed"
	doc := chunker.TaggedDocument{{
		{Text: "The", Tag: "DT", Lemma: "the"},
		{Text: "Form", Tag: "NN", Lemma: "form"},
		{Text: "crashed", Tag: "VBD", Lemma: "crash"},
	}}
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{text: doc}}
	p := newPipeline(t, tg)

	c := comment(text)
	c.Text = "The Form crashed again"
	res := p.ProcessComment(c)

	// noun+verb merge into noun_verb; no allow-listed pairs remain, so no
	// mentions. The cleaned text keeps its casing either way.
	assert.Equal(t, "The Form crashed again", res.Cleaned)
	assert.Empty(t, res.Mentions)
	assert.Equal(t, "", res.Phrases)
}

func TestProcessCommentEmpty(t *testing.T) {
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{}}
	p := newPipeline(t, tg)

	res := p.ProcessComment(comment(""))
	assert.Empty(t, res.Mentions)
	assert.Empty(t, res.UserMentions)
	assert.Empty(t, res.PhrasesList)
	assert.Equal(t, "", res.Phrases)
}

func TestProcessCommentFilteredRow(t *testing.T) {
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{}}
	p := newPipeline(t, tg)

	c := survey.Comment{Text: "Ceci (n'est) pas anglais", Keep: false}
	res := p.ProcessComment(c)
	assert.Zero(t, tg.calls, "filtered rows must not be tagged")
	assert.Empty(t, res.Mentions)
	assert.Equal(t, "Ceci n'est pas anglais", res.Cleaned)
	assert.Equal(t, "", res.Words)
	assert.Equal(t, "", res.Lemmas)
}

func TestResolveNeverGrows(t *testing.T) {
	text := "Submit the report on time"
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{text: submitDoc()}}
	p := newPipeline(t, tg)
	p.Resolve = func(in []mention.Mention) []mention.Mention {
		return append(append([]mention.Mention{}, in...), in...) // misbehaving
	}

	res := p.ProcessComment(comment(text))
	assert.LessOrEqual(t, len(res.UserMentions), len(res.Mentions))
}

func TestTagCacheSkipsRetagging(t *testing.T) {
	text := "Submit the report on time"
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{text: submitDoc()}}
	p := newPipeline(t, tg)

	cache, err := store.OpenTagCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()
	p.Cache = cache

	first := p.ProcessComment(comment(text))
	second := p.ProcessComment(comment(text))
	assert.Equal(t, 1, tg.calls, "second run must hit the cache")
	assert.Equal(t, first, second)
}

func TestRunKeepsRowOrder(t *testing.T) {
	text := "Submit the report on time"
	tg := &fixedTagger{docs: map[string]chunker.TaggedDocument{text: submitDoc()}}
	p := newPipeline(t, tg)

	comments := []survey.Comment{comment(text), {Text: "skip me", Keep: false}, comment(text)}
	ticks := 0
	results := p.Run(comments, func() { ticks++ })

	require.Len(t, results, 3)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, "Submit the report, the report on time", results[0].Phrases)
	assert.Equal(t, "", results[1].Phrases)
	assert.Equal(t, results[0], results[2])
}
