package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbacklens/phrasekit/pkg/grammar"
)

func tok(text, tag string) TaggedToken {
	return TaggedToken{Text: text, Tag: tag, Lemma: text}
}

// The reference sentence used throughout: "Submit the report on time".
func reportSentence() TaggedSentence {
	return TaggedSentence{
		tok("Submit", "VB"),
		tok("the", "DT"),
		tok("report", "NN"),
		tok("on", "IN"),
		tok("time", "NN"),
	}
}

func TestChunkSentence(t *testing.T) {
	p := NewParser(grammar.MustDefault())

	chunks := p.ExtractPhrases(TaggedDocument{reportSentence()}, true)
	require.Len(t, chunks, 1)
	sent := chunks[0]
	require.Len(t, sent, 3)

	assert.Equal(t, Chunk{Label: "verb", Text: "Submit", Start: 0, End: 1}, sent[0])
	assert.Equal(t, Chunk{Label: "noun", Text: "the report", Start: 1, End: 3}, sent[1])
	assert.Equal(t, Chunk{Label: "prep_noun", Text: "on time", Start: 3, End: 5}, sent[2])
}

func TestChunkRangesMonotonic(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	sent := TaggedSentence{
		tok("The", "DT"), tok("page", "NN"), tok("crashed", "VBD"),
		tok("and", "CC"), tok("I", "PRP"), tok("lost", "VBD"),
		tok("my", "DT"), tok("application", "NN"),
	}

	chunks := p.ExtractPhrases(TaggedDocument{sent}, false)[0]
	prev := 0
	for _, c := range chunks {
		assert.GreaterOrEqual(t, c.Start, prev, "chunks must not overlap")
		assert.Less(t, c.Start, c.End)
		prev = c.End
	}
}

func TestUnmatchedTokensDropped(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	// "quickly" alone matches no rule; "," is never part of a chunk.
	sent := TaggedSentence{
		tok("quickly", "RB"), tok(",", ","), tok("help", "VB"),
	}
	chunks := p.ExtractPhrases(TaggedDocument{sent}, true)[0]
	require.Len(t, chunks, 1)
	assert.Equal(t, "verb", chunks[0].Label)
	assert.Equal(t, "help", chunks[0].Text)
}

func TestVerbConsumesTrailingAdverbs(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	sent := TaggedSentence{tok("loads", "VBZ"), tok("very", "RB"), tok("slowly", "RB")}
	chunks := p.ExtractPhrases(TaggedDocument{sent}, true)[0]
	require.Len(t, chunks, 1)
	assert.Equal(t, "loads very slowly", chunks[0].Text)
}

func TestMergeNounVerb(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	// "the page loads" -> noun("the page") + verb("loads") -> noun_verb
	sent := TaggedSentence{tok("the", "DT"), tok("page", "NN"), tok("loads", "VBZ")}
	chunks := p.ExtractPhrases(TaggedDocument{sent}, true)[0]
	require.Len(t, chunks, 1)
	assert.Equal(t, "noun_verb", chunks[0].Label)
	assert.Equal(t, "the page loads", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 3, chunks[0].End)
}

func TestMergeSinglePassNonRecursive(t *testing.T) {
	g, err := grammar.Parse("noun: <NN>\nmerge noun + noun -> noun")
	require.NoError(t, err)
	p := NewParser(g)

	sent := TaggedSentence{tok("tax", "NN"), tok("credit", "NN"), tok("form", "NN")}
	chunks := p.ExtractPhrases(TaggedDocument{sent}, true)[0]

	// First two merge; the result is not re-checked against the third.
	require.Len(t, chunks, 2)
	assert.Equal(t, "tax credit", chunks[0].Text)
	assert.Equal(t, "form", chunks[1].Text)
}

func TestMergeDeterminism(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	doc := TaggedDocument{reportSentence()}

	first := p.ExtractPhrases(doc, true)
	for range 5 {
		assert.Equal(t, first, p.ExtractPhrases(doc, true))
	}
}

func TestEmptySentence(t *testing.T) {
	p := NewParser(grammar.MustDefault())
	chunks := p.ExtractPhrases(TaggedDocument{TaggedSentence{}}, true)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0])
}

func TestCombinationsCount(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 8} {
		chunks := make([]Chunk, n)
		for i := range chunks {
			chunks[i] = Chunk{Label: "noun", Start: i, End: i + 1}
		}

		var got [][]Chunk
		for combo := range Combinations([][]Chunk{chunks}, 2) {
			got = append(got, combo)
		}
		assert.Len(t, got, n*(n-1)/2, "n=%d", n)

		// index order, each pair exactly once
		seen := map[[2]int]bool{}
		for _, combo := range got {
			require.Len(t, combo, 2)
			assert.Less(t, combo[0].Start, combo[1].Start)
			key := [2]int{combo[0].Start, combo[1].Start}
			assert.False(t, seen[key], "duplicate pair %v", key)
			seen[key] = true
		}
	}
}

func TestCombinationsPerSentence(t *testing.T) {
	a := Chunk{Label: "verb", Text: "a"}
	b := Chunk{Label: "noun", Text: "b"}
	c := Chunk{Label: "noun", Text: "c"}

	// Pairs never cross sentence boundaries; a one-chunk sentence adds none.
	sents := [][]Chunk{{a, b}, {c}}
	var got [][]Chunk
	for combo := range Combinations(sents, 2) {
		got = append(got, combo)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0][0].Text)
	assert.Equal(t, "b", got[0][1].Text)
}

func TestCombinationsRestartable(t *testing.T) {
	sents := [][]Chunk{{{Text: "a"}, {Text: "b"}, {Text: "c"}}}
	seq := Combinations(sents, 2)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count(), "iterator must be restartable")
}
