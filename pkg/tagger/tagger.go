// Package tagger provides the part-of-speech tagging capability consumed by
// the chunk parser: it splits a comment into sentences, tokenizes them, tags
// each token with a Penn-Treebank POS tag and attaches an English lemma.
package tagger

import (
	"strings"

	"github.com/jdkato/prose/tag"
	"github.com/jdkato/prose/tokenize"
	"github.com/kljensen/snowball"

	"github.com/feedbacklens/phrasekit/pkg/chunker"
)

// Capability is the interface the pipeline depends on; tests substitute
// fixed tag sequences behind it.
type Capability interface {
	Tag(text string) chunker.TaggedDocument
}

// Tagger wraps the prose perceptron tagger with Punkt sentence splitting and
// Treebank word tokenization. Construction loads the tagger model once;
// reuse the instance across comments.
type Tagger struct {
	pos   *tag.PerceptronTagger
	sents *tokenize.PunktSentenceTokenizer
	words *tokenize.TreebankWordTokenizer
}

// New builds a ready-to-use Tagger.
func New() *Tagger {
	return &Tagger{
		pos:   tag.NewPerceptronTagger(),
		sents: tokenize.NewPunktSentenceTokenizer(),
		words: tokenize.NewTreebankWordTokenizer(),
	}
}

// Tag produces one tagged sentence per detected sentence of text. Empty or
// whitespace-only text yields an empty document.
func (t *Tagger) Tag(text string) chunker.TaggedDocument {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var doc chunker.TaggedDocument
	for _, sentence := range t.sents.Tokenize(text) {
		words := t.words.Tokenize(sentence)
		if len(words) == 0 {
			continue
		}

		tagged := make(chunker.TaggedSentence, 0, len(words))
		for _, tok := range t.pos.Tag(words) {
			tagged = append(tagged, chunker.TaggedToken{
				Text:  tok.Text,
				Tag:   tok.Tag,
				Lemma: Lemma(tok.Text),
			})
		}
		doc = append(doc, tagged)
	}
	return doc
}

// Lemma reduces a word to its English stem, lowercased. Words the stemmer
// rejects fall back to their lowercase form.
func Lemma(word string) string {
	lower := strings.ToLower(word)
	stem, err := snowball.Stem(lower, "english", true)
	if err != nil {
		return lower
	}
	return stem
}
