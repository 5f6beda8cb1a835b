// Package chunker implements grammar-driven shallow phrase chunking over
// POS-tagged sentences. A compiled grammar is scanned greedily left to right
// over each sentence; matched token spans become labeled chunks, and adjacent
// chunks whose labels are merge-compatible are combined.
package chunker

import (
	"strings"

	"github.com/feedbacklens/phrasekit/pkg/grammar"
)

// TaggedToken is one word of a sentence with its POS tag and lemma.
// Produced externally by a tagging capability; immutable once created.
type TaggedToken struct {
	Text  string
	Tag   string
	Lemma string
}

// TaggedSentence is an ordered sequence of tagged tokens.
type TaggedSentence []TaggedToken

// TaggedDocument is the tagged sentences of one comment.
type TaggedDocument []TaggedSentence

// Chunk is a labeled, contiguous span of tagged tokens within one sentence.
// Start and End are token offsets into the sentence (End exclusive); after
// merging they still increase monotonically and never overlap.
type Chunk struct {
	Label string
	Text  string
	Start int
	End   int
}

// Parser turns tagged sentences into chunk sequences using a compiled
// grammar. Parsing is a pure function of (sentence, grammar): the same input
// always yields the same chunks.
type Parser struct {
	g *grammar.Grammar
}

// NewParser wraps a compiled grammar.
func NewParser(g *grammar.Grammar) *Parser {
	return &Parser{g: g}
}

// ExtractPhrases chunks every sentence of a tagged document. With
// mergeInplace, adjacent merge-compatible chunks are combined before
// returning. An empty or untaggable sentence yields an empty chunk sequence.
func (p *Parser) ExtractPhrases(doc TaggedDocument, mergeInplace bool) [][]Chunk {
	out := make([][]Chunk, len(doc))
	for i, sent := range doc {
		chunks := p.chunkSentence(sent)
		if mergeInplace {
			chunks = p.mergeAdjacent(chunks)
		}
		out[i] = chunks
	}
	return out
}

// chunkSentence scans tokens left to right. At each position the rules are
// tried in grammar order; the first rule that matches consumes its tokens
// greedily and the scan resumes past them. Unmatched tokens are dropped:
// adjacency downstream is defined over the surviving chunk sequence,
// not raw token positions.
func (p *Parser) chunkSentence(sent TaggedSentence) []Chunk {
	var chunks []Chunk
	i := 0
	for i < len(sent) {
		matched := false
		for _, rule := range p.g.Rules {
			end, ok := matchRule(rule, sent, i)
			if !ok {
				continue
			}
			chunks = append(chunks, Chunk{
				Label: rule.Label,
				Text:  spanText(sent, i, end),
				Start: i,
				End:   end,
			})
			i = end
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return chunks
}

// matchRule matches a rule's elements at start, each element consuming
// tokens greedily with no backtracking. Returns the end offset (exclusive)
// and whether the rule matched at least one token.
func matchRule(rule grammar.Rule, sent TaggedSentence, start int) (int, bool) {
	i := start
	for _, el := range rule.Elements {
		switch el.Quant {
		case grammar.One:
			if i >= len(sent) || !el.Tag.MatchString(sent[i].Tag) {
				return 0, false
			}
			i++
		case grammar.ZeroOrOne:
			if i < len(sent) && el.Tag.MatchString(sent[i].Tag) {
				i++
			}
		case grammar.ZeroOrMore:
			for i < len(sent) && el.Tag.MatchString(sent[i].Tag) {
				i++
			}
		case grammar.OneOrMore:
			n := 0
			for i < len(sent) && el.Tag.MatchString(sent[i].Tag) {
				i++
				n++
			}
			if n == 0 {
				return 0, false
			}
		}
	}
	if i == start {
		return 0, false
	}
	return i, true
}

// mergeAdjacent combines neighboring chunks whose label pair is in the merge
// table. The pass is single and left to right: a freshly merged chunk is not
// re-checked against its new right neighbor. That is the defined behavior,
// not an oversight; recursive merging would be a policy change.
func (p *Parser) mergeAdjacent(chunks []Chunk) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	out := make([]Chunk, 0, len(chunks))
	i := 0
	for i < len(chunks) {
		if i+1 < len(chunks) {
			if label, ok := p.g.MergeResult(chunks[i].Label, chunks[i+1].Label); ok {
				out = append(out, Chunk{
					Label: label,
					Text:  chunks[i].Text + " " + chunks[i+1].Text,
					Start: chunks[i].Start,
					End:   chunks[i+1].End,
				})
				i += 2
				continue
			}
		}
		out = append(out, chunks[i])
		i++
	}
	return out
}

func spanText(sent TaggedSentence, start, end int) string {
	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte(' ')
		}
		b.WriteString(sent[i].Text)
	}
	return b.String()
}
