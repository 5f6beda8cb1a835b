// Package grammar loads the declarative chunk grammar: ordered phrase rules
// (patterns over POS tags) plus the merge-compatibility table for adjacent
// chunks. The grammar is data, not code, so variants can be tested in
// isolation.
package grammar

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Quantifier controls how many tokens a rule element may consume.
type Quantifier int

const (
	One Quantifier = iota
	ZeroOrOne
	ZeroOrMore
	OneOrMore
)

// Element is one slot of a phrase rule: a regexp over POS tags plus a
// quantifier. Matching is greedy and does not backtrack.
type Element struct {
	Tag   *regexp.Regexp
	Quant Quantifier
}

// Rule maps a tag pattern to a chunk label. Rules are tried in file order;
// the first rule that matches at a position wins.
type Rule struct {
	Label    string
	Elements []Element
}

// LabelPair keys the merge table by the labels of two adjacent chunks.
type LabelPair struct {
	Left  string
	Right string
}

// Grammar is a compiled ruleset ready for parsing.
type Grammar struct {
	Rules []Rule

	// Merges maps adjacent label pairs to the merged chunk label.
	Merges map[LabelPair]string
}

// grammarFile is the participle AST for the grammar DSL.
type grammarFile struct {
	Statements []*statement `parser:"@@*"`
}

type statement struct {
	Merge *mergeStmt `parser:"  @@"`
	Rule  *ruleStmt  `parser:"| @@"`
}

type ruleStmt struct {
	Label    string     `parser:"@Ident ':'"`
	Elements []*element `parser:"@@+"`
}

type element struct {
	Tag   string  `parser:"@Tag"`
	Quant *string `parser:"@Quant?"`
}

type mergeStmt struct {
	Left   string `parser:"'merge' @Ident"`
	Right  string `parser:"'+' @Ident"`
	Result string `parser:"'->' @Ident"`
}

var grammarLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Tag", Pattern: `<[^<>\s]+>`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Quant", Pattern: `[?*+]`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var grammarParser = participle.MustBuild[grammarFile](
	participle.Lexer(grammarLexer),
	participle.Elide("Whitespace", "Comment"),
)

// Default is the grammar shipped with phrasekit. It produces the closed
// label set consumed by the mention classifier: noun, verb, prep_noun and,
// through merging, noun_verb.
const Default = `
# phrase rules, tried in order
verb:      <VB.*> <RB.*>*
prep_noun: <IN> <DT>? <JJ.*>* <NN.*>+
noun:      <DT>? <JJ.*>* <NN.*>+
noun:      <PRP>

# adjacent-chunk merges
merge noun + noun -> noun
merge verb + verb -> verb
merge noun + verb -> noun_verb
`

// Parse compiles a grammar from DSL source. Any syntax error or invalid tag
// regexp is a configuration error; no partial grammar is returned.
func Parse(src string) (*Grammar, error) {
	file, err := grammarParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}

	g := &Grammar{Merges: make(map[LabelPair]string)}
	for _, st := range file.Statements {
		switch {
		case st.Rule != nil:
			rule, err := compileRule(st.Rule)
			if err != nil {
				return nil, err
			}
			g.Rules = append(g.Rules, rule)
		case st.Merge != nil:
			pair := LabelPair{Left: st.Merge.Left, Right: st.Merge.Right}
			if prev, dup := g.Merges[pair]; dup {
				return nil, fmt.Errorf("grammar: duplicate merge %s + %s (-> %s and %s)",
					pair.Left, pair.Right, prev, st.Merge.Result)
			}
			g.Merges[pair] = st.Merge.Result
		}
	}

	if len(g.Rules) == 0 {
		return nil, fmt.Errorf("grammar: no phrase rules defined")
	}
	return g, nil
}

// Load reads and compiles a grammar file. A missing or unparsable file is a
// fatal configuration error identifying the artifact.
func Load(path string) (*Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grammar file %s: %w", path, err)
	}
	g, err := Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("grammar file %s: %w", path, err)
	}
	return g, nil
}

// MustDefault compiles the embedded default grammar.
func MustDefault() *Grammar {
	g, err := Parse(Default)
	if err != nil {
		panic(err)
	}
	return g
}

// MergeResult looks up the merged label for two adjacent chunk labels.
func (g *Grammar) MergeResult(left, right string) (string, bool) {
	res, ok := g.Merges[LabelPair{Left: left, Right: right}]
	return res, ok
}

func compileRule(rs *ruleStmt) (Rule, error) {
	rule := Rule{Label: rs.Label}
	for _, el := range rs.Elements {
		pat := strings.TrimSuffix(strings.TrimPrefix(el.Tag, "<"), ">")
		re, err := regexp.Compile("^(?:" + pat + ")$")
		if err != nil {
			return Rule{}, fmt.Errorf("grammar: rule %s: bad tag pattern %q: %w", rs.Label, pat, err)
		}

		quant := One
		if el.Quant != nil {
			switch *el.Quant {
			case "?":
				quant = ZeroOrOne
			case "*":
				quant = ZeroOrMore
			case "+":
				quant = OneOrMore
			}
		}
		rule.Elements = append(rule.Elements, Element{Tag: re, Quant: quant})
	}
	return rule, nil
}
