package driver

import (
	"strings"
	"testing"

	"github.com/johnrickE/compylr/grammar"
)

func TestParserWithConflicts(t *testing.T) {
	tests := []struct {
		caption string
		declare func(b *grammar.GrammarBuilder)
		opts    []grammar.CompileOption
		src     string
		cst     *Node
	}{
		{
			caption: "when a shift/reduce conflict occurred, we prioritize the shift action",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Terminal("assign", grammar.Pattern(`=`))
				b.Production("expr", "expr", "assign", "expr")
				b.Production("expr", "id")
				b.Start("expr")
			},
			src: `foo=bar=baz`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					termNode("id", "foo"),
				),
				termNode("assign", "="),
				nonTermNode("expr",
					nonTermNode("expr",
						termNode("id", "bar"),
					),
					termNode("assign", "="),
					nonTermNode("expr",
						termNode("id", "baz"),
					),
				),
			),
		},
		{
			caption: "when a reduce/reduce conflict occurred, we prioritize the production declared earlier",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Production("s", "a")
				b.Production("s", "b")
				b.Production("a", "id")
				b.Production("b", "id")
				b.Start("s")
			},
			src: `foo`,
			cst: nonTermNode("s",
				nonTermNode("a",
					termNode("id", "foo"),
				),
			),
		},
		{
			caption: "a left-associative operator nests on the left",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Terminal("sub", grammar.Pattern(`-`))
				b.Production("expr", "expr", "sub", "expr")
				b.Production("expr", "id")
				b.Start("expr")
				b.LeftAssoc("sub")
			},
			src: `a-b-c`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					nonTermNode("expr",
						termNode("id", "a"),
					),
					termNode("sub", "-"),
					nonTermNode("expr",
						termNode("id", "b"),
					),
				),
				termNode("sub", "-"),
				nonTermNode("expr",
					termNode("id", "c"),
				),
			),
		},
		{
			caption: "a right-associative operator nests on the right",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Terminal("assign", grammar.Pattern(`=`))
				b.Production("expr", "expr", "assign", "expr")
				b.Production("expr", "id")
				b.Start("expr")
				b.RightAssoc("assign")
			},
			src: `a=b=c`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					termNode("id", "a"),
				),
				termNode("assign", "="),
				nonTermNode("expr",
					nonTermNode("expr",
						termNode("id", "b"),
					),
					termNode("assign", "="),
					nonTermNode("expr",
						termNode("id", "c"),
					),
				),
			),
		},
		{
			caption: "precedence levels declared later bind tighter",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Terminal("add", grammar.Pattern(`\+`))
				b.Terminal("mul", grammar.Pattern(`\*`))
				b.Production("expr", "expr", "add", "expr")
				b.Production("expr", "expr", "mul", "expr")
				b.Production("expr", "id")
				b.Start("expr")
				b.LeftAssoc("add")
				b.LeftAssoc("mul")
			},
			src: `a+b*c`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					termNode("id", "a"),
				),
				termNode("add", "+"),
				nonTermNode("expr",
					nonTermNode("expr",
						termNode("id", "b"),
					),
					termNode("mul", "*"),
					nonTermNode("expr",
						termNode("id", "c"),
					),
				),
			),
		},
		{
			caption: "terminals declared in one level share their precedence",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("id", grammar.Pattern(`[A-Za-z0-9_]+`))
				b.Terminal("add", grammar.Pattern(`\+`))
				b.Terminal("sub", grammar.Pattern(`-`))
				b.Production("expr", "expr", "add", "expr")
				b.Production("expr", "expr", "sub", "expr")
				b.Production("expr", "id")
				b.Start("expr")
				b.LeftAssoc("add", "sub")
			},
			src: `a-b+c`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					nonTermNode("expr",
						termNode("id", "a"),
					),
					termNode("sub", "-"),
					nonTermNode("expr",
						termNode("id", "b"),
					),
				),
				termNode("add", "+"),
				nonTermNode("expr",
					termNode("id", "c"),
				),
			),
		},
		{
			caption: "an else is attached to the nearest if under the shift preference",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("ws", grammar.Pattern(`[\u{0009}\u{0020}]+`), grammar.Skip())
				b.Terminal("if")
				b.Terminal("else")
				b.Terminal("atom", grammar.Pattern(`[a-z]+`))
				b.Production("stmt", "if", "stmt", "else", "stmt")
				b.Production("stmt", "if", "stmt")
				b.Production("stmt", "atom")
				b.Start("stmt")
			},
			src: `if if atom else atom`,
			cst: nonTermNode("stmt",
				termNode("if", "if"),
				nonTermNode("stmt",
					termNode("if", "if"),
					nonTermNode("stmt",
						termNode("atom", "atom"),
					),
					termNode("else", "else"),
					nonTermNode("stmt",
						termNode("atom", "atom"),
					),
				),
			),
		},
		{
			caption: "an else is attached to the outermost if under the reduce preference",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("ws", grammar.Pattern(`[\u{0009}\u{0020}]+`), grammar.Skip())
				b.Terminal("if")
				b.Terminal("else")
				b.Terminal("atom", grammar.Pattern(`[a-z]+`))
				b.Production("stmt", "if", "stmt", "else", "stmt")
				b.Production("stmt", "if", "stmt")
				b.Production("stmt", "atom")
				b.Start("stmt")
			},
			opts: []grammar.CompileOption{
				grammar.ConflictResolution(grammar.PolicyReducePreference),
			},
			src: `if if atom else atom`,
			cst: nonTermNode("stmt",
				termNode("if", "if"),
				nonTermNode("stmt",
					termNode("if", "if"),
					nonTermNode("stmt",
						termNode("atom", "atom"),
					),
				),
				termNode("else", "else"),
				nonTermNode("stmt",
					termNode("atom", "atom"),
				),
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := grammar.NewGrammarBuilder("test")
			tt.declare(b)
			g, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}

			cg, _, err := grammar.Compile(g, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}

			toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			gram := NewGrammar(cg)
			treeAct := NewSyntaxTreeActionSet(gram)
			p, err := NewParser(toks, gram, SemanticAction(treeAct))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}

			testTree(t, treeAct.Tree(), tt.cst)
		})
	}
}
