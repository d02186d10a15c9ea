package driver

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/johnrickE/compylr/grammar"
	spec "github.com/johnrickE/compylr/spec/grammar"
)

type testSemAct struct {
	gram   *spec.CompiledGrammar
	actLog []string
}

func (a *testSemAct) Shift(tok VToken) any {
	t := a.gram.ParsingTable.Terminals[tok.TerminalID()]
	a.actLog = append(a.actLog, fmt.Sprintf("shift/%v", t))
	return nil
}

func (a *testSemAct) Reduce(prodNum int, handle []any) any {
	lhsSym := a.gram.ParsingTable.LHSSymbols[prodNum]
	lhsText := a.gram.ParsingTable.NonTerminals[lhsSym]
	a.actLog = append(a.actLog, fmt.Sprintf("reduce/%v", lhsText))
	return nil
}

func (a *testSemAct) Accept(result any) {
	a.actLog = append(a.actLog, "accept")
}

func TestParserWithSemanticAction(t *testing.T) {
	tests := []struct {
		caption string
		declare func(b *grammar.GrammarBuilder)
		src     string
		actLog  []string
	}{
		{
			caption: "the driver calls `Shift`, `Reduce`, and `Accept` in bottom-up order",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("ws", grammar.Pattern(`[\u{0009}\u{0020}]+`), grammar.Skip())
				b.Terminal("semicolon", grammar.Pattern(`;`))
				b.Terminal("char", grammar.Pattern(`[a-z]`))
				b.Production("seq", "seq", "elem", "semicolon")
				b.Production("seq", "elem", "semicolon")
				b.Production("elem", "char", "char", "char")
				b.Start("seq")
			},
			src: `a b c; d e f;`,
			actLog: []string{
				"shift/char",
				"shift/char",
				"shift/char",
				"reduce/elem",
				"shift/semicolon",
				"reduce/seq",

				"shift/char",
				"shift/char",
				"shift/char",
				"reduce/elem",
				"shift/semicolon",
				"reduce/seq",

				"accept",
			},
		},
		{
			caption: "an empty alternative reduces without a preceding shift",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Terminal("bar")
				b.Production("s", "foo", "opt")
				b.Production("opt", "bar")
				b.Production("opt")
				b.Start("s")
			},
			src: `foo`,
			actLog: []string{
				"shift/foo",
				"reduce/opt",
				"reduce/s",

				"accept",
			},
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

			cg, _, err := grammar.Compile(g)
			if err != nil {
				t.Fatal(err)
			}

			toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			semAct := &testSemAct{
				gram: cg,
			}
			p, err := NewParser(toks, NewGrammar(cg), SemanticAction(semAct))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}

			if len(semAct.actLog) != len(tt.actLog) {
				t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
			}

			for i, e := range tt.actLog {
				if semAct.actLog[i] != e {
					t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
				}
			}
		})
	}
}

type calcActionSet struct {
	gram     *spec.CompiledGrammar
	result   int
	accepted bool
}

func (a *calcActionSet) Shift(tok VToken) any {
	if a.gram.ParsingTable.Terminals[tok.TerminalID()] == "int" {
		n, err := strconv.Atoi(string(tok.Lexeme()))
		if err != nil {
			return nil
		}
		return n
	}
	return string(tok.Lexeme())
}

func (a *calcActionSet) Reduce(prodNum int, handle []any) any {
	if len(handle) == 1 {
		return handle[0]
	}
	l := handle[0].(int)
	r := handle[2].(int)
	switch handle[1].(string) {
	case "+":
		return l + r
	case "*":
		return l * r
	}
	return nil
}

func (a *calcActionSet) Accept(result any) {
	a.result = result.(int)
	a.accepted = true
}

func TestParserWithSemanticValues(t *testing.T) {
	tests := []struct {
		src    string
		result int
	}{
		{
			src:    `2+3*4`,
			result: 14,
		},
		{
			src:    `2*3+4`,
			result: 10,
		},
		{
			src:    `1+2+3`,
			result: 6,
		},
		{
			src:    `42`,
			result: 42,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			b := grammar.NewGrammarBuilder("test")
			b.Terminal("int", grammar.Pattern(`[0-9]+`))
			b.Terminal("add", grammar.Pattern(`\+`))
			b.Terminal("mul", grammar.Pattern(`\*`))
			b.Production("expr", "expr", "add", "expr")
			b.Production("expr", "expr", "mul", "expr")
			b.Production("expr", "int")
			b.Start("expr")
			b.LeftAssoc("add")
			b.LeftAssoc("mul")
			g, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}

			cg, _, err := grammar.Compile(g)
			if err != nil {
				t.Fatal(err)
			}

			toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			semAct := &calcActionSet{
				gram: cg,
			}
			p, err := NewParser(toks, NewGrammar(cg), SemanticAction(semAct))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}

			if !semAct.accepted {
				t.Fatalf("the driver didn't call Accept")
			}
			if semAct.result != tt.result {
				t.Fatalf("unexpected result: want: %v, got: %v", tt.result, semAct.result)
			}
		})
	}
}
