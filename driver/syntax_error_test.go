package driver

import (
	"sort"
	"strings"
	"testing"

	"github.com/johnrickE/compylr/grammar"
)

func TestParserWithSyntaxErrors(t *testing.T) {
	tests := []struct {
		caption  string
		declare  func(b *grammar.GrammarBuilder)
		src      string
		cause    string
		eof      bool
		expected []string
	}{
		{
			caption: "the parser reports an expected lookahead symbol",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Production("s", "foo")
				b.Start("s")
			},
			src:   `bar`,
			cause: `bar`,
			expected: []string{
				"foo",
			},
		},
		{
			caption: "the parser reports all expected lookahead symbols",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Terminal("bar")
				b.Production("s", "foo")
				b.Production("s", "bar")
				b.Start("s")
			},
			src:   `baz`,
			cause: `baz`,
			expected: []string{
				"foo",
				"bar",
			},
		},
		{
			caption: "the parser may report the EOF as an expected lookahead symbol",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Production("s", "foo")
				b.Start("s")
			},
			src:   `foobar`,
			cause: `bar`,
			expected: []string{
				"<eof>",
			},
		},
		{
			caption: "the parser may report the EOF and others as expected lookahead symbols",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Production("s", "foo")
				b.Production("s")
				b.Start("s")
			},
			src:   `bar`,
			cause: `bar`,
			expected: []string{
				"foo",
				"<eof>",
			},
		},
		{
			caption: "the parser reports an error at a premature EOF",
			declare: func(b *grammar.GrammarBuilder) {
				b.Terminal("foo")
				b.Terminal("bar")
				b.Production("s", "foo", "bar")
				b.Start("s")
			},
			src: `foo`,
			eof: true,
			expected: []string{
				"bar",
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

			p, err := NewParser(toks, NewGrammar(cg))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Parse()
			if err == nil {
				t.Fatalf("an expected syntax error didn't occur")
			}
			synErr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.SyntaxError() != synErr {
				t.Fatalf("unexpected error of SyntaxError; want: %v, got: %v", synErr, p.SyntaxError())
			}

			if tt.eof {
				if !synErr.Token.EOF() {
					t.Fatalf("unexpected token: want: the EOF, got: %v", string(synErr.Token.Lexeme()))
				}
			} else {
				if synErr.Token.EOF() {
					t.Fatalf("unexpected token: want: %v, got: the EOF", tt.cause)
				}
				if string(synErr.Token.Lexeme()) != tt.cause {
					t.Fatalf("unexpected lexeme: want: %v, got: %v", tt.cause, string(synErr.Token.Lexeme()))
				}
			}

			if len(synErr.ExpectedTerminals) != len(tt.expected) {
				t.Fatalf("unexpected lookahead symbols: want: %v, got: %v", tt.expected, synErr.ExpectedTerminals)
			}
			sort.Slice(tt.expected, func(i, j int) bool {
				return tt.expected[i] < tt.expected[j]
			})
			sort.Slice(synErr.ExpectedTerminals, func(i, j int) bool {
				return synErr.ExpectedTerminals[i] < synErr.ExpectedTerminals[j]
			})
			for i, e := range tt.expected {
				if synErr.ExpectedTerminals[i] != e {
					t.Errorf("unexpected lookahead symbol: want: %v, got: %v", e, synErr.ExpectedTerminals[i])
				}
			}
		})
	}
}

func TestParserWithSyntaxErrorPositions(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		row     int
		col     int
	}{
		{
			caption: "a row and a column are counted from zero",
			src:     `foo !`,
			row:     0,
			col:     4,
		},
		{
			caption: "a row advances at a line feed",
			src:     "foo\n  !",
			row:     1,
			col:     2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := grammar.NewGrammarBuilder("test")
			b.Terminal("ws", grammar.Pattern(`[\u{0009}\u{000A}\u{0020}]+`), grammar.Skip())
			b.Terminal("foo")
			b.Production("s", "foo")
			b.Start("s")
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

			p, err := NewParser(toks, NewGrammar(cg))
			if err != nil {
				t.Fatal(err)
			}

			err = p.Parse()
			if err == nil {
				t.Fatalf("an expected syntax error didn't occur")
			}
			synErr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("unexpected error: %v", err)
			}

			if !synErr.Token.Invalid() {
				t.Fatalf("unexpected token: want: an invalid token, got: %v", string(synErr.Token.Lexeme()))
			}
			if synErr.Row != tt.row || synErr.Col != tt.col {
				t.Errorf("unexpected position: want: (%v, %v), got: (%v, %v)", tt.row, tt.col, synErr.Row, synErr.Col)
			}
		})
	}
}
