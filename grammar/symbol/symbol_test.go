package symbol

import "testing"

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterStartSymbol("stmt'")
	_, _ = w.RegisterNonTerminalSymbol("stmt")
	_, _ = w.RegisterNonTerminalSymbol("expr")
	_, _ = w.RegisterTerminalSymbol("kw_if")
	_, _ = w.RegisterTerminalSymbol("kw_then")
	_, _ = w.RegisterTerminalSymbol("kw_else")
	_, _ = w.RegisterTerminalSymbol("ident")

	nonTermTexts := []string{
		"", // Nil
		"stmt'",
		"stmt",
		"expr",
	}

	termTexts := []string{
		"",            // Nil
		symbolNameEOF, // EOF
		"kw_if",
		"kw_then",
		"kw_else",
		"ident",
	}

	tests := []struct {
		text          string
		isNil         bool
		isStart       bool
		isEOF         bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{
			text:          "stmt'",
			isStart:       true,
			isNonTerminal: true,
		},
		{
			text:          "stmt",
			isNonTerminal: true,
		},
		{
			text:          "expr",
			isNonTerminal: true,
		},
		{
			text:       "kw_if",
			isTerminal: true,
		},
		{
			text:       "kw_then",
			isTerminal: true,
		},
		{
			text:       "kw_else",
			isTerminal: true,
		},
		{
			text:       "ident",
			isTerminal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := tab.Reader()
			sym, ok := r.ToSymbol(tt.text)
			if !ok {
				t.Fatalf("symbol was not found")
			}
			testSymbolProperty(t, sym, tt.isNil, tt.isStart, tt.isEOF, tt.isNonTerminal, tt.isTerminal)
			text, ok := r.ToText(sym)
			if !ok {
				t.Fatalf("text was not found")
			}
			if text != tt.text {
				t.Fatalf("unexpected text representation; want: %v, got: %v", tt.text, text)
			}
		})
	}

	t.Run("EOF", func(t *testing.T) {
		testSymbolProperty(t, SymbolEOF, false, false, true, false, true)
	})

	t.Run("Nil", func(t *testing.T) {
		testSymbolProperty(t, SymbolNil, true, false, false, false, false)
	})

	t.Run("texts of non-terminals", func(t *testing.T) {
		r := tab.Reader()
		ts, err := r.NonTerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		if len(ts) != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v (%#v), got: %v (%#v)", len(nonTermTexts), nonTermTexts, len(ts), ts)
		}
		for i, text := range ts {
			if text != nonTermTexts[i] {
				t.Fatalf("unexpected non-terminal; want: %v, got: %v", nonTermTexts[i], text)
			}
		}
		if r.NonTerminalNum().Int() != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal number bound; want: %v, got: %v", len(nonTermTexts), r.NonTerminalNum().Int())
		}
	})

	t.Run("texts of terminals", func(t *testing.T) {
		r := tab.Reader()
		ts, err := r.TerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		if len(ts) != len(termTexts) {
			t.Fatalf("unexpected terminal count; want: %v (%#v), got: %v (%#v)", len(termTexts), termTexts, len(ts), ts)
		}
		for i, text := range ts {
			if text != termTexts[i] {
				t.Fatalf("unexpected terminal; want: %v, got: %v", termTexts[i], text)
			}
		}
		if r.TerminalNum().Int() != len(termTexts) {
			t.Fatalf("unexpected terminal number bound; want: %v, got: %v", len(termTexts), r.TerminalNum().Int())
		}
	})

	t.Run("kinds", func(t *testing.T) {
		r := tab.Reader()
		stmt, _ := r.ToSymbol("stmt")
		if stmt.Kind() != KindNonTerminal {
			t.Fatalf("unexpected kind; want: %v, got: %v", KindNonTerminal, stmt.Kind())
		}
		ident, _ := r.ToSymbol("ident")
		if ident.Kind() != KindTerminal {
			t.Fatalf("unexpected kind; want: %v, got: %v", KindTerminal, ident.Kind())
		}
	})
}

func testSymbolProperty(t *testing.T, sym Symbol, isNil, isStart, isEOF, isNonTerminal, isTerminal bool) {
	t.Helper()

	if v := sym.IsNil(); v != isNil {
		t.Fatalf("isNil property is mismatched; want: %v, got: %v", isNil, v)
	}
	if v := sym.IsStart(); v != isStart {
		t.Fatalf("isStart property is mismatched; want: %v, got: %v", isStart, v)
	}
	if v := sym.IsEOF(); v != isEOF {
		t.Fatalf("isEOF property is mismatched; want: %v, got: %v", isEOF, v)
	}
	if v := sym.IsNonTerminal(); v != isNonTerminal {
		t.Fatalf("isNonTerminal property is mismatched; want: %v, got: %v", isNonTerminal, v)
	}
	if v := sym.IsTerminal(); v != isTerminal {
		t.Fatalf("isTerminal property is mismatched; want: %v, got: %v", isTerminal, v)
	}
}
