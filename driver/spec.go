package driver

import spec "github.com/johnrickE/compylr/spec/grammar"

// Grammar is the parser's view of a compiled grammar. All methods are
// simple table lookups.
type Grammar interface {
	// InitialState returns the state the parser starts in.
	InitialState() int

	// StartProduction returns the number of the augmented start production.
	// A reduce action by it accepts the input.
	StartProduction() int

	// Action returns the ACTION table entry for a state and a terminal.
	// 0 means no entry, a negative value n means a shift to state -n, and a
	// positive value n means a reduce by production n.
	Action(state int, terminal int) int

	// GoTo returns the GOTO table entry for a state and a non-terminal.
	// 0 means no entry.
	GoTo(state int, lhs int) int

	// LHS returns the left-hand side symbol of a production.
	LHS(prod int) int

	// AlternativeSymbolCount returns the right-hand side length of a
	// production.
	AlternativeSymbolCount(prod int) int

	TerminalCount() int

	// ExpectedTerminals returns the terminals a state has ACTION entries
	// for, in ascending order.
	ExpectedTerminals(state int) []int

	// EOF returns the terminal number of the EOF marker.
	EOF() int

	Terminal(terminal int) string

	NonTerminal(nonTerminal int) string
}

var _ Grammar = &grammarImpl{}

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.ParsingTable.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.ParsingTable.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	return g.g.ParsingTable.Action[state*g.g.ParsingTable.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	return g.g.ParsingTable.GoTo[state*g.g.ParsingTable.NonTerminalCount+lhs]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.ParsingTable.LHSSymbols[prod]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.ParsingTable.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.ParsingTable.TerminalCount
}

func (g *grammarImpl) ExpectedTerminals(state int) []int {
	return g.g.ParsingTable.ExpectedTerminals[state]
}

func (g *grammarImpl) EOF() int {
	return g.g.ParsingTable.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.ParsingTable.Terminals[terminal]
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.ParsingTable.NonTerminals[nonTerminal]
}
