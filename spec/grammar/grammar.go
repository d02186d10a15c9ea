package grammar

import mlspec "github.com/nihei9/maleeni/spec"

// GrammarDef is the JSON form of a grammar definition. The compile command
// reads one and feeds it to the grammar builder declaration by declaration,
// in the order the arrays list them.
type GrammarDef struct {
	Name        string           `json:"name"`
	Start       string           `json:"start"`
	Terminals   []*TerminalDef   `json:"terminals"`
	Productions []*ProductionDef `json:"productions"`
	Precedence  []*PrecedenceDef `json:"precedence,omitempty"`
}

type TerminalDef struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern,omitempty"`
	Skip    bool   `json:"skip,omitempty"`
}

type ProductionDef struct {
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`
}

// PrecedenceDef declares one precedence level. Levels listed later bind
// tighter. Assoc is either "left" or "right".
type PrecedenceDef struct {
	Assoc     string   `json:"assoc"`
	Terminals []string `json:"terminals"`
}

// CompiledGrammar is the self-contained artifact the parse command and the
// driver package load. It carries the compiled lexical specification and
// the LR parsing tables.
type CompiledGrammar struct {
	Name                 string                `json:"name"`
	LexicalSpecification *LexicalSpecification `json:"lexical_specification"`
	ParsingTable         *ParsingTable         `json:"parsing_table"`
}

type LexicalSpecification struct {
	Lexer   string   `json:"lexer"`
	Maleeni *Maleeni `json:"maleeni"`
}

type Maleeni struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
	TerminalToKind []int                   `json:"terminal_to_kind"`
	Skip           []int                   `json:"skip"`
}

type ParsingTable struct {
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	ExpectedTerminals       [][]int  `json:"expected_terminals"`
}
