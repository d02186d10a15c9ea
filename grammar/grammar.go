package grammar

import (
	"fmt"
	"io"
	"sort"
	"strings"

	verr "github.com/johnrickE/compylr/error"
	"github.com/johnrickE/compylr/grammar/symbol"
	spec "github.com/johnrickE/compylr/spec/grammar"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

type assocType string

const (
	assocTypeNil   = assocType("")
	assocTypeLeft  = assocType("l")
	assocTypeRight = assocType("r")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc holds the precedence level and the associativity every
// terminal and production was assigned. Levels count up from precMin in
// declaration order, so a level declared later binds tighter.
type precAndAssoc struct {
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assocType

	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.SymbolNum) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.SymbolNum) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

// Warning points out a flaw that does not prevent table construction, like
// a non-terminal the start symbol can never reach. A build that succeeds
// still reports its warnings through Grammar.Warnings.
type Warning struct {
	Cause  error
	Symbol string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%v: %v", w.Cause, w.Symbol)
}

// Grammar is a complete, validated grammar. All fields are filled in by
// GrammarBuilder.Build and never change afterward.
type Grammar struct {
	name                 string
	lexSpec              *mlspec.LexSpec
	skipLexKinds         []mlspec.LexKindName
	terminalPatterns     map[symbol.Symbol]string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	symbolTable          *symbol.SymbolTable
	precAndAssoc         *precAndAssoc
	warnings             []*Warning
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) Warnings() []*Warning {
	return g.warnings
}

type terminalDecl struct {
	name    string
	pattern string
	skip    bool
}

type TerminalOption func(decl *terminalDecl)

// Pattern sets the regular expression the lexer matches for a terminal.
// A terminal without a pattern matches its own name literally.
func Pattern(pattern string) TerminalOption {
	return func(decl *terminalDecl) {
		decl.pattern = pattern
	}
}

// Skip marks a terminal the token stream discards, like whitespace. A skip
// terminal must not appear on the right-hand side of any production.
func Skip() TerminalOption {
	return func(decl *terminalDecl) {
		decl.skip = true
	}
}

type productionDecl struct {
	lhs string
	rhs []string
}

type precLevel struct {
	assoc     assocType
	terminals []string
}

// GrammarBuilder assembles a Grammar from declarations. The declaration
// order is significant: terminals and productions are numbered in the
// order they were declared, and that order decides how reduce/reduce
// conflicts resolve.
type GrammarBuilder struct {
	name        string
	terminals   []*terminalDecl
	productions []*productionDecl
	start       string
	precLevels  []*precLevel

	errs verr.GrammarErrors
}

func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name: name,
	}
}

func (b *GrammarBuilder) Terminal(name string, opts ...TerminalOption) {
	decl := &terminalDecl{
		name: name,
	}
	for _, opt := range opts {
		opt(decl)
	}
	b.terminals = append(b.terminals, decl)
}

func (b *GrammarBuilder) Production(lhs string, rhs ...string) {
	b.productions = append(b.productions, &productionDecl{
		lhs: lhs,
		rhs: rhs,
	})
}

// Start names the grammar's start symbol. The builder derives an augmented
// start symbol from it, so the symbol passed here never needs a dedicated
// single production.
func (b *GrammarBuilder) Start(name string) {
	b.start = name
}

// LeftAssoc declares one precedence level containing the given terminals,
// all left-associative. Levels declared later bind tighter.
func (b *GrammarBuilder) LeftAssoc(terminals ...string) {
	b.precLevels = append(b.precLevels, &precLevel{
		assoc:     assocTypeLeft,
		terminals: terminals,
	})
}

// RightAssoc declares one precedence level containing the given terminals,
// all right-associative. Levels declared later bind tighter.
func (b *GrammarBuilder) RightAssoc(terminals ...string) {
	b.precLevels = append(b.precLevels, &precLevel{
		assoc:     assocTypeRight,
		terminals: terminals,
	})
}

// Build validates all declarations and assembles a Grammar. It collects as
// many semantic errors as it can find before giving up, and the returned
// error lists them all.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if len(b.productions) == 0 {
		b.errs = append(b.errs, &verr.GrammarError{
			Cause: semErrNoProduction,
		})
		return nil, b.errs
	}
	if b.start == "" {
		b.errs = append(b.errs, &verr.GrammarError{
			Cause: semErrNoStart,
		})
		return nil, b.errs
	}

	symTabAndLexSpec, err := b.genSymbolTableAndLexSpec()
	if err != nil {
		return nil, err
	}
	if symTabAndLexSpec == nil && len(b.errs) > 0 {
		return nil, b.errs
	}

	prodsAndStart, err := b.genProductionSet(symTabAndLexSpec)
	if err != nil {
		return nil, err
	}
	if prodsAndStart == nil && len(b.errs) > 0 {
		return nil, b.errs
	}

	pa, err := b.genPrecAndAssoc(symTabAndLexSpec.symTab.Reader(), prodsAndStart.prods)
	if err != nil {
		return nil, err
	}
	if pa == nil && len(b.errs) > 0 {
		return nil, b.errs
	}

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	warnings := findGrammarFlaws(symTabAndLexSpec.symTab.Reader(), prodsAndStart.prods, prodsAndStart.augStartSym, symTabAndLexSpec.skipSyms)

	symTabAndLexSpec.lexSpec.Name = b.name

	return &Grammar{
		name:                 b.name,
		lexSpec:              symTabAndLexSpec.lexSpec,
		skipLexKinds:         symTabAndLexSpec.skip,
		terminalPatterns:     symTabAndLexSpec.patterns,
		productionSet:        prodsAndStart.prods,
		augmentedStartSymbol: prodsAndStart.augStartSym,
		symbolTable:          symTabAndLexSpec.symTab,
		precAndAssoc:         pa,
		warnings:             warnings,
	}, nil
}

type symbolTableAndLexSpec struct {
	symTab   *symbol.SymbolTable
	lexSpec  *mlspec.LexSpec
	patterns map[symbol.Symbol]string
	skip     []mlspec.LexKindName
	skipSyms map[string]struct{}
}

func (b *GrammarBuilder) genSymbolTableAndLexSpec() (*symbolTableAndLexSpec, error) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()

	entries := []*mlspec.LexEntry{}
	patterns := map[symbol.Symbol]string{}
	skipKinds := []mlspec.LexKindName{}
	skipSyms := map[string]struct{}{}
	declared := map[string]struct{}{}
	for _, decl := range b.terminals {
		if decl.name == "" {
			b.errs = append(b.errs, &verr.GrammarError{
				Cause: semErrEmptyName,
			})
			continue
		}
		if _, ok := declared[decl.name]; ok {
			b.errs = append(b.errs, &verr.GrammarError{
				Cause:  semErrDuplicateTerminal,
				Detail: decl.name,
			})
			continue
		}
		declared[decl.name] = struct{}{}

		sym, err := w.RegisterTerminalSymbol(decl.name)
		if err != nil {
			return nil, err
		}

		pattern := decl.pattern
		if pattern == "" {
			pattern = mlspec.EscapePattern(decl.name)
		}
		patterns[sym] = pattern

		if decl.skip {
			skipKinds = append(skipKinds, mlspec.LexKindName(decl.name))
			skipSyms[decl.name] = struct{}{}
		}

		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(decl.name),
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	return &symbolTableAndLexSpec{
		symTab: symTab,
		lexSpec: &mlspec.LexSpec{
			Entries: entries,
		},
		patterns: patterns,
		skip:     skipKinds,
		skipSyms: skipSyms,
	}, nil
}

type productionSetAndStart struct {
	prods       *productionSet
	augStartSym symbol.Symbol
}

func (b *GrammarBuilder) genProductionSet(symTabAndLexSpec *symbolTableAndLexSpec) (*productionSetAndStart, error) {
	w := symTabAndLexSpec.symTab.Writer()
	r := symTabAndLexSpec.symTab.Reader()

	// All left-hand sides are registered up front so that the right-hand
	// sides can refer to non-terminals in any declaration order.
	for _, decl := range b.productions {
		if decl.lhs == "" {
			b.errs = append(b.errs, &verr.GrammarError{
				Cause: semErrEmptyName,
			})
			continue
		}
		if sym, ok := r.ToSymbol(decl.lhs); ok && sym.IsTerminal() {
			b.errs = append(b.errs, &verr.GrammarError{
				Cause:  semErrDuplicateName,
				Detail: decl.lhs,
			})
			continue
		}
		if _, err := w.RegisterNonTerminalSymbol(decl.lhs); err != nil {
			return nil, err
		}
	}

	startSym, ok := r.ToSymbol(b.start)
	if !ok || !startSym.IsNonTerminal() {
		b.errs = append(b.errs, &verr.GrammarError{
			Cause:  semErrNoStartProduction,
			Detail: b.start,
		})
		return nil, nil
	}

	// The augmented start symbol borrows the start symbol's name with a
	// quote appended, extended until it collides with nothing.
	augStartText := b.start + "'"
	for {
		if _, ok := r.ToSymbol(augStartText); !ok {
			break
		}
		augStartText += "'"
	}
	augStartSym, err := w.RegisterStartSymbol(augStartText)
	if err != nil {
		return nil, err
	}

	prods := newProductionSet()

	augStartProd, err := newProduction(augStartSym, []symbol.Symbol{startSym})
	if err != nil {
		return nil, err
	}
	prods.append(augStartProd)

	for _, decl := range b.productions {
		lhsSym, ok := r.ToSymbol(decl.lhs)
		if !ok || !lhsSym.IsNonTerminal() {
			// The left-hand side failed registration and was reported there.
			continue
		}

		rhsSyms := make([]symbol.Symbol, 0, len(decl.rhs))
		resolved := true
		for _, text := range decl.rhs {
			// The augmented start symbol is already registered here, but no
			// right-hand side may refer to it.
			sym, ok := r.ToSymbol(text)
			if !ok || sym.IsStart() {
				b.errs = append(b.errs, &verr.GrammarError{
					Cause:  semErrUndefinedSym,
					Detail: text,
				})
				resolved = false
				continue
			}
			if _, skipped := symTabAndLexSpec.skipSyms[text]; skipped {
				b.errs = append(b.errs, &verr.GrammarError{
					Cause:  semErrTermCannotBeSkipped,
					Detail: text,
				})
				resolved = false
				continue
			}
			rhsSyms = append(rhsSyms, sym)
		}
		if !resolved {
			continue
		}

		prod, err := newProduction(lhsSym, rhsSyms)
		if err != nil {
			return nil, err
		}
		if _, exist := prods.findByID(prod.id); exist {
			b.errs = append(b.errs, &verr.GrammarError{
				Cause:  semErrDuplicateProduction,
				Detail: strings.TrimSpace(fmt.Sprintf("%v: %v", decl.lhs, strings.Join(decl.rhs, " "))),
			})
			continue
		}
		prods.append(prod)
	}

	return &productionSetAndStart{
		prods:       prods,
		augStartSym: augStartSym,
	}, nil
}

func (b *GrammarBuilder) genPrecAndAssoc(r *symbol.SymbolTableReader, prods *productionSet) (*precAndAssoc, error) {
	termPrec := map[symbol.SymbolNum]int{}
	termAssoc := map[symbol.SymbolNum]assocType{}
	precN := precMin
	for _, level := range b.precLevels {
		for _, name := range level.terminals {
			sym, ok := r.ToSymbol(name)
			if !ok || !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.GrammarError{
					Cause:  semErrUndefinedSym,
					Detail: name,
				})
				continue
			}
			if _, assigned := termPrec[sym.Num()]; assigned {
				b.errs = append(b.errs, &verr.GrammarError{
					Cause:  semErrDuplicateAssoc,
					Detail: name,
				})
				continue
			}
			termPrec[sym.Num()] = precN
			termAssoc[sym.Num()] = level.assoc
		}
		precN++
	}

	// A production inherits precedence and associativity from the last
	// terminal symbol on its right-hand side.
	prodPrec := map[productionNum]int{}
	prodAssoc := map[productionNum]assocType{}
	for _, prod := range prods.getAllProductions() {
		for i := len(prod.rhs) - 1; i >= 0; i-- {
			sym := prod.rhs[i]
			if !sym.IsTerminal() {
				continue
			}
			if prec, ok := termPrec[sym.Num()]; ok {
				prodPrec[prod.num] = prec
				prodAssoc[prod.num] = termAssoc[sym.Num()]
			}
			break
		}
	}

	return &precAndAssoc{
		termPrec:  termPrec,
		termAssoc: termAssoc,
		prodPrec:  prodPrec,
		prodAssoc: prodAssoc,
	}, nil
}

// findGrammarFlaws detects symbols that make a grammar suspicious without
// making it unusable: non-terminals the start symbol never reaches,
// non-terminals that derive no terminal string, and terminals no production
// uses. Skip terminals are exempt from the unused check since the lexer
// consumes them.
func findGrammarFlaws(r *symbol.SymbolTableReader, prods *productionSet, augStartSym symbol.Symbol, skipSyms map[string]struct{}) []*Warning {
	reachable := map[symbol.Symbol]struct{}{
		augStartSym: {},
	}
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			if _, ok := reachable[prod.lhs]; !ok {
				continue
			}
			for _, sym := range prod.rhs {
				if _, ok := reachable[sym]; ok {
					continue
				}
				reachable[sym] = struct{}{}
				more = true
			}
		}
		if !more {
			break
		}
	}

	realizable := map[symbol.Symbol]struct{}{}
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			if _, ok := realizable[prod.lhs]; ok {
				continue
			}
			all := true
			for _, sym := range prod.rhs {
				if sym.IsTerminal() {
					continue
				}
				if _, ok := realizable[sym]; !ok {
					all = false
					break
				}
			}
			if all {
				realizable[prod.lhs] = struct{}{}
				more = true
			}
		}
		if !more {
			break
		}
	}

	var warnings []*Warning
	for _, sym := range r.NonTerminalSymbols() {
		if sym.IsStart() {
			continue
		}
		text, _ := r.ToText(sym)
		if _, ok := reachable[sym]; !ok {
			warnings = append(warnings, &Warning{
				Cause:  semErrUnreachableSym,
				Symbol: text,
			})
		}
		if _, ok := realizable[sym]; !ok {
			warnings = append(warnings, &Warning{
				Cause:  semErrUnrealizableSym,
				Symbol: text,
			})
		}
	}
	for _, sym := range r.TerminalSymbols() {
		if sym.IsEOF() {
			continue
		}
		text, _ := r.ToText(sym)
		if _, ok := skipSyms[text]; ok {
			continue
		}
		if _, ok := reachable[sym]; !ok {
			warnings = append(warnings, &Warning{
				Cause:  semErrUnusedTerminal,
				Symbol: text,
			})
		}
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Symbol != warnings[j].Symbol {
			return warnings[i].Symbol < warnings[j].Symbol
		}
		return warnings[i].Cause.Error() < warnings[j].Cause.Error()
	})

	return warnings
}

type compileConfig struct {
	isReportingEnabled bool
	conflictPolicy     ConflictResolutionPolicy
}

type CompileOption func(config *compileConfig)

// EnableReporting makes Compile also return a Report describing every
// state, action, and conflict of the generated automaton.
func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// ConflictResolution selects the fallback policy for shift/reduce
// conflicts that declared precedence leaves undecided. The default prefers
// the shift.
func ConflictResolution(policy ConflictResolutionPolicy) CompileOption {
	return func(config *compileConfig) {
		config.conflictPolicy = policy
	}
}

func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	lexSpec, err, cErrs := mlcompiler.Compile(gram.lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, nil, fmt.Errorf(b.String())
		}
		return nil, nil, err
	}

	symTab := gram.symbolTable.Reader()

	kind2Term := make([]int, len(lexSpec.KindNames))
	term2Kind := make([]int, symTab.TerminalNum().Int())
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Term[mlspec.LexKindIDNil] = symbol.SymbolNil.Num().Int()
			term2Kind[symbol.SymbolNil.Num()] = mlspec.LexKindIDNil.Int()
			continue
		}

		sym, ok := symTab.ToSymbol(k.String())
		if !ok {
			return nil, nil, fmt.Errorf("terminal symbol '%v' was not found in a symbol table", k)
		}
		kind2Term[i] = sym.Num().Int()
		term2Kind[sym.Num()] = i

		for _, sk := range gram.skipLexKinds {
			if k != sk {
				continue
			}
			skip[i] = 1
			break
		}
	}

	terms, err := symTab.TerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	nonTerms, err := symTab.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}

	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, nil, err
	}

	automaton, err := genLR1Automaton(gram.productionSet, gram.augmentedStartSymbol, firstSet)
	if err != nil {
		return nil, nil, err
	}

	var tab *ParsingTable
	var report *spec.Report
	{
		b := &lrTableBuilder{
			automaton:    automaton,
			prods:        gram.productionSet,
			termCount:    len(terms),
			nonTermCount: len(nonTerms),
			symTab:       symTab,
			precAndAssoc: gram.precAndAssoc,
			policy:       config.conflictPolicy,
		}
		tab, err = b.build()
		if err != nil {
			return nil, nil, err
		}

		if config.isReportingEnabled {
			report, err = b.genReport(tab, gram)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	lhsSyms := make([]int, len(gram.productionSet.getAllProductions())+1)
	altSymCounts := make([]int, len(gram.productionSet.getAllProductions())+1)
	for _, p := range gram.productionSet.getAllProductions() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		LexicalSpecification: &spec.LexicalSpecification{
			Lexer: "maleeni",
			Maleeni: &spec.Maleeni{
				Spec:           lexSpec,
				KindToTerminal: kind2Term,
				TerminalToKind: term2Kind,
				Skip:           skip,
			},
		},
		ParsingTable: &spec.ParsingTable{
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               terms,
			TerminalCount:           tab.terminalCount,
			NonTerminals:            nonTerms,
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			ExpectedTerminals:       tab.expectedTerminals,
		},
	}, report, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
