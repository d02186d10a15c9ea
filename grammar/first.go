package grammar

import (
	"fmt"
	"sort"

	"github.com/johnrickE/compylr/grammar/symbol"
)

// firstEntry is FIRST of one symbol or symbol sequence. The empty flag
// stands in for the empty-string marker, so no epsilon pseudo-symbol ever
// leaks into items or tables.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

// find returns FIRST of the RHS tail of prod starting at head.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	if prod.rhsLen <= head {
		entry := newFirstEntry()
		entry.addEmpty()
		return entry, nil
	}
	return fst.findBySequence(prod.rhs[head:])
}

// findBySequence returns FIRST of an arbitrary symbol sequence. The entry's
// empty flag is set when every symbol of the sequence may derive the empty
// string.
func (fst *firstSet) findBySequence(seq []symbol.Symbol) (*firstEntry, error) {
	entry := newFirstEntry()
	for _, sym := range seq {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

// firstOfSequence returns FIRST(seq trailing) as a sorted terminal list:
// FIRST of the sequence, with the trailing lookahead joining the result when
// the whole sequence may derive the empty string. This is the follow-of-dot
// operation the LR(1) closure applies to [A -> alpha . B beta, a] with
// seq = beta and trailing = a.
func (fst *firstSet) firstOfSequence(seq []symbol.Symbol, trailing symbol.Symbol) ([]symbol.Symbol, error) {
	entry, err := fst.findBySequence(seq)
	if err != nil {
		return nil, err
	}
	syms := make([]symbol.Symbol, 0, len(entry.symbols)+1)
	for sym := range entry.symbols {
		syms = append(syms, sym)
	}
	if entry.empty && !trailing.IsNil() {
		if _, ok := entry.symbols[trailing]; !ok {
			syms = append(syms, trailing)
		}
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

type firstComContext struct {
	first *firstSet
}

func newFirstComContext(prods *productionSet) *firstComContext {
	return &firstComContext{
		first: newFirstSet(prods),
	}
}

// genFirstSet computes FIRST of every non-terminal by fixpoint iteration
// over all productions. The fixpoint is monotone over a finite set of
// terminals, so it always terminates; there is no recursion here even for
// deeply nested or cyclic non-terminal dependencies.
func genFirstSet(prods *productionSet) (*firstSet, error) {
	cc := newFirstComContext(prods)
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			e := cc.first.findBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(cc, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	return cc.first, nil
}

// genProdFirstEntry folds one production into FIRST of its LHS. The change
// flag accumulates over the whole RHS walk; merges from nullable prefix
// symbols count even when the walk ends at addEmpty.
func genProdFirstEntry(cc *firstComContext, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			if acc.add(sym) {
				changed = true
			}
			return changed, nil
		}

		e := cc.first.findBySymbol(sym)
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	if acc.addEmpty() {
		changed = true
	}
	return changed, nil
}
