package grammar

import (
	"fmt"
	"sort"

	"github.com/johnrickE/compylr/grammar/symbol"
)

// lr1Automaton is the canonical LR(1) collection: every reachable closed
// item set exactly once, keyed by content id, with discovery-order state
// numbers. Rebuilding it from the same grammar reproduces the same ids,
// numbers, and transitions because every loop below runs in a fixed order:
// productions in declaration order, symbols and look-aheads in ascending
// symbol order.
type lr1Automaton struct {
	initialState itemSetID
	states       map[itemSetID]*lrState
}

// stateList returns the states in state-number order.
func (a *lr1Automaton) stateList() []*lrState {
	states := make([]*lrState, 0, len(a.states))
	for _, state := range a.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].num < states[j].num
	})
	return states
}

func genLR1Automaton(prods *productionSet, startSym symbol.Symbol, fst *firstSet) (*lr1Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}

	automaton := &lr1Automaton{
		states: map[itemSetID]*lrState{},
	}

	currentState := stateNumInitial
	knownSets := map[itemSetID]struct{}{}
	uncheckedSets := []*itemSet{}

	// Generate the initial state: the closure of {[S' → ・S, <eof>]}.
	{
		startProds, _ := prods.findByLHS(startSym)
		initialItem, err := newLR1Item(startProds[0], 0, symbol.SymbolEOF)
		if err != nil {
			return nil, err
		}

		items, err := genLR1Closure([]*lrItem{initialItem}, prods, fst)
		if err != nil {
			return nil, err
		}
		set, err := newItemSet(items)
		if err != nil {
			return nil, err
		}

		automaton.initialState = set.id
		knownSets[set.id] = struct{}{}
		uncheckedSets = append(uncheckedSets, set)
	}

	// The item universe (production x dot x look-ahead) is finite, so the
	// number of distinct item sets is finite and this loop terminates.
	for len(uncheckedSets) > 0 {
		nextUncheckedSets := []*itemSet{}
		for _, set := range uncheckedSets {
			state, neighbours, err := genStateAndNeighbourSets(set, prods, fst)
			if err != nil {
				return nil, err
			}
			state.num = currentState
			currentState = currentState.next()

			automaton.states[state.id] = state

			for _, n := range neighbours {
				if _, known := knownSets[n.id]; known {
					continue
				}
				knownSets[n.id] = struct{}{}
				nextUncheckedSets = append(nextUncheckedSets, n)
			}
		}
		uncheckedSets = nextUncheckedSets
	}

	return automaton, nil
}

func genStateAndNeighbourSets(set *itemSet, prods *productionSet, fst *firstSet) (*lrState, []*itemSet, error) {
	neighbours, err := genNeighbourSets(set.items, prods, fst)
	if err != nil {
		return nil, nil, err
	}

	next := map[symbol.Symbol]itemSetID{}
	sets := []*itemSet{}
	for _, n := range neighbours {
		next[n.symbol] = n.set.id
		sets = append(sets, n.set)
	}

	// set.items is sorted by item id, so these sub-lists are too.
	var reducible []*lrItem
	var kernelItems []*lrItem
	for _, item := range set.items {
		if item.kernel {
			kernelItems = append(kernelItems, item)
		}
		if item.reducible {
			reducible = append(reducible, item)
		}
	}

	return &lrState{
		itemSet:   set,
		next:      next,
		reducible: reducible,
		kernel:    kernelItems,
	}, sets, nil
}

// genLR1Closure closes a set of seed items: for every item
// [A → α・B β, a] with a non-terminal B, every production B → γ gains an
// item [B → ・γ, b] for every terminal b in FIRST(β a). A worklist drives
// the fixpoint; there is no recursion, so deep or cyclic non-terminal
// chains cannot overflow the stack.
func genLR1Closure(seeds []*lrItem, prods *productionSet, fst *firstSet) ([]*lrItem, error) {
	items := []*lrItem{}
	knownItems := map[lrItemID]struct{}{}
	uncheckedItems := []*lrItem{}
	for _, item := range seeds {
		items = append(items, item)
		knownItems[item.id] = struct{}{}
		uncheckedItems = append(uncheckedItems, item)
	}
	for len(uncheckedItems) > 0 {
		nextUncheckedItems := []*lrItem{}
		for _, item := range uncheckedItems {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			prod, ok := prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("a production was not found: %v", item.prod)
			}

			las, err := fst.firstOfSequence(prod.rhs[item.dot+1:], item.lookAhead)
			if err != nil {
				return nil, err
			}

			ps, _ := prods.findByLHS(item.dottedSymbol)
			for _, p := range ps {
				for _, la := range las {
					newItem, err := newLR1Item(p, 0, la)
					if err != nil {
						return nil, err
					}
					if _, exist := knownItems[newItem.id]; exist {
						continue
					}
					items = append(items, newItem)
					knownItems[newItem.id] = struct{}{}
					nextUncheckedItems = append(nextUncheckedItems, newItem)
				}
			}
		}
		uncheckedItems = nextUncheckedItems
	}

	return items, nil
}

type neighbourSet struct {
	symbol symbol.Symbol
	set    *itemSet
}

// genNeighbourSets computes goto(items, X) for every symbol X that appears
// after a dot: the advanced kernel items keep their look-aheads, and each
// group is closed before it gets its content id, because state identity is
// the whole closed set.
func genNeighbourSets(items []*lrItem, prods *productionSet, fst *firstSet) ([]*neighbourSet, error) {
	kItemMap := map[symbol.Symbol][]*lrItem{}
	for _, item := range items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("a production was not found: %v", item.prod)
		}
		kItem, err := newLR1Item(prod, item.dot+1, item.lookAhead)
		if err != nil {
			return nil, err
		}
		kItemMap[item.dottedSymbol] = append(kItemMap[item.dottedSymbol], kItem)
	}

	nextSyms := []symbol.Symbol{}
	for sym := range kItemMap {
		nextSyms = append(nextSyms, sym)
	}
	sort.Slice(nextSyms, func(i, j int) bool {
		return nextSyms[i] < nextSyms[j]
	})

	sets := []*neighbourSet{}
	for _, sym := range nextSyms {
		closed, err := genLR1Closure(kItemMap[sym], prods, fst)
		if err != nil {
			return nil, err
		}
		set, err := newItemSet(closed)
		if err != nil {
			return nil, err
		}
		sets = append(sets, &neighbourSet{
			symbol: sym,
			set:    set,
		})
	}

	return sets, nil
}
