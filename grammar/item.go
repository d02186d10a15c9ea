package grammar

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/johnrickE/compylr/grammar/symbol"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// lrItem is an LR(1) item: a production, a dot position, and exactly one
// look-ahead terminal. Identity is the full (production, dot, look-ahead)
// triple, precomputed as a content hash.
type lrItem struct {
	id   lrItemID
	prod productionID

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// lookAhead is the terminal (or EOF) that must follow for this item to
	// reduce. Epsilon never appears here.
	lookAhead symbol.Symbol

	// When initial is true, the LHS of the production is the augmented start
	// symbol and dot is 0. It looks like S' →・S.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is a kernel item: the initial item or any
	// item whose dot has advanced past at least one symbol.
	kernel bool
}

func newLR1Item(prod *production, dot int, lookAhead symbol.Symbol) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	if !lookAhead.IsTerminal() {
		return nil, fmt.Errorf("a look-ahead symbol must be a terminal symbol; got: %v", lookAhead)
	}

	var id lrItemID
	{
		b := []byte{}
		b = append(b, prod.id[:]...)
		bDot := make([]byte, 8)
		binary.LittleEndian.PutUint64(bDot, uint64(dot))
		b = append(b, bDot...)
		b = append(b, lookAhead.Byte()...)
		id = sha256.Sum256(b)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	initial := false
	if prod.lhs.IsStart() && dot == 0 {
		initial = true
	}

	reducible := false
	if dot == prod.rhsLen {
		reducible = true
	}

	kernel := false
	if initial || dot > 0 {
		kernel = true
	}

	item := &lrItem{
		id:           id,
		prod:         prod.id,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		lookAhead:    lookAhead,
		initial:      initial,
		reducible:    reducible,
		kernel:       kernel,
	}

	return item, nil
}

type itemSetID [32]byte

func (id itemSetID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// itemSet is a normalized set of LR(1) items: deduplicated and sorted by
// item id. Its id is a hash over the sorted item ids, so two sets get the
// same id exactly when they contain the same items. State deduplication
// compares these ids, which makes the collection canonical LR(1): states
// that differ only in look-aheads have different ids and stay separate.
type itemSet struct {
	id    itemSetID
	items []*lrItem
}

func newItemSet(items []*lrItem) (*itemSet, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("an item set needs at least one item")
	}

	// Remove duplicates from items. Ties on the sort key cannot occur
	// because the key is the full item id.
	var sortedItems []*lrItem
	{
		m := map[lrItemID]*lrItem{}
		for _, item := range items {
			m[item.id] = item
		}
		sortedItems = make([]*lrItem, 0, len(m))
		for _, item := range m {
			sortedItems = append(sortedItems, item)
		}
		sort.Slice(sortedItems, func(i, j int) bool {
			return bytes.Compare(sortedItems[i].id[:], sortedItems[j].id[:]) < 0
		})
	}

	var id itemSetID
	{
		b := []byte{}
		for _, item := range sortedItems {
			b = append(b, item.id[:]...)
		}
		id = sha256.Sum256(b)
	}

	return &itemSet{
		id:    id,
		items: sortedItems,
	}, nil
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

// lrState is an automaton state: a closed item set with its discovery-time
// number and outgoing transitions. Because the stored set is the whole
// closure, reducible items carry their look-aheads right here; no side
// table is needed even for empty productions whose only item is already
// reducible at dot 0.
type lrState struct {
	*itemSet
	num       stateNum
	next      map[symbol.Symbol]itemSetID
	reducible []*lrItem
	kernel    []*lrItem
}
