package book

import "github.com/google/btree"

// Level is one entry of the depth book: the aggregate of all resting orders
// on one side at a single price. Size is always strictly positive; a level
// whose size reaches zero is removed in the same step.
type Level struct {
	Price Price
	Size  Size
}

const levelTreeDegree = 32

// Depth maintains, per side, an ordered map from price to aggregated
// resting size plus the side's grand total. Levels are sparse and arrive
// out of order, so each side is a B-tree keyed by price: O(log L) mutation
// and cheap best-first traversal.
type Depth struct {
	bids *btree.BTreeG[Level]
	asks *btree.BTreeG[Level]

	bidTotal Size
	askTotal Size
}

func levelLess(a, b Level) bool { return a.Price < b.Price }

// NewDepth returns an empty two-sided depth book.
func NewDepth() *Depth {
	return &Depth{
		bids: btree.NewG(levelTreeDegree, levelLess),
		asks: btree.NewG(levelTreeDegree, levelLess),
	}
}

func (d *Depth) tree(side Side) *btree.BTreeG[Level] {
	if side == Bid {
		return d.bids
	}
	return d.asks
}

// Add increases the aggregate size at (side, price), creating the level if
// absent, and grows the side's grand total.
func (d *Depth) Add(side Side, price Price, size Size) {
	t := d.tree(side)
	lvl, ok := t.Get(Level{Price: price})
	if ok {
		lvl.Size += size
	} else {
		lvl = Level{Price: price, Size: size}
	}
	t.ReplaceOrInsert(lvl)

	if side == Bid {
		d.bidTotal += size
	} else {
		d.askTotal += size
	}
}

// Reduce decreases the aggregate size at (side, price), removing the level
// when it empties, and shrinks the side's grand total. The order index
// guarantees the level exists with at least size resting.
func (d *Depth) Reduce(side Side, price Price, size Size) {
	t := d.tree(side)
	lvl, ok := t.Get(Level{Price: price})
	if !ok {
		return
	}
	if lvl.Size <= size {
		size = lvl.Size
		t.Delete(lvl)
	} else {
		lvl.Size -= size
		t.ReplaceOrInsert(lvl)
	}

	if side == Bid {
		d.bidTotal -= size
	} else {
		d.askTotal -= size
	}
}

// GrandTotal is the side's aggregate resting size.
func (d *Depth) GrandTotal(side Side) Size {
	if side == Bid {
		return d.bidTotal
	}
	return d.askTotal
}

// WalkBest visits the side's levels from the best price (highest bid,
// lowest ask) until fn returns false or the side is exhausted.
func (d *Depth) WalkBest(side Side, fn func(Level) bool) {
	if side == Bid {
		d.bids.Descend(fn)
		return
	}
	d.asks.Ascend(fn)
}

// Levels is the number of live price levels on a side.
func (d *Depth) Levels(side Side) int {
	return d.tree(side).Len()
}
