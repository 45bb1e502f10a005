package book

import "fmt"

// OrderRecord holds the static attributes of a live resting order. Reduce
// events carry only the order id, so the record is what lets them find the
// right level again.
type OrderRecord struct {
	Side  Side
	Price Price
	Size  Size
}

// Index maps live order ids to their records. Lookups sit on the hot path
// of every Reduce event, and the key is already a strong 64-bit hash of the
// raw token, so a plain Go map is enough.
type Index struct {
	orders map[OrderID]OrderRecord
}

// NewIndex returns an index pre-sized for about capacity live orders.
func NewIndex(capacity int) *Index {
	if capacity < 64 {
		capacity = 64
	}
	return &Index{orders: make(map[OrderID]OrderRecord, capacity)}
}

// Insert registers a new live order. Inserting an id that is already live
// is an input fault.
func (ix *Index) Insert(id OrderID, side Side, price Price, size Size) error {
	if _, ok := ix.orders[id]; ok {
		return fmt.Errorf("insert %#x: %w", uint64(id), ErrDuplicateOrder)
	}
	ix.orders[id] = OrderRecord{Side: side, Price: price, Size: size}
	return nil
}

// Lookup returns the record for a live order.
func (ix *Index) Lookup(id OrderID) (OrderRecord, bool) {
	rec, ok := ix.orders[id]
	return rec, ok
}

// Reduce decrements the stored size by amount, clamped to the remaining
// size; the feed's semantics treat an over-large reduce as a full removal.
// It returns the order's record and the effective decrement. A fully
// reduced order is removed so a reused id is detectable as a duplicate and
// a stale reduce as unknown.
func (ix *Index) Reduce(id OrderID, amount Size) (OrderRecord, Size, error) {
	rec, ok := ix.orders[id]
	if !ok {
		return OrderRecord{}, 0, fmt.Errorf("reduce %#x: %w", uint64(id), ErrUnknownOrder)
	}
	dec := amount
	if dec >= rec.Size {
		dec = rec.Size
		delete(ix.orders, id)
		return rec, dec, nil
	}
	rec.Size -= dec
	ix.orders[id] = rec
	return rec, dec, nil
}

// Remove drops an order outright.
func (ix *Index) Remove(id OrderID) {
	delete(ix.orders, id)
}

// Len is the number of live orders.
func (ix *Index) Len() int {
	return len(ix.orders)
}
