// Package feed decodes the line-oriented market-data stream into event
// records the engine can apply.
package feed

import (
	"errors"

	"github.com/ismaiel54/book-pricer/internal/book"
)

// Kind discriminates the two event types the feed carries.
type Kind byte

const (
	// Add places a new resting order.
	Add Kind = 'A'
	// Reduce shrinks or removes an existing resting order.
	Reduce Kind = 'R'
)

// Event is one decoded input record. Side and Price are meaningful only for
// Add; a Reduce names the order by id alone and the book's index recovers
// the rest.
type Event struct {
	Timestamp int64
	Kind      Kind
	OrderID   book.OrderID
	Side      book.Side
	Price     book.Price
	Size      book.Size
}

// ErrMalformed marks an unparsable line, bad token or missing field. The
// feed is authoritative, so a malformed line aborts the run.
var ErrMalformed = errors.New("malformed input")
