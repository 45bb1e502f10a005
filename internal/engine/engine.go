// Package engine applies decoded feed events to the book and forwards the
// pricer's reports to the output. It is the only writer of the book and the
// index; everything is synchronous, one event fully processed before the
// next is read.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/feed"
	"github.com/ismaiel54/book-pricer/internal/pricer"
)

// QuoteWriter receives every emitted report. The stdout writer and the
// Kafka sink both satisfy it.
type QuoteWriter interface {
	WriteQuote(pricer.Quote) error
}

// Config sizes and wires an engine.
type Config struct {
	// TargetSize is the fixed share quantity being priced.
	TargetSize book.Size
	// Capacity hints the expected live-order population. Zero derives a
	// hint from the target size.
	Capacity int
	Out      QuoteWriter
	Logger   *zap.Logger
}

// Engine owns the order index, the depth book and the pricer.
type Engine struct {
	index  *book.Index
	depth  *book.Depth
	pricer *pricer.Pricer
	out    QuoteWriter
	logger *zap.Logger

	events     int64
	bidReports int64
	askReports int64
}

// New builds an engine whose order index is pre-sized from the capacity
// hint. The depth book is not pre-sized.
func New(cfg Config) *Engine {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 16 * int(cfg.TargetSize)
		if capacity > 1<<20 {
			capacity = 1 << 20
		}
	}
	depth := book.NewDepth()
	return &Engine{
		index:  book.NewIndex(capacity),
		depth:  depth,
		pricer: pricer.New(depth, cfg.TargetSize),
		out:    cfg.Out,
		logger: cfg.Logger,
	}
}

// Apply mutates the book for one event, re-prices the touched side and
// writes any resulting report. An input fault (duplicate add, unknown
// reduce) is returned unprocessed; the book is left as it was.
func (e *Engine) Apply(ev feed.Event) error {
	var side book.Side

	switch ev.Kind {
	case feed.Add:
		if err := e.index.Insert(ev.OrderID, ev.Side, ev.Price, ev.Size); err != nil {
			return err
		}
		e.depth.Add(ev.Side, ev.Price, ev.Size)
		side = ev.Side

	case feed.Reduce:
		rec, dec, err := e.index.Reduce(ev.OrderID, ev.Size)
		if err != nil {
			return err
		}
		e.depth.Reduce(rec.Side, rec.Price, dec)
		side = rec.Side

	default:
		return fmt.Errorf("event kind %q: %w", byte(ev.Kind), feed.ErrMalformed)
	}
	e.events++

	q, emit := e.pricer.Evaluate(side, ev.Timestamp)
	if !emit {
		return nil
	}
	if side == book.Bid {
		e.bidReports++
	} else {
		e.askReports++
	}
	if err := e.out.WriteQuote(q); err != nil {
		return fmt.Errorf("failed to write quote: %w", err)
	}
	return nil
}

// LogSummary records the run's shape at shutdown.
func (e *Engine) LogSummary() {
	e.logger.Info("run summary",
		zap.Int64("events", e.events),
		zap.Int64("bid_reports", e.bidReports),
		zap.Int64("ask_reports", e.askReports),
		zap.Int("live_orders", e.index.Len()),
		zap.Int("bid_levels", e.depth.Levels(book.Bid)),
		zap.Int("ask_levels", e.depth.Levels(book.Ask)),
	)
}
