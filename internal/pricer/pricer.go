// Package pricer walks the top of the depth book after each mutation and
// decides whether the result is worth reporting: the income from selling a
// fixed target size into the bids, or the expense of buying it from the
// asks.
package pricer

import "github.com/ismaiel54/book-pricer/internal/book"

// Quote is one report: what executing target size against one side of the
// book would earn or cost at the instant of the triggering event. A quote
// with Marketable=false is a withdrawal, emitted when a side stops being
// able to absorb the target.
type Quote struct {
	Timestamp  int64
	Side       book.Side
	Marketable bool
	// Value is the cumulative execution total in fixed-point units
	// (shares × scaled price). Meaningful only when Marketable.
	Value int64
}

// reportState is the last state reported for one side.
type reportState struct {
	reported   bool
	marketable bool
	value      int64
}

// Pricer prices a fixed target size against the depth book and suppresses
// reports that would repeat the previous one. Only the side touched by an
// event is ever re-evaluated; the other side's book did not change, so its
// last report is still current.
type Pricer struct {
	depth  *book.Depth
	target book.Size
	last   [2]reportState
}

// New returns a pricer over depth for the given target size.
func New(depth *book.Depth, target book.Size) *Pricer {
	return &Pricer{depth: depth, target: target}
}

// Target is the fixed share quantity being priced.
func (p *Pricer) Target() book.Size {
	return p.target
}

// Evaluate prices side as of the event at ts and reports whether a quote
// should be emitted. The decision table:
//
//	unmarketable → unmarketable   suppress
//	marketable   → unmarketable   emit withdrawal
//	any          → new value      emit value
//	value        → same value     suppress
func (p *Pricer) Evaluate(side book.Side, ts int64) (Quote, bool) {
	prev := p.last[side]

	if p.depth.GrandTotal(side) < p.target {
		p.last[side] = reportState{reported: true, marketable: false}
		if prev.reported && !prev.marketable {
			return Quote{}, false
		}
		if !prev.reported {
			// Never marketable so far; nothing to withdraw.
			return Quote{}, false
		}
		return Quote{Timestamp: ts, Side: side, Marketable: false}, true
	}

	value := p.execute(side)
	p.last[side] = reportState{reported: true, marketable: true, value: value}
	if prev.reported && prev.marketable && prev.value == value {
		return Quote{}, false
	}
	return Quote{Timestamp: ts, Side: side, Marketable: true, Value: value}, true
}

// execute accumulates size×price over the side's best levels until the
// target is filled. The caller has already checked the grand total, so the
// walk always terminates with remaining at zero.
func (p *Pricer) execute(side book.Side) int64 {
	remaining := p.target
	var value int64
	p.depth.WalkBest(side, func(lvl book.Level) bool {
		take := lvl.Size
		if take > remaining {
			take = remaining
		}
		value += int64(take) * int64(lvl.Price)
		remaining -= take
		return remaining > 0
	})
	return value
}
