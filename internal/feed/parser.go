package feed

import (
	"fmt"

	"github.com/ismaiel54/book-pricer/internal/book"
)

// Parser tokenizes event lines. It counts lines so faults can name the
// offending one, and parses prices at the configured fixed-point precision.
// Tokenization is byte-at-a-time over the input slice; nothing is
// allocated per line.
type Parser struct {
	precision int
	line      int
}

// NewParser returns a parser at fixed-point precision d.
func NewParser(d int) *Parser {
	return &Parser{precision: d}
}

// Line is the number of lines consumed so far.
func (p *Parser) Line() int {
	return p.line
}

// ParseLine decodes one input line. Empty lines are reported via ok=false
// and are not an error.
func (p *Parser) ParseLine(s []byte) (ev Event, ok bool, err error) {
	p.line++

	f := fields{rest: s}
	ts, ok := f.next()
	if !ok {
		return Event{}, false, nil
	}

	ev.Timestamp, err = parseInt64(ts)
	if err != nil {
		return Event{}, false, p.fault("timestamp %q", ts)
	}

	kind, ok := f.next()
	if !ok || len(kind) != 1 {
		return Event{}, false, p.fault("missing event type")
	}

	switch Kind(kind[0]) {
	case Add:
		err = p.parseAdd(&f, &ev)
	case Reduce:
		err = p.parseReduce(&f, &ev)
	default:
		return Event{}, false, p.fault("unknown event type %q", kind)
	}
	if err != nil {
		return Event{}, false, err
	}

	if _, trailing := f.next(); trailing {
		return Event{}, false, p.fault("trailing fields")
	}
	return ev, true, nil
}

func (p *Parser) parseAdd(f *fields, ev *Event) error {
	ev.Kind = Add

	id, ok := f.next()
	if !ok {
		return p.fault("missing order id")
	}
	ev.OrderID = book.HashOrderID(id)

	side, ok := f.next()
	if !ok || len(side) != 1 {
		return p.fault("missing side")
	}
	switch side[0] {
	case 'B':
		ev.Side = book.Bid
	case 'S':
		ev.Side = book.Ask
	default:
		return p.fault("bad side %q", side)
	}

	price, ok := f.next()
	if !ok {
		return p.fault("missing price")
	}
	pr, err := book.ParsePrice(price, p.precision)
	if err != nil {
		return p.fault("%v", err)
	}
	ev.Price = pr

	return p.parseSize(f, ev)
}

func (p *Parser) parseReduce(f *fields, ev *Event) error {
	ev.Kind = Reduce

	id, ok := f.next()
	if !ok {
		return p.fault("missing order id")
	}
	ev.OrderID = book.HashOrderID(id)

	return p.parseSize(f, ev)
}

func (p *Parser) parseSize(f *fields, ev *Event) error {
	tok, ok := f.next()
	if !ok {
		return p.fault("missing size")
	}
	n, err := parseInt64(tok)
	if err != nil || n <= 0 {
		return p.fault("size %q", tok)
	}
	ev.Size = book.Size(n)
	return nil
}

func (p *Parser) fault(format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", p.line, ErrMalformed, fmt.Sprintf(format, args...))
}

// fields yields whitespace-separated tokens from a line without allocating.
type fields struct {
	rest []byte
}

func (f *fields) next() ([]byte, bool) {
	i := 0
	for i < len(f.rest) && isSpace(f.rest[i]) {
		i++
	}
	if i == len(f.rest) {
		f.rest = nil
		return nil, false
	}
	j := i
	for j < len(f.rest) && !isSpace(f.rest[j]) {
		j++
	}
	tok := f.rest[i:j]
	f.rest = f.rest[j:]
	return tok, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad digit %q", c)
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}
