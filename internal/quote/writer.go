// Package quote formats report lines and writes them to the output stream.
package quote

import (
	"bufio"
	"io"
	"strconv"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/pricer"
)

// Action letters mirror the input side letters: B reports income from
// selling into bids, S the expense of buying from asks.
func actionLetter(s book.Side) byte {
	if s == book.Bid {
		return 'B'
	}
	return 'S'
}

// Writer encodes quotes as report lines onto a buffered stream. Writing a
// line at a time unbuffered is measurable; the caller must Flush before
// exit. The scratch buffer is reused across lines so steady-state writes do
// not allocate.
type Writer struct {
	w         *bufio.Writer
	precision int
	scratch   []byte
}

// NewWriter wraps w, formatting values with d fractional digits.
func NewWriter(w io.Writer, d int) *Writer {
	return &Writer{
		w:         bufio.NewWriterSize(w, 64*1024),
		precision: d,
		scratch:   make([]byte, 0, 64),
	}
}

// WriteQuote emits one report line: "<timestamp> <action> <value>", with NA
// as the value of a withdrawal.
func (w *Writer) WriteQuote(q pricer.Quote) error {
	b := w.scratch[:0]
	b = strconv.AppendInt(b, q.Timestamp, 10)
	b = append(b, ' ', actionLetter(q.Side), ' ')
	if q.Marketable {
		b = book.AppendFixed(b, q.Value, w.precision)
	} else {
		b = append(b, 'N', 'A')
	}
	b = append(b, '\n')
	w.scratch = b

	_, err := w.w.Write(b)
	return err
}

// Flush drains the buffer to the underlying stream.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
