package pricer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismaiel54/book-pricer/internal/book"
)

func TestEvaluate_SingleShareBestLevel(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 1)

	p := New(d, 1)
	q, emit := p.Evaluate(book.Bid, 100)
	require.True(t, emit)
	assert.True(t, q.Marketable)
	assert.Equal(t, int64(442600), q.Value, "target 1 against a one-share best level prices at exactly the best price")
	assert.Equal(t, int64(100), q.Timestamp)
}

func TestEvaluate_ExactGrandTotal(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Ask, 442800, 100)
	d.Add(book.Ask, 442900, 100)

	p := New(d, 200)
	q, emit := p.Evaluate(book.Ask, 5)
	require.True(t, emit)
	assert.True(t, q.Marketable)
	assert.Equal(t, int64(100*442800+100*442900), q.Value, "a grand total exactly at target consumes every level")
}

func TestEvaluate_WalksBestFirst(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442500, 100)
	d.Add(book.Bid, 442600, 100)
	d.Add(book.Bid, 442700, 100)

	p := New(d, 200)
	q, emit := p.Evaluate(book.Bid, 1)
	require.True(t, emit)
	assert.Equal(t, int64(100*442700+100*442600), q.Value, "only the two best levels are consumed")
}

func TestEvaluate_PartialTopLevel(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Ask, 442800, 150)
	d.Add(book.Ask, 442900, 100)

	p := New(d, 200)
	q, emit := p.Evaluate(book.Ask, 1)
	require.True(t, emit)
	assert.Equal(t, int64(150*442800+50*442900), q.Value, "second level is taken only partially")
}

func TestEvaluate_UnmarketableFromStart(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 50)

	p := New(d, 200)
	_, emit := p.Evaluate(book.Bid, 1)
	assert.False(t, emit, "never-marketable side has nothing to withdraw")

	_, emit = p.Evaluate(book.Bid, 2)
	assert.False(t, emit, "still unmarketable, still silent")
}

func TestEvaluate_WithdrawalTransition(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 200)

	p := New(d, 200)
	_, emit := p.Evaluate(book.Bid, 1)
	require.True(t, emit)

	d.Reduce(book.Bid, 442600, 100)
	q, emit := p.Evaluate(book.Bid, 2)
	require.True(t, emit, "marketable to unmarketable is an explicit withdrawal")
	assert.False(t, q.Marketable)
	assert.Equal(t, int64(2), q.Timestamp)

	// Losing the rest changes nothing already withdrawn.
	d.Reduce(book.Bid, 442600, 100)
	_, emit = p.Evaluate(book.Bid, 3)
	assert.False(t, emit)
}

func TestEvaluate_SuppressesUnchangedValue(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Ask, 442800, 300)

	p := New(d, 200)
	_, emit := p.Evaluate(book.Ask, 1)
	require.True(t, emit)

	// Depth beyond the target changed, the priced value did not.
	d.Reduce(book.Ask, 442800, 50)
	_, emit = p.Evaluate(book.Ask, 2)
	assert.False(t, emit, "value unchanged, report suppressed")
}

func TestEvaluate_Idempotent(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 200)

	p := New(d, 200)
	_, emit := p.Evaluate(book.Bid, 1)
	require.True(t, emit)

	_, emit = p.Evaluate(book.Bid, 2)
	assert.False(t, emit, "re-evaluating without a mutation emits nothing")
}

func TestEvaluate_ReMarketableAfterWithdrawal(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 200)

	p := New(d, 200)
	_, emit := p.Evaluate(book.Bid, 1)
	require.True(t, emit)

	d.Reduce(book.Bid, 442600, 1)
	q, emit := p.Evaluate(book.Bid, 2)
	require.True(t, emit)
	require.False(t, q.Marketable)

	d.Add(book.Bid, 442500, 1)
	q, emit = p.Evaluate(book.Bid, 3)
	require.True(t, emit, "side crossing back over target reports a concrete value")
	assert.True(t, q.Marketable)
	assert.Equal(t, int64(199*442600+1*442500), q.Value)
}

func TestEvaluate_SidesIndependent(t *testing.T) {
	d := book.NewDepth()
	d.Add(book.Bid, 442600, 200)
	d.Add(book.Ask, 442800, 200)

	p := New(d, 200)
	qb, emit := p.Evaluate(book.Bid, 1)
	require.True(t, emit)
	qa, emit := p.Evaluate(book.Ask, 2)
	require.True(t, emit)
	assert.NotEqual(t, qb.Value, qa.Value)

	// Touching the bid side again must not disturb the ask state.
	d.Add(book.Bid, 442700, 10)
	_, emit = p.Evaluate(book.Bid, 3)
	require.True(t, emit)
	_, emit = p.Evaluate(book.Ask, 4)
	assert.False(t, emit, "untouched side's report stands")
}
