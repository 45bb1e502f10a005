package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/feed"
	"github.com/ismaiel54/book-pricer/internal/quote"
)

// runFeed pushes a whole feed through parser, engine and writer, returning
// the report stream and the first fault, mirroring the pricer binary's
// loop.
func runFeed(t *testing.T, target book.Size, input string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	w := quote.NewWriter(&buf, 4)
	eng := New(Config{
		TargetSize: target,
		Out:        w,
		Logger:     zap.NewNop(),
	})
	parser := feed.NewParser(4)

	for _, line := range strings.Split(input, "\n") {
		ev, ok, err := parser.ParseLine([]byte(line))
		if err != nil {
			require.NoError(t, w.Flush())
			return buf.String(), err
		}
		if !ok {
			continue
		}
		if err := eng.Apply(ev); err != nil {
			require.NoError(t, w.Flush())
			return buf.String(), err
		}
	}
	require.NoError(t, w.Flush())
	return buf.String(), nil
}

func TestSingleSidedBuildThenPrice(t *testing.T) {
	out, err := runFeed(t, 200, `
28800538 A b1 B 44.26 100
28800538 A b2 B 44.25 100
`)
	require.NoError(t, err)
	assert.Equal(t, "28800538 B 8851.0000\n", out)
}

func TestPriceImprovementTriggersUpdate(t *testing.T) {
	out, err := runFeed(t, 200, `
28800538 A b1 B 44.26 100
28800538 A b2 B 44.25 100
28800639 A b3 B 44.27 100
`)
	require.NoError(t, err)
	assert.Equal(t, "28800538 B 8851.0000\n28800639 B 8853.0000\n", out)
}

func TestReductionReprices(t *testing.T) {
	out, err := runFeed(t, 200, `
28800538 A b1 B 44.26 100
28800538 A b2 B 44.25 100
28800639 A b3 B 44.27 100
28800944 R b1 100
`)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "28800944 B 8852.0000\n"),
		"after the reduce the remaining 200 shares reprice, got %q", out)
}

func TestUnmarketableTransition(t *testing.T) {
	out, err := runFeed(t, 200, `
28800538 A b1 B 44.26 100
28800538 A b2 B 44.25 100
28800639 A b3 B 44.27 100
28800944 R b1 100
28800950 R b2 100
28800951 R b3 100
`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "28800950 B NA", lines[3], "the first event dropping the total below target withdraws the side")
	// The later reduction leaves the side unmarketable and emits nothing.
	assert.NotContains(t, out, "28800951")
}

func TestTwoSidedInterleaving(t *testing.T) {
	out, err := runFeed(t, 200, `
28800562 A a1 S 44.28 100
28800563 A a2 S 44.29 100
28800564 A b1 B 44.20 100
28800565 A b2 B 44.10 100
`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "28800563 S 8857.0000", lines[0])
	// The bid-side adds must not re-emit the ask line.
	askLines := 0
	for _, l := range lines {
		if strings.Contains(l, " S ") {
			askLines++
		}
	}
	assert.Equal(t, 1, askLines, "ask side reported exactly once, got %q", out)
}

func TestDuplicateAddAborts(t *testing.T) {
	out, err := runFeed(t, 200, `
28800538 A x B 10.00 5
28800539 A x S 11.00 5
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, book.ErrDuplicateOrder)
	assert.Empty(t, out, "nothing marketable before the fault")
}

func TestUnknownReduceAborts(t *testing.T) {
	_, err := runFeed(t, 200, `
28800538 R ghost 5
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, book.ErrUnknownOrder)
}

func TestReductionEmptiesBestLevel(t *testing.T) {
	// Emptying the best level forces the next query onto the next-best.
	out, err := runFeed(t, 100, `
28800538 A b1 B 44.27 100
28800539 A b2 B 44.26 100
28800540 R b1 100
`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "28800538 B 4427.0000", lines[0])
	assert.Equal(t, "28800540 B 4426.0000", lines[1])
}

func TestBothSidesUnmarketableIsSilent(t *testing.T) {
	out, err := runFeed(t, 1000, `
28800538 A b1 B 44.26 100
28800539 A a1 S 44.28 100
28800540 R b1 50
28800541 R a1 50
`)
	require.NoError(t, err)
	assert.Empty(t, out, "alternating mutations below target on both sides emit nothing")
}

func TestSummaryCounters(t *testing.T) {
	var buf bytes.Buffer
	w := quote.NewWriter(&buf, 4)
	eng := New(Config{TargetSize: 100, Out: w, Logger: zap.NewNop()})
	parser := feed.NewParser(4)

	for _, line := range []string{
		"1 A b1 B 44.26 100",
		"2 A a1 S 44.28 200",
	} {
		ev, ok, err := parser.ParseLine([]byte(line))
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, eng.Apply(ev))
	}

	assert.Equal(t, int64(2), eng.events)
	assert.Equal(t, int64(1), eng.bidReports)
	assert.Equal(t, int64(1), eng.askReports)
	assert.Equal(t, 2, eng.index.Len())
}
