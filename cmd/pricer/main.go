package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/config"
	"github.com/ismaiel54/book-pricer/internal/engine"
	"github.com/ismaiel54/book-pricer/internal/feed"
	"github.com/ismaiel54/book-pricer/internal/journal"
	"github.com/ismaiel54/book-pricer/internal/logging"
	"github.com/ismaiel54/book-pricer/internal/pricer"
	"github.com/ismaiel54/book-pricer/internal/quote"
)

func main() {
	precision := flag.Int("precision", book.DefaultPrecision, "fixed-point fractional digits")
	capacity := flag.Int("capacity", 0, "expected live-order population hint")
	journalPath := flag.String("journal", "", "append emitted reports to a sqlite journal at this path")
	quiet := flag.Bool("quiet", false, "log faults only")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <target_size>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	target, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil || target <= 0 {
		fmt.Fprintf(os.Stderr, "target_size must be a positive integer, got %q\n", flag.Arg(0))
		os.Exit(2)
	}
	if *precision < 0 || *precision > book.MaxPrecision {
		fmt.Fprintf(os.Stderr, "precision must be in [0,%d], got %d\n", book.MaxPrecision, *precision)
		os.Exit(2)
	}

	cfg := config.LoadConfig("pricer")
	level := cfg.LogLevel
	if *quiet {
		level = "error"
	}

	logger, err := logging.NewLogger(cfg.ServiceName, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	os.Exit(run(logger, book.Size(target), *precision, *capacity, *journalPath))
}

func run(logger *zap.Logger, target book.Size, precision, capacity int, journalPath string) int {
	logger.Info("starting pricer",
		zap.Int64("target_size", int64(target)),
		zap.Int("precision", precision),
	)

	writer := quote.NewWriter(os.Stdout, precision)
	var out engine.QuoteWriter = writer

	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			logger.Error("failed to open journal", zap.Error(err))
			return 1
		}
		defer j.Close()

		sessionID := uuid.New().String()
		logger.Info("journal enabled",
			zap.String("path", journalPath),
			zap.String("session_id", sessionID),
		)
		out = &journalTee{
			out:       writer,
			j:         j,
			sessionID: sessionID,
			precision: precision,
			ctx:       context.Background(),
		}
	}

	eng := engine.New(engine.Config{
		TargetSize: target,
		Capacity:   capacity,
		Out:        out,
		Logger:     logger,
	})

	parser := feed.NewParser(precision)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		ev, ok, err := parser.ParseLine(scanner.Bytes())
		if err != nil {
			writer.Flush()
			logger.Error("input fault", zap.Error(err))
			return 1
		}
		if !ok {
			continue
		}
		if err := eng.Apply(ev); err != nil {
			writer.Flush()
			logger.Error("input fault",
				zap.Int("line", parser.Line()),
				zap.Error(err),
			)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		writer.Flush()
		logger.Error("failed to read input", zap.Error(err))
		return 1
	}

	if err := writer.Flush(); err != nil {
		logger.Error("failed to flush output", zap.Error(err))
		return 1
	}
	eng.LogSummary()
	return 0
}

// journalTee writes each quote to stdout first, then to the journal, so the
// audit log never holds a report the output stream dropped.
type journalTee struct {
	out       *quote.Writer
	j         *journal.Journal
	sessionID string
	precision int
	ctx       context.Context
}

func (t *journalTee) WriteQuote(q pricer.Quote) error {
	if err := t.out.WriteQuote(q); err != nil {
		return err
	}
	return t.j.Append(t.ctx, t.sessionID, q, t.precision)
}
