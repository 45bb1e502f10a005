package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/config"
	"github.com/ismaiel54/book-pricer/internal/engine"
	"github.com/ismaiel54/book-pricer/internal/feed"
	"github.com/ismaiel54/book-pricer/internal/logging"
	"github.com/ismaiel54/book-pricer/internal/observability"
	"github.com/ismaiel54/book-pricer/internal/stream"
)

func main() {
	precision := flag.Int("precision", book.DefaultPrecision, "fixed-point fractional digits")
	capacity := flag.Int("capacity", 0, "expected live-order population hint")
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

	// Load configuration
	cfg := config.LoadConfig("stream-pricer")

	// Initialize logger
	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting stream-pricer service",
		zap.Int64("target_size", target),
		zap.Int("precision", *precision),
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("topic_events", cfg.TopicEvents),
		zap.String("topic_quotes", cfg.TopicQuotes),
	)

	// Create health checker
	healthChecker := observability.NewHealthChecker(logger)

	// Create Kafka sink for quotes
	brokers := cfg.Brokers()
	sink, err := stream.NewSink(brokers, cfg.TopicQuotes, *precision, logger)
	if err != nil {
		logger.Fatal("failed to create kafka sink", zap.Error(err))
	}
	defer sink.Close()

	// Create Kafka source for events
	source, err := stream.NewSource(brokers, cfg.ConsumerGroup, cfg.TopicEvents, logger)
	if err != nil {
		logger.Fatal("failed to create kafka source", zap.Error(err))
	}
	defer source.Close()

	healthChecker.SetKafkaReady(true)

	// Start HTTP health server
	httpErrCh := make(chan error, 1)
	go func() {
		if err := healthChecker.StartHTTPServer(cfg.HTTPAddr()); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
		}
	}()

	// Wire the engine onto the sink
	eng := engine.New(engine.Config{
		TargetSize: book.Size(target),
		Capacity:   *capacity,
		Out:        sink,
		Logger:     logger,
	})
	parser := feed.NewParser(*precision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sourceErrCh := make(chan error, 1)
	go func() {
		err := source.Run(ctx, func(ctx context.Context, line []byte) error {
			ev, ok, perr := parser.ParseLine(line)
			if perr != nil {
				return perr
			}
			if !ok {
				return nil
			}
			return eng.Apply(ev)
		})
		sourceErrCh <- err
	}()

	// Wait for shutdown signal or a terminal error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		<-sourceErrCh
	case err := <-sourceErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed diverged, stopping", zap.Error(err))
			exitCode = 1
		}
	case err := <-httpErrCh:
		logger.Error("HTTP health server failed", zap.Error(err))
		exitCode = 1
		cancel()
		<-sourceErrCh
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthChecker.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health checker shutdown failed", zap.Error(err))
	}

	eng.LogSummary()
	logger.Info("stream-pricer stopped")
	os.Exit(exitCode)
}
