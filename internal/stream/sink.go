package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/ismaiel54/book-pricer/internal/book"
	"github.com/ismaiel54/book-pricer/internal/pricer"
)

// QuoteMsg is the published form of one report line.
type QuoteMsg struct {
	EventID      string `json:"event_id"`
	Timestamp    int64  `json:"timestamp"`
	Action       string `json:"action"` // "B" or "S"
	Value        string `json:"value"`  // fixed-point total, or "NA"
	Marketable   bool   `json:"marketable"`
	TsUnixMillis int64  `json:"ts_unix_millis"`
}

// Sink publishes quotes to a topic with synchronous acks, preserving the
// report stream's ordering. It satisfies the engine's QuoteWriter.
type Sink struct {
	client    *kgo.Client
	logger    *zap.Logger
	topic     string
	precision int

	produceCount int64
	errorCount   int64
}

// NewSink creates a Kafka producer for the quote topic, formatting values
// with d fractional digits.
func NewSink(brokers []string, topic string, d int, logger *zap.Logger) (*Sink, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.DisableIdempotentWrite(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	s := &Sink{
		client:    client,
		logger:    logger,
		topic:     topic,
		precision: d,
	}

	logger.Info("sink initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)

	go s.logStats()

	return s, nil
}

// WriteQuote publishes one quote. Keyed by action so each side's reports
// stay on one partition in order.
func (s *Sink) WriteQuote(q pricer.Quote) error {
	action := "S"
	if q.Side == book.Bid {
		action = "B"
	}
	value := "NA"
	if q.Marketable {
		value = book.FormatFixed(q.Value, s.precision)
	}

	msg := QuoteMsg{
		EventID:      uuid.New().String(),
		Timestamp:    q.Timestamp,
		Action:       action,
		Value:        value,
		Marketable:   q.Marketable,
		TsUnixMillis: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		atomic.AddInt64(&s.errorCount, 1)
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(action),
		Value: data,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := s.client.ProduceSync(ctx, record)
	if result.FirstErr() != nil {
		atomic.AddInt64(&s.errorCount, 1)
		return fmt.Errorf("failed to produce quote: %w", result.FirstErr())
	}

	atomic.AddInt64(&s.produceCount, 1)
	return nil
}

// Close closes the producer
func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// logStats logs sink statistics periodically
func (s *Sink) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		produced := atomic.LoadInt64(&s.produceCount)
		errors := atomic.LoadInt64(&s.errorCount)
		s.logger.Info("sink stats",
			zap.Int64("produced", produced),
			zap.Int64("errors", errors),
		)
	}
}
