// Package stream feeds the engine from Kafka and publishes its quotes back
// to Kafka, for deployments where the feed is a topic rather than a file.
package stream

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Source consumes raw event lines from a topic. Each record value is one
// feed line. Unlike a generic consumer, a handler error is terminal: a
// pricer whose input has diverged must stop rather than skip.
type Source struct {
	client *kgo.Client
	logger *zap.Logger
	topic  string
	group  string

	consumed   int64
	errorCount int64
}

// NewSource creates a Kafka consumer over the event topic.
func NewSource(brokers []string, group, topic string, logger *zap.Logger) (*Source, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(), // Commit only after the engine applied the event
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	s := &Source{
		client: client,
		logger: logger,
		topic:  topic,
		group:  group,
	}

	logger.Info("source initialized",
		zap.Strings("brokers", brokers),
		zap.String("group", group),
		zap.String("topic", topic),
	)

	go s.logStats()

	return s, nil
}

// Run polls the topic and hands each record's value to handler in offset
// order. It returns on context cancellation or on the first handler error.
func (s *Source) Run(ctx context.Context, handler func(context.Context, []byte) error) error {
	s.logger.Info("starting source",
		zap.String("group", s.group),
		zap.String("topic", s.topic),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("source stopping", zap.String("group", s.group))
			return ctx.Err()
		default:
			fetches := s.client.PollFetches(ctx)
			if fetches.IsClientClosed() {
				return fmt.Errorf("kafka client closed")
			}

			iter := fetches.RecordIter()
			for !iter.Done() {
				record := iter.Next()

				if err := handler(ctx, record.Value); err != nil {
					atomic.AddInt64(&s.errorCount, 1)
					s.logger.Error("event handler failed, stopping",
						zap.String("topic", record.Topic),
						zap.Int64("offset", record.Offset),
						zap.Error(err),
					)
					return err
				}

				s.client.CommitRecords(ctx, record)
				atomic.AddInt64(&s.consumed, 1)
			}
		}
	}
}

// Close closes the consumer
func (s *Source) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// logStats logs source statistics periodically
func (s *Source) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		consumed := atomic.LoadInt64(&s.consumed)
		errors := atomic.LoadInt64(&s.errorCount)
		s.logger.Info("source stats",
			zap.String("group", s.group),
			zap.Int64("consumed", consumed),
			zap.Int64("errors", errors),
		)
	}
}
