package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message is fully processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r        *kafka.Reader
	workers  int
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit manually after the handler succeeds
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:        r,
		workers:  workers,
		attempts: 3,
		backoff:  500 * time.Millisecond,
		log:      log.With(zap.String("topic", topic), zap.String("group", group)),
	}
}

// Start fetches until ctx is cancelled. Each message gets a few handler attempts;
// one that still fails is logged and committed anyway, so a bad record never
// stalls its partition. Only a shutdown leaves a message uncommitted.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				c.process(ctx, id, h, m, c.r.CommitMessages)
			}
		}(i)
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

type commitFunc func(ctx context.Context, msgs ...kafka.Message) error

func (c *Consumer) process(ctx context.Context, worker int, h Handler, m kafka.Message, commit commitFunc) {
	if err := c.handle(ctx, h, m); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Error("handler gave up, skipping message",
			zap.Int("worker", worker),
			zap.Int64("offset", m.Offset),
			zap.Int("partition", m.Partition),
			zap.ByteString("key", m.Key),
			zap.Error(err))
	}
	if err := commit(ctx, m); err != nil {
		c.log.Warn("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

// handle retries h with a linear backoff and stops early when ctx ends.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = h(ctx, m); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		c.log.Warn("handler failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		select {
		case <-time.After(time.Duration(attempt) * c.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
