package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/calhq/freebusy/libs/kafkax"
)

// Consumer listens for schedule-updated events and triggers a snapshot
// rebuild for each one. Rebuilds are idempotent, so duplicate deliveries
// are harmless and no inbox bookkeeping is needed.
type Consumer struct {
	reader    *kafka.Reader
	logger    *slog.Logger
	refresher *Refresher
}

type ConsumerConfig struct {
	Brokers string
	GroupID string
	Topic   string
}

func NewConsumer(logger *slog.Logger, refresher *Refresher, cfg ConsumerConfig) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:    reader,
		logger:    logger,
		refresher: refresher,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}

		ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
		ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "schedule.refresh",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)

		meta := kafkax.ExtractEventMeta(msg)

		// A failed rebuild keeps the previous snapshot published; the next
		// event (or a manual refresh) will try again.
		if err := c.refresher.Rebuild(ctxSpan); err != nil {
			c.logger.Error("schedule rebuild failed", "err", err, "event_id", meta.EventID)
			span.RecordError(err)
			span.End()
			continue
		}
		c.logger.Info("schedule rebuilt", "event_id", meta.EventID, "event_type", meta.EventType)
		span.End()
	}
}
