package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaSink struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaSink mirrors audit events onto a Kafka topic, best-effort, for
// downstream consumers. Like every Sink, failures are logged and swallowed.
func NewKafkaSink(brokers []string, topic string, log logger.Logger) Sink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &kafkaSink{writer: w, logger: log}
}

func (s *kafkaSink) Record(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("audit event marshal failed", zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.Entity + ":" + e.EntityID),
		Value: value,
	})
	if err != nil {
		s.logger.Error("audit event publish failed",
			zap.String("action", e.Action),
			zap.Error(err),
		)
	}
}
