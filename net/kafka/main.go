package kafka

import (
	"context"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// Config structure
type Config struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Settlements string `mapstructure:"settlements"`
	} `mapstructure:"topics"`
}

// Writer - thin wrapper over the kafka-go writer used for event publishing
type Writer struct {
	writer *kafkaGo.Writer
}

// NewWriter creates a writer for the given topic
func NewWriter(cfg Config, topic string) *Writer {
	if !cfg.Enabled {
		return nil
	}
	return &Writer{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafkaGo.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// WriteMessage publishes a single keyed message. Safe to call on a nil writer.
func (w *Writer) WriteMessage(ctx context.Context, key, value []byte) error {
	if w == nil {
		return nil
	}
	return w.writer.WriteMessages(ctx, kafkaGo.Message{Key: key, Value: value})
}

// Close godoc
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.writer.Close()
}
