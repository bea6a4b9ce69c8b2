// Package kafka publishes strong-quake alerts for downstream notification
// fanout (SMS broadcast workers, web push, and the like).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/seismoindia/quake-data-service/internal/config"
	"github.com/seismoindia/quake-data-service/internal/domain"
)

// AlertWriter produces earthquake alert messages to a Kafka topic.
// It implements pipeline.AlertPublisher.
type AlertWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the configured alert topic.
func NewAlertWriter(cfg *config.Config, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes the given events in a single
// WriteMessages call. The pipeline filters by magnitude before calling.
func (w *AlertWriter) PublishAlerts(ctx context.Context, events []domain.Earthquake) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeAlert(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeAlert marshals an Earthquake into a Kafka message keyed by the
// USGS identifier so replays compact onto the same partition slot.
func serializeAlert(event domain.Earthquake) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(event.State)},
			{Key: "magnitude", Value: []byte(strconv.FormatFloat(event.Magnitude, 'f', -1, 64))},
			{Key: "magnitude_class", Value: []byte(event.MagnitudeClass)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
