package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/noaa-station-export/internal/config"
	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"github.com/couchcryptid/noaa-station-export/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// publishBatchSize bounds the number of messages handed to one WriteMessages call.
const publishBatchSize = 500

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes finished station tables to a Kafka topic, one message per station.
// It implements pipeline.TablePublisher.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured station topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// PublishTable serializes every row and writes them in order, in batches.
func (w *Writer) PublishTable(ctx context.Context, runID string, table *domain.StationTable) error {
	rows := table.Rows()
	for start := 0; start < len(rows); start += publishBatchSize {
		end := min(start+publishBatchSize, len(rows))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, row := range rows[start:end] {
			msg, err := serializeToMessage(runID, row)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write messages %d-%d: %w", start, end, err)
		}
		w.metrics.MessagesPublished.Add(float64(len(msgs)))
		w.logger.Debug("published station batch", "run_id", runID, "from", start, "to", end)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// stationMessage is the JSON payload of one published station.
type stationMessage struct {
	RunID     string `json:"run_id"`
	StationID string `json:"station_id"`
	Country   string `json:"country"`
	State     string `json:"state,omitempty"`
	Name      string `json:"name,omitempty"`
	Latitude  any    `json:"latitude"`
	Longitude any    `json:"longitude"`
	Precision string `json:"precision,omitempty"`
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
}

// serializeToMessage marshals a StationRow into a Kafka message keyed by station ID.
func serializeToMessage(runID string, row domain.StationRow) (kafkago.Message, error) {
	data, err := json.Marshal(stationMessage{
		RunID:     runID,
		StationID: row.StationID,
		Country:   row.Country,
		State:     row.State,
		Name:      row.Name,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Precision: row.Precision,
		BeginDate: row.BeginDate.String(),
		EndDate:   row.EndDate.String(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %s: %w", row.StationID, err)
	}
	return kafkago.Message{
		Key:   []byte(row.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "country", Value: []byte(row.Country)},
			{Key: "state", Value: []byte(row.State)},
		},
	}, nil
}
