// Package kafka publica las alertas de umbral de stock en Kafka (sarama).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// EventTypeStockThreshold valor del header event_type.
const EventTypeStockThreshold = "inventory.stock.threshold"

var _ inventory.ThresholdNotifier = (*ThresholdNotifier)(nil)

// ThresholdEvent cuerpo JSON publicado por cada alerta.
type ThresholdEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Kind          string    `json:"kind"` // BELOW_MIN | ABOVE_MAX
	TransactionID int64     `json:"transaction_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	SKU           string    `json:"sku"`
	CurrentStock  int64     `json:"current_stock"`
	MinStock      int64     `json:"min_stock"`
	MaxStock      int64     `json:"max_stock"`
	Timestamp     time.Time `json:"timestamp"`
}

// ThresholdNotifier productor síncrono: Notify vuelve cuando el broker confirmó todos los mensajes.
// El motor lo invoca en segundo plano, así que la espera no llega a la respuesta HTTP.
type ThresholdNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewThresholdNotifier conecta con los brokers.
func NewThresholdNotifier(brokers []string, topic string, log zerolog.Logger) (*ThresholdNotifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("notificador kafka inicializado")
	return NewThresholdNotifierWithProducer(producer, topic, log), nil
}

// NewThresholdNotifierWithProducer usa un productor ya creado (tests, productor compartido).
func NewThresholdNotifierWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *ThresholdNotifier {
	return &ThresholdNotifier{producer: producer, topic: topic, log: log}
}

// Notify publica una alerta por mensaje, con el id del producto como key (orden por producto).
func (n *ThresholdNotifier) Notify(_ context.Context, warnings []entity.ThresholdWarning) error {
	if len(warnings) == 0 {
		return nil
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(warnings))
	for _, w := range warnings {
		msg, err := n.message(w)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := n.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("publicar alertas de umbral: %w", err)
	}
	for _, msg := range msgs {
		n.log.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("alerta de umbral publicada")
	}
	return nil
}

func (n *ThresholdNotifier) message(w entity.ThresholdWarning) (*sarama.ProducerMessage, error) {
	event := ThresholdEvent{
		EventID:       w.ID,
		EventType:     EventTypeStockThreshold,
		Kind:          w.Kind,
		TransactionID: w.TransactionID,
		ProductID:     w.ProductID,
		ProductName:   w.ProductName,
		SKU:           w.SKU,
		CurrentStock:  w.CurrentStock,
		MinStock:      w.MinStock,
		MaxStock:      w.MaxStock,
		Timestamp:     w.At,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("serializar alerta: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(w.ProductID, 10)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeStockThreshold)},
			{Key: []byte("event_id"), Value: []byte(w.ID)},
		},
	}, nil
}

// Close cierra el productor.
func (n *ThresholdNotifier) Close() error {
	return n.producer.Close()
}
