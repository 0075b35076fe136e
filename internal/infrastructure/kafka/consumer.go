package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/honeynil/PetAdoptService/internal/infrastructure/observability"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer persists wallet events into the transaction ledger.
type Consumer struct {
	reader          messageReader
	transactionRepo repository.TransactionRepository
}

func NewConsumer(brokers []string, groupID string, transactionRepo repository.TransactionRepository) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    TopicWalletEvents,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		transactionRepo: transactionRepo,
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("wallet event consumer stopped")
				return
			}
			slog.Error("failed to read Kafka message", "topic", TopicWalletEvents, "error", err)
			continue
		}

		slog.Info("Kafka message received", "topic", msg.Topic, "key", string(msg.Key))

		if err := c.HandleMessage(ctx, msg); err != nil {
			// TODO: Send to dead-letter queue
			observability.WalletEventsConsumed.WithLabelValues("error").Inc()
			slog.Error("failed to handle wallet event", "key", string(msg.Key), "error", err)
			continue
		}
		observability.WalletEventsConsumed.WithLabelValues("success").Inc()
	}
}

func (c *Consumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event WalletEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal wallet event: %w", err)
	}

	txType := models.TransactionType(event.Type)
	if !txType.Valid() {
		return fmt.Errorf("%w: %q", pkgerrors.ErrInvalidTransactionType, event.Type)
	}
	if event.UserID == 0 {
		return fmt.Errorf("invalid wallet event: missing user_id")
	}

	tx := &models.WalletTransaction{
		UserID:    event.UserID,
		RelatedID: event.RelatedID,
		Amount:    event.Amount,
		Type:      txType,
		CreatedAt: event.CreatedAt,
	}
	id, err := c.transactionRepo.Create(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	slog.Info("wallet transaction recorded", "transaction_id", id, "user_id", event.UserID, "type", event.Type, "amount", event.Amount.String())
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
