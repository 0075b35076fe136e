package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/honeynil/PetAdoptService/internal/infrastructure/kafka"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/shopspring/decimal"
)

const publishRetries = 3

// EventPublisher sends events to Kafka in the background, retrying with a
// linear backoff. Delivery is best effort.
type EventPublisher struct {
	producer kafka.KafkaProducer
	backoff  time.Duration
	wg       sync.WaitGroup
}

func NewEventPublisher(producer kafka.KafkaProducer, backoff time.Duration) *EventPublisher {
	return &EventPublisher{producer: producer, backoff: backoff}
}

func (p *EventPublisher) Publish(topic string, key int64, event any) {
	if p == nil || p.producer == nil {
		return
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal kafka event", "topic", topic, "key", key, "error", err)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for i := 0; i < publishRetries; i++ {
			if err := p.producer.Send(context.Background(), topic, key, eventBytes); err == nil {
				return
			}
			time.Sleep(p.backoff * time.Duration(i+1))
		}
		slog.Error("failed to send event after retries", "topic", topic, "key", key)
	}()
}

// Wait blocks until every pending event was sent or given up on.
func (p *EventPublisher) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}

func (p *EventPublisher) walletEvent(userID, relatedID int64, amount decimal.Decimal, txType models.TransactionType) {
	p.Publish(kafka.TopicWalletEvents, userID, kafka.WalletEvent{
		UserID:    userID,
		RelatedID: relatedID,
		Amount:    amount,
		Type:      string(txType),
		CreatedAt: time.Now().UTC(),
	})
}
