package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletEvent describes a committed wallet mutation. Amount is signed.
type WalletEvent struct {
	UserID    int64           `json:"user_id"`
	RelatedID int64           `json:"related_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserRegisteredEvent struct {
	EventType string    `json:"event_type"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
