package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is an append-only ledger entry describing one wallet mutation.
type WalletTransaction struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	RelatedID int64           `db:"related_id" json:"related_id,omitempty"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Type      TransactionType `db:"type" json:"type"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type TransactionType string

const (
	TypeTopUp    TransactionType = "top_up"
	TypeAdminSet TransactionType = "admin_set"
	TypeAdoption TransactionType = "adoption"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeTopUp, TypeAdminSet, TypeAdoption:
		return true
	}
	return false
}
