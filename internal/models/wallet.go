package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the single balance of a user. Email is joined from users for display.
type Wallet struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Email     string          `db:"email"`
	Balance   decimal.Decimal `db:"balance"`
	UpdatedAt time.Time       `db:"updated_at"`
}
