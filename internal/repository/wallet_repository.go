package repository

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/shopspring/decimal"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error)
	List(ctx context.Context) ([]models.Wallet, error)
	// TopUp adds amount to the wallet, creating it first when missing.
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Wallet, error)
	// SetBalance overwrites the balance, creating the wallet first when missing.
	SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) (*models.Wallet, error)
}
