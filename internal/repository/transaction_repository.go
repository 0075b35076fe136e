package repository

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.WalletTransaction) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.WalletTransaction, error)
}
