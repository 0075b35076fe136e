package repository

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
)

type UserRepository interface {
	// Create stores the user together with an empty wallet.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
