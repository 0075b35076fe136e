package repository

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
)

type ReviewRepository interface {
	Create(ctx context.Context, r *models.Review) error
	GetByID(ctx context.Context, petID, id int64) (*models.Review, error)
	ListByPets(ctx context.Context, petIDs []int64) ([]models.Review, error)
	Exists(ctx context.Context, petID, userID int64) (bool, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, petID, id int64) error
}
