package repository

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
)

type PetRepository interface {
	Create(ctx context.Context, p *models.Pet) error
	GetByID(ctx context.Context, id int64) (*models.Pet, error)
	List(ctx context.Context, filter models.PetFilter) ([]models.Pet, error)
	Update(ctx context.Context, p *models.Pet) error
	Delete(ctx context.Context, id int64) error
	// MarkAdopted sets is_adopted without touching any wallet.
	MarkAdopted(ctx context.Context, id int64) error
}

type PetImageRepository interface {
	Create(ctx context.Context, img *models.PetImage) error
	GetByID(ctx context.Context, petID, id int64) (*models.PetImage, error)
	ListByPets(ctx context.Context, petIDs []int64) ([]models.PetImage, error)
	Delete(ctx context.Context, petID, id int64) error
}
