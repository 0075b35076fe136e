package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/models"
)

type AdoptionRepository interface {
	Create(ctx context.Context, userID int64) (*models.Adoption, error)
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Adoption, error)
	// List returns every adoption when userID is 0, otherwise only that user's.
	List(ctx context.Context, userID int64) ([]models.Adoption, error)
	ListPets(ctx context.Context, adoptIDs []uuid.UUID) ([]models.AdoptPet, error)
	// AddPet debits the user's wallet by the pet price, marks the pet adopted and
	// links it to the adoption, all or nothing.
	AddPet(ctx context.Context, adoptID uuid.UUID, userID, petID int64) (*models.AdoptPet, error)
	HasAdoptedPet(ctx context.Context, userID, petID int64) (bool, error)
}
