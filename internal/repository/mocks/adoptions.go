package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockAdoptionRepository struct {
	mock.Mock
}

func (m *MockAdoptionRepository) Create(ctx context.Context, userID int64) (*models.Adoption, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(*models.Adoption)
	return a, args.Error(1)
}

func (m *MockAdoptionRepository) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdoptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Adoption)
	return a, args.Error(1)
}

func (m *MockAdoptionRepository) List(ctx context.Context, userID int64) ([]models.Adoption, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).([]models.Adoption)
	return a, args.Error(1)
}

func (m *MockAdoptionRepository) ListPets(ctx context.Context, adoptIDs []uuid.UUID) ([]models.AdoptPet, error) {
	args := m.Called(ctx, adoptIDs)
	p, _ := args.Get(0).([]models.AdoptPet)
	return p, args.Error(1)
}

func (m *MockAdoptionRepository) AddPet(ctx context.Context, adoptID uuid.UUID, userID, petID int64) (*models.AdoptPet, error) {
	args := m.Called(ctx, adoptID, userID, petID)
	p, _ := args.Get(0).(*models.AdoptPet)
	return p, args.Error(1)
}

func (m *MockAdoptionRepository) HasAdoptedPet(ctx context.Context, userID, petID int64) (bool, error) {
	args := m.Called(ctx, userID, petID)
	return args.Bool(0), args.Error(1)
}
