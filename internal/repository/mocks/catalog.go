package mocks

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Category)
	return c, args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) Create(ctx context.Context, p *models.Pet) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPetRepository) GetByID(ctx context.Context, id int64) (*models.Pet, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Pet)
	return p, args.Error(1)
}

func (m *MockPetRepository) List(ctx context.Context, filter models.PetFilter) ([]models.Pet, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).([]models.Pet)
	return p, args.Error(1)
}

func (m *MockPetRepository) Update(ctx context.Context, p *models.Pet) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPetRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPetRepository) MarkAdopted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPetImageRepository struct {
	mock.Mock
}

func (m *MockPetImageRepository) Create(ctx context.Context, img *models.PetImage) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

func (m *MockPetImageRepository) GetByID(ctx context.Context, petID, id int64) (*models.PetImage, error) {
	args := m.Called(ctx, petID, id)
	img, _ := args.Get(0).(*models.PetImage)
	return img, args.Error(1)
}

func (m *MockPetImageRepository) ListByPets(ctx context.Context, petIDs []int64) ([]models.PetImage, error) {
	args := m.Called(ctx, petIDs)
	imgs, _ := args.Get(0).([]models.PetImage)
	return imgs, args.Error(1)
}

func (m *MockPetImageRepository) Delete(ctx context.Context, petID, id int64) error {
	args := m.Called(ctx, petID, id)
	return args.Error(0)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *models.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, petID, id int64) (*models.Review, error) {
	args := m.Called(ctx, petID, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *MockReviewRepository) ListByPets(ctx context.Context, petIDs []int64) ([]models.Review, error) {
	args := m.Called(ctx, petIDs)
	r, _ := args.Get(0).([]models.Review)
	return r, args.Error(1)
}

func (m *MockReviewRepository) Exists(ctx context.Context, petID, userID int64) (bool, error) {
	args := m.Called(ctx, petID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, r *models.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, petID, id int64) error {
	args := m.Called(ctx, petID, id)
	return args.Error(0)
}
