package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/kafka"
	kafkamocks "github.com/honeynil/PetAdoptService/internal/infrastructure/kafka/mocks"
	redismocks "github.com/honeynil/PetAdoptService/internal/infrastructure/redis/mocks"
	"github.com/honeynil/PetAdoptService/internal/models"
	repositorymocks "github.com/honeynil/PetAdoptService/internal/repository/mocks"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adoptionDeps struct {
	adoptions *repositorymocks.MockAdoptionRepository
	redis     *redismocks.MockRedisClient
	producer  *kafkamocks.MockKafkaProducer
	events    *EventPublisher
}

func newAdoptionService() (*adoptionService, *adoptionDeps) {
	d := &adoptionDeps{
		adoptions: &repositorymocks.MockAdoptionRepository{},
		redis:     &redismocks.MockRedisClient{},
		producer:  &kafkamocks.MockKafkaProducer{},
	}
	d.events = NewEventPublisher(d.producer, 0)
	return NewAdoptionService(d.adoptions, d.redis, d.events), d
}

func TestAdoptionService_Create(t *testing.T) {
	ctx := context.Background()
	user := access.Actor{UserID: 1}

	t.Run("first adoption", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("ExistsForUser", mock.Anything, int64(1)).Return(false, nil)
		d.adoptions.On("Create", mock.Anything, int64(1)).Return(&models.Adoption{ID: uuid.New(), UserID: 1}, nil)

		a, err := s.Create(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.UserID)
	})

	t.Run("second adoption rejected", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("ExistsForUser", mock.Anything, int64(1)).Return(true, nil)

		_, err := s.Create(ctx, user)
		assert.ErrorIs(t, err, pkgerrors.ErrAdoptionExists)
		d.adoptions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		s, _ := newAdoptionService()
		_, err := s.Create(ctx, access.Actor{})
		assert.ErrorIs(t, err, pkgerrors.ErrNotAuthenticated)
	})
}

func TestAdoptionService_AddPet(t *testing.T) {
	ctx := context.Background()
	adoptID := uuid.New()
	owner := access.Actor{UserID: 1}
	adoption := &models.Adoption{ID: adoptID, UserID: 1}
	price := decimal.RequireFromString("40.00")

	t.Run("checkout debits wallet and emits ledger event", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)
		d.adoptions.On("AddPet", mock.Anything, adoptID, int64(1), int64(3)).
			Return(&models.AdoptPet{ID: 10, AdoptID: adoptID, PetID: 3, PetName: "Rex", Price: price}, nil)
		d.producer.On("Send", mock.Anything, kafka.TopicWalletEvents, int64(1), mock.Anything).Return(nil)

		ap, err := s.AddPet(ctx, owner, adoptID, 3, "")
		require.NoError(t, err)
		assert.Equal(t, int64(10), ap.ID)

		d.events.Wait()
		d.producer.AssertExpectations(t)
		d.redis.AssertNotCalled(t, "SetNX", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retry of adopted pet fails without events", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)
		d.adoptions.On("AddPet", mock.Anything, adoptID, int64(1), int64(3)).
			Return(nil, pkgerrors.ErrPetAlreadyAdopted.Withf("pet '%s' is already adopted", "Rex"))

		_, err := s.AddPet(ctx, owner, adoptID, 3, "")
		assert.ErrorIs(t, err, pkgerrors.ErrPetAlreadyAdopted)

		d.events.Wait()
		d.producer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign adoption forbidden", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)

		_, err := s.AddPet(ctx, access.Actor{UserID: 2}, adoptID, 3, "")
		assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
		d.adoptions.AssertNotCalled(t, "AddPet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("staff cannot buy into another user's adoption", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)

		_, err := s.AddPet(ctx, access.Actor{UserID: 9, IsStaff: true}, adoptID, 3, "")
		assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
	})

	t.Run("missing adoption", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(nil, pkgerrors.ErrAdoptionNotFound)

		_, err := s.AddPet(ctx, owner, adoptID, 3, "")
		assert.ErrorIs(t, err, pkgerrors.ErrAdoptionNotFound)
	})

	t.Run("missing pet id", func(t *testing.T) {
		s, _ := newAdoptionService()
		_, err := s.AddPet(ctx, owner, adoptID, 0, "")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("replayed idempotency key", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)
		d.redis.On("SetNX", mock.Anything, "request:1:abc", "pending", idempotencyTTL).Return(false, nil)

		_, err := s.AddPet(ctx, owner, adoptID, 3, "abc")
		assert.ErrorIs(t, err, pkgerrors.ErrRequestAlreadyProcessed)
		d.adoptions.AssertNotCalled(t, "AddPet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed checkout releases idempotency key", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)
		d.redis.On("SetNX", mock.Anything, "request:1:abc", "pending", idempotencyTTL).Return(true, nil)
		d.adoptions.On("AddPet", mock.Anything, adoptID, int64(1), int64(3)).Return(nil, pkgerrors.ErrInsufficientBalance)
		d.redis.On("Del", mock.Anything, "request:1:abc").Return(nil)

		_, err := s.AddPet(ctx, owner, adoptID, 3, "abc")
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		d.redis.AssertExpectations(t)
	})

	t.Run("idempotency store down", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, adoptID).Return(adoption, nil)
		d.redis.On("SetNX", mock.Anything, "request:1:abc", "pending", idempotencyTTL).Return(false, errors.New("redis down"))

		_, err := s.AddPet(ctx, owner, adoptID, 3, "abc")
		assert.ErrorContains(t, err, "redis down")
	})
}

func TestAdoptionService_List(t *testing.T) {
	ctx := context.Background()
	a1 := models.Adoption{ID: uuid.New(), UserID: 1}
	a2 := models.Adoption{ID: uuid.New(), UserID: 2}

	t.Run("staff see all", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("List", mock.Anything, int64(0)).Return([]models.Adoption{a1, a2}, nil)
		d.adoptions.On("ListPets", mock.Anything, []uuid.UUID{a1.ID, a2.ID}).
			Return([]models.AdoptPet{{ID: 1, AdoptID: a2.ID, PetID: 4}}, nil)

		adoptions, err := s.List(ctx, access.Actor{UserID: 9, IsStaff: true})
		require.NoError(t, err)
		require.Len(t, adoptions, 2)
		assert.Empty(t, adoptions[0].Pets)
		assert.Len(t, adoptions[1].Pets, 1)
	})

	t.Run("users see their own", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("List", mock.Anything, int64(1)).Return([]models.Adoption{a1}, nil)
		d.adoptions.On("ListPets", mock.Anything, []uuid.UUID{a1.ID}).Return([]models.AdoptPet{}, nil)

		adoptions, err := s.List(ctx, access.Actor{UserID: 1})
		require.NoError(t, err)
		assert.Len(t, adoptions, 1)
		d.adoptions.AssertExpectations(t)
	})

	t.Run("staff may read a foreign adoption", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, a1.ID).Return(&a1, nil)
		d.adoptions.On("ListPets", mock.Anything, []uuid.UUID{a1.ID}).Return([]models.AdoptPet{}, nil)

		a, err := s.Get(ctx, access.Actor{UserID: 9, IsStaff: true}, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, a1.ID, a.ID)
	})

	t.Run("users may not read a foreign adoption", func(t *testing.T) {
		s, d := newAdoptionService()
		d.adoptions.On("GetByID", mock.Anything, a1.ID).Return(&a1, nil)

		_, err := s.ListPets(ctx, access.Actor{UserID: 2}, a1.ID)
		assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
	})
}
