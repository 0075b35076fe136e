package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/observability"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/redis"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const idempotencyTTL = 24 * time.Hour

type AdoptionService interface {
	Create(ctx context.Context, actor access.Actor) (*models.Adoption, error)
	List(ctx context.Context, actor access.Actor) ([]models.Adoption, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Adoption, error)
	ListPets(ctx context.Context, actor access.Actor, id uuid.UUID) ([]models.AdoptPet, error)
	// AddPet is checkout. A non-empty requestID makes the call idempotent per user.
	AddPet(ctx context.Context, actor access.Actor, id uuid.UUID, petID int64, requestID string) (*models.AdoptPet, error)
}

type adoptionService struct {
	adoptionRepo repository.AdoptionRepository
	redisClient  redis.RedisClient
	events       *EventPublisher
}

func NewAdoptionService(
	adoptionRepo repository.AdoptionRepository,
	redisClient redis.RedisClient,
	events *EventPublisher,
) *adoptionService {
	return &adoptionService{
		adoptionRepo: adoptionRepo,
		redisClient:  redisClient,
		events:       events,
	}
}

func (s *adoptionService) Create(ctx context.Context, actor access.Actor) (*models.Adoption, error) {
	ctx, span := otel.Tracer("adoption-service").Start(ctx, "CreateAdoption")
	defer span.End()

	if err := access.Authorize(access.Owner, actor, access.ActionCreate, 0); err != nil {
		return nil, err
	}

	exists, err := s.adoptionRepo.ExistsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "adoption exists")
		return nil, pkgerrors.ErrAdoptionExists
	}

	return s.adoptionRepo.Create(ctx, actor.UserID)
}

func (s *adoptionService) List(ctx context.Context, actor access.Actor) ([]models.Adoption, error) {
	ctx, span := otel.Tracer("adoption-service").Start(ctx, "ListAdoptions")
	defer span.End()

	if err := access.Authorize(access.Owner, actor, access.ActionRead, 0); err != nil {
		return nil, err
	}

	userID := actor.UserID
	if actor.IsStaff {
		userID = 0
	}
	adoptions, err := s.adoptionRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachAdoptPets(ctx, s.adoptionRepo, adoptions); err != nil {
		return nil, err
	}
	return adoptions, nil
}

// owned loads an adoption and checks the actor may perform action on it.
func (s *adoptionService) owned(ctx context.Context, actor access.Actor, action access.Action, id uuid.UUID) (*models.Adoption, error) {
	if err := access.Authorize(access.Owner, actor, action, 0); err != nil {
		return nil, err
	}
	a, err := s.adoptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.Owner, actor, action, a.UserID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *adoptionService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Adoption, error) {
	ctx, span := otel.Tracer("adoption-service").Start(ctx, "GetAdoption")
	defer span.End()

	a, err := s.owned(ctx, actor, access.ActionRead, id)
	if err != nil {
		return nil, err
	}

	adoptions := []models.Adoption{*a}
	if err := attachAdoptPets(ctx, s.adoptionRepo, adoptions); err != nil {
		return nil, err
	}
	return &adoptions[0], nil
}

func (s *adoptionService) ListPets(ctx context.Context, actor access.Actor, id uuid.UUID) ([]models.AdoptPet, error) {
	ctx, span := otel.Tracer("adoption-service").Start(ctx, "ListAdoptionPets")
	defer span.End()

	if _, err := s.owned(ctx, actor, access.ActionRead, id); err != nil {
		return nil, err
	}
	return s.adoptionRepo.ListPets(ctx, []uuid.UUID{id})
}

func (s *adoptionService) AddPet(ctx context.Context, actor access.Actor, id uuid.UUID, petID int64, requestID string) (*models.AdoptPet, error) {
	ctx, span := otel.Tracer("adoption-service").Start(ctx, "AddPet")
	defer span.End()
	span.SetAttributes(attribute.String("adoption_id", id.String()), attribute.Int64("pet_id", petID))

	if petID <= 0 {
		return nil, pkgerrors.ErrInvalidInput.Withf("pet_id is required")
	}

	a, err := s.owned(ctx, actor, access.ActionCreate, id)
	if err != nil {
		return nil, err
	}

	var requestKey string
	if requestID != "" {
		requestKey = redis.RequestKey(actor.UserID, requestID)
		ok, err := s.redisClient.SetNX(ctx, requestKey, "pending", idempotencyTTL)
		if err != nil {
			span.RecordError(err)
			slog.Error("failed to set request key", "request_id", requestID, "error", err)
			return nil, err
		}
		if !ok {
			slog.Warn("request already processed", "request_id", requestID, "user_id", actor.UserID)
			span.SetStatus(codes.Error, "request already processed")
			return nil, pkgerrors.ErrRequestAlreadyProcessed
		}
	}

	ap, err := s.adoptionRepo.AddPet(ctx, a.ID, a.UserID, petID)
	if err != nil {
		if requestKey != "" {
			if delErr := s.redisClient.Del(ctx, requestKey); delErr != nil {
				slog.Error("failed to release request key", "request_id", requestID, "error", delErr)
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	observability.AdoptionsCompleted.Inc()
	s.events.walletEvent(a.UserID, petID, ap.Price.Neg(), models.TypeAdoption)

	slog.Info("pet adopted", "adoption_id", a.ID, "user_id", a.UserID, "pet_id", petID, "price", ap.Price.StringFixed(2))
	return ap, nil
}

// attachAdoptPets fills Pets on each adoption with a single query.
func attachAdoptPets(ctx context.Context, repo repository.AdoptionRepository, adoptions []models.Adoption) error {
	if len(adoptions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(adoptions))
	index := make(map[uuid.UUID]int, len(adoptions))
	for i := range adoptions {
		ids[i] = adoptions[i].ID
		index[adoptions[i].ID] = i
		adoptions[i].Pets = []models.AdoptPet{}
	}

	pets, err := repo.ListPets(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range pets {
		if i, ok := index[p.AdoptID]; ok {
			adoptions[i].Pets = append(adoptions[i].Pets, p)
		}
	}
	return nil
}
