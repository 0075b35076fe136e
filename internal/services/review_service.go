package service

import (
	"context"
	"log/slog"

	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ReviewInput struct {
	Rating  int
	Comment string
}

func (in ReviewInput) validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return pkgerrors.ErrInvalidRating
	}
	return nil
}

type ReviewService interface {
	List(ctx context.Context, petID int64) ([]models.Review, error)
	Get(ctx context.Context, petID, id int64) (*models.Review, error)
	Create(ctx context.Context, actor access.Actor, petID int64, in ReviewInput) (*models.Review, error)
	Update(ctx context.Context, actor access.Actor, petID, id int64, in ReviewInput) (*models.Review, error)
	Delete(ctx context.Context, actor access.Actor, petID, id int64) error
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	petRepo      repository.PetRepository
	adoptionRepo repository.AdoptionRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	petRepo repository.PetRepository,
	adoptionRepo repository.AdoptionRepository,
) *reviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		petRepo:      petRepo,
		adoptionRepo: adoptionRepo,
	}
}

func (s *reviewService) List(ctx context.Context, petID int64) ([]models.Review, error) {
	ctx, span := otel.Tracer("review-service").Start(ctx, "ListReviews")
	defer span.End()

	if _, err := s.petRepo.GetByID(ctx, petID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByPets(ctx, []int64{petID})
}

func (s *reviewService) Get(ctx context.Context, petID, id int64) (*models.Review, error) {
	ctx, span := otel.Tracer("review-service").Start(ctx, "GetReview")
	defer span.End()

	return s.reviewRepo.GetByID(ctx, petID, id)
}

func (s *reviewService) Create(ctx context.Context, actor access.Actor, petID int64, in ReviewInput) (*models.Review, error) {
	ctx, span := otel.Tracer("review-service").Start(ctx, "CreateReview")
	defer span.End()
	span.SetAttributes(attribute.Int64("pet_id", petID), attribute.Int64("user_id", actor.UserID))

	if err := access.Authorize(access.AuthorOrReadOnly, actor, access.ActionCreate, 0); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	pet, err := s.petRepo.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}

	reviewed, err := s.reviewRepo.Exists(ctx, petID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		span.SetStatus(codes.Error, "already reviewed")
		return nil, pkgerrors.ErrAlreadyReviewed
	}

	if !pet.IsAdopted {
		span.SetStatus(codes.Error, "pet not adopted")
		return nil, pkgerrors.ErrPetNotAdopted
	}

	adopted, err := s.adoptionRepo.HasAdoptedPet(ctx, actor.UserID, petID)
	if err != nil {
		return nil, err
	}
	if !adopted {
		span.SetStatus(codes.Error, "not the adopter")
		return nil, pkgerrors.ErrNotAdopter
	}

	rv := &models.Review{PetID: petID, UserID: actor.UserID, Rating: in.Rating, Comment: in.Comment}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, err
	}

	slog.Info("review created", "review_id", rv.ID, "pet_id", petID, "user_id", actor.UserID)
	return s.reviewRepo.GetByID(ctx, petID, rv.ID)
}

func (s *reviewService) authored(ctx context.Context, actor access.Actor, action access.Action, petID, id int64) (*models.Review, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.ErrNotAuthenticated
	}
	rv, err := s.reviewRepo.GetByID(ctx, petID, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.AuthorOrReadOnly, actor, action, rv.UserID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *reviewService) Update(ctx context.Context, actor access.Actor, petID, id int64, in ReviewInput) (*models.Review, error) {
	ctx, span := otel.Tracer("review-service").Start(ctx, "UpdateReview")
	defer span.End()

	rv, err := s.authored(ctx, actor, access.ActionUpdate, petID, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	rv.Rating = in.Rating
	rv.Comment = in.Comment
	if err := s.reviewRepo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *reviewService) Delete(ctx context.Context, actor access.Actor, petID, id int64) error {
	ctx, span := otel.Tracer("review-service").Start(ctx, "DeleteReview")
	defer span.End()

	if _, err := s.authored(ctx, actor, access.ActionDelete, petID, id); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, petID, id); err != nil {
		return err
	}

	slog.Info("review deleted", "review_id", id, "pet_id", petID, "user_id", actor.UserID)
	return nil
}
