package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/storage"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxCategoryName = 30
	maxPetName      = 50
	maxBreed        = 50
)

type CategoryInput struct {
	Name        string
	Description *string
}

// PetInput carries writable pet fields. IsAdopted and Availability are only
// honoured for staff; nil keeps the current value on update.
type PetInput struct {
	CategoryID   int64
	Name         string
	Breed        string
	Age          decimal.Decimal
	Description  string
	Price        decimal.Decimal
	IsAdopted    *bool
	Availability *models.Availability
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListPets(ctx context.Context, actor access.Actor, filter models.PetFilter) ([]models.Pet, error)
	GetPet(ctx context.Context, actor access.Actor, id int64) (*models.Pet, error)
	CreatePet(ctx context.Context, actor access.Actor, in PetInput) (*models.Pet, error)
	UpdatePet(ctx context.Context, actor access.Actor, id int64, in PetInput) (*models.Pet, error)
	DeletePet(ctx context.Context, id int64) error
	MarkAdopted(ctx context.Context, id int64) error

	ListImages(ctx context.Context, actor access.Actor, petID int64) ([]models.PetImage, error)
	GetImage(ctx context.Context, actor access.Actor, petID, id int64) (*models.PetImage, error)
	AddImage(ctx context.Context, actor access.Actor, petID int64, url string) (*models.PetImage, error)
	UploadImage(ctx context.Context, actor access.Actor, petID int64, filename, contentType string, body io.Reader) (*models.PetImage, error)
	DeleteImage(ctx context.Context, petID, id int64) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	petRepo      repository.PetRepository
	imageRepo    repository.PetImageRepository
	reviewRepo   repository.ReviewRepository
	storage      storage.ImageStorage
}

// NewCatalogService builds the catalog. imageStorage may be nil, which disables uploads.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	petRepo repository.PetRepository,
	imageRepo repository.PetImageRepository,
	reviewRepo repository.ReviewRepository,
	imageStorage storage.ImageStorage,
) *catalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		petRepo:      petRepo,
		imageRepo:    imageRepo,
		reviewRepo:   reviewRepo,
		storage:      imageStorage,
	}
}

func (in CategoryInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return pkgerrors.ErrInvalidInput.Withf("name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return pkgerrors.ErrInvalidInput.Withf("name must be at most %d characters", maxCategoryName)
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "ListCategories")
	defer span.End()

	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "GetCategory")
	defer span.End()

	return s.categoryRepo.GetByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "CreateCategory")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &models.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "UpdateCategory")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &models.Category{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "DeleteCategory")
	defer span.End()

	return s.categoryRepo.Delete(ctx, id)
}

func (in PetInput) validate() error {
	switch {
	case in.CategoryID <= 0:
		return pkgerrors.ErrInvalidInput.Withf("category is required")
	case strings.TrimSpace(in.Name) == "":
		return pkgerrors.ErrInvalidInput.Withf("name is required")
	case utf8.RuneCountInString(in.Name) > maxPetName:
		return pkgerrors.ErrInvalidInput.Withf("name must be at most %d characters", maxPetName)
	case strings.TrimSpace(in.Breed) == "":
		return pkgerrors.ErrInvalidInput.Withf("breed is required")
	case utf8.RuneCountInString(in.Breed) > maxBreed:
		return pkgerrors.ErrInvalidInput.Withf("breed must be at most %d characters", maxBreed)
	case in.Age.IsNegative():
		return pkgerrors.ErrInvalidInput.Withf("age must not be negative")
	case in.Price.IsNegative():
		return pkgerrors.ErrInvalidInput.Withf("price must not be negative")
	case in.Availability != nil && !in.Availability.Valid():
		return pkgerrors.ErrInvalidAvailability
	}
	if err := checkMoney("age", in.Age); err != nil {
		return err
	}
	return checkMoney("price", in.Price)
}

func (s *catalogService) ListPets(ctx context.Context, actor access.Actor, filter models.PetFilter) ([]models.Pet, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "ListPets")
	defer span.End()

	filter.PublicOnly = !actor.Authenticated()
	pets, err := s.petRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.attachPetDetails(ctx, pets); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(pets)))
	return pets, nil
}

// visiblePet loads a pet, hiding non-public ones from anonymous callers.
func (s *catalogService) visiblePet(ctx context.Context, actor access.Actor, id int64) (*models.Pet, error) {
	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Authenticated() && pet.Availability != models.AvailabilityPublic {
		return nil, pkgerrors.ErrPetNotFound
	}
	return pet, nil
}

func (s *catalogService) GetPet(ctx context.Context, actor access.Actor, id int64) (*models.Pet, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "GetPet")
	defer span.End()

	pet, err := s.visiblePet(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	pets := []models.Pet{*pet}
	if err := s.attachPetDetails(ctx, pets); err != nil {
		return nil, err
	}
	return &pets[0], nil
}

// attachPetDetails fills Images and Reviews with two queries for the whole page.
func (s *catalogService) attachPetDetails(ctx context.Context, pets []models.Pet) error {
	if len(pets) == 0 {
		return nil
	}

	ids := make([]int64, len(pets))
	index := make(map[int64]int, len(pets))
	for i := range pets {
		ids[i] = pets[i].ID
		index[pets[i].ID] = i
		pets[i].Images = []models.PetImage{}
		pets[i].Reviews = []models.Review{}
	}

	images, err := s.imageRepo.ListByPets(ctx, ids)
	if err != nil {
		return err
	}
	for _, img := range images {
		if i, ok := index[img.PetID]; ok {
			pets[i].Images = append(pets[i].Images, img)
		}
	}

	reviews, err := s.reviewRepo.ListByPets(ctx, ids)
	if err != nil {
		return err
	}
	for _, rv := range reviews {
		if i, ok := index[rv.PetID]; ok {
			pets[i].Reviews = append(pets[i].Reviews, rv)
		}
	}
	return nil
}

func (s *catalogService) CreatePet(ctx context.Context, actor access.Actor, in PetInput) (*models.Pet, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "CreatePet")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	pet := &models.Pet{
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		Breed:        strings.TrimSpace(in.Breed),
		Age:          in.Age,
		Description:  in.Description,
		Price:        in.Price,
		Availability: models.AvailabilityPublic,
	}
	if actor.IsStaff {
		if in.IsAdopted != nil {
			pet.IsAdopted = *in.IsAdopted
		}
		if in.Availability != nil {
			pet.Availability = *in.Availability
		}
	}

	if err := s.petRepo.Create(ctx, pet); err != nil {
		return nil, err
	}
	pet.Images = []models.PetImage{}
	pet.Reviews = []models.Review{}

	slog.Info("pet created", "pet_id", pet.ID, "user_id", actor.UserID)
	return pet, nil
}

func (s *catalogService) UpdatePet(ctx context.Context, actor access.Actor, id int64, in PetInput) (*models.Pet, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "UpdatePet")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pet.CategoryID = in.CategoryID
	pet.Name = strings.TrimSpace(in.Name)
	pet.Breed = strings.TrimSpace(in.Breed)
	pet.Age = in.Age
	pet.Description = in.Description
	pet.Price = in.Price
	if actor.IsStaff {
		if in.IsAdopted != nil {
			// false never reverts an adopted pet
			pet.IsAdopted = pet.IsAdopted || *in.IsAdopted
		}
		if in.Availability != nil {
			pet.Availability = *in.Availability
		}
	}

	if err := s.petRepo.Update(ctx, pet); err != nil {
		return nil, err
	}
	return s.GetPet(ctx, actor, id)
}

func (s *catalogService) DeletePet(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "DeletePet")
	defer span.End()

	return s.petRepo.Delete(ctx, id)
}

func (s *catalogService) MarkAdopted(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "MarkAdopted")
	defer span.End()

	return s.petRepo.MarkAdopted(ctx, id)
}

func (s *catalogService) ListImages(ctx context.Context, actor access.Actor, petID int64) ([]models.PetImage, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "ListImages")
	defer span.End()

	if _, err := s.visiblePet(ctx, actor, petID); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByPets(ctx, []int64{petID})
}

func (s *catalogService) GetImage(ctx context.Context, actor access.Actor, petID, id int64) (*models.PetImage, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "GetImage")
	defer span.End()

	if _, err := s.visiblePet(ctx, actor, petID); err != nil {
		return nil, err
	}
	return s.imageRepo.GetByID(ctx, petID, id)
}

func (s *catalogService) AddImage(ctx context.Context, actor access.Actor, petID int64, url string) (*models.PetImage, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "AddImage")
	defer span.End()

	url = strings.TrimSpace(url)
	if url == "" {
		return nil, pkgerrors.ErrImageRequired
	}
	if _, err := s.petRepo.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	img := &models.PetImage{PetID: petID, Image: url}
	if err := s.imageRepo.Create(ctx, img); err != nil {
		return nil, err
	}

	slog.Info("pet image added", "pet_id", petID, "image_id", img.ID, "user_id", actor.UserID)
	return img, nil
}

func (s *catalogService) UploadImage(ctx context.Context, actor access.Actor, petID int64, filename, contentType string, body io.Reader) (*models.PetImage, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "UploadImage")
	defer span.End()

	if s.storage == nil {
		return nil, pkgerrors.ErrUploadUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.ErrInvalidInput.Withf("upload a valid image")
	}
	if _, err := s.petRepo.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	url, err := s.storage.Upload(ctx, storage.ObjectKey(petID, filename), contentType, body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img, err := s.AddImage(ctx, actor, petID, url)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrPetNotFound) {
			slog.Warn("pet removed during upload, object left behind", "pet_id", petID, "url", url)
		}
		return nil, err
	}
	return img, nil
}

func (s *catalogService) DeleteImage(ctx context.Context, petID, id int64) error {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "DeleteImage")
	defer span.End()

	return s.imageRepo.Delete(ctx, petID, id)
}
