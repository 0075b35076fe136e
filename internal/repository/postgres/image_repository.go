package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/PetAdoptService/internal/models"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

const imageTracer = "pet-image-repository"

type PetImageRepository struct {
	db *sqlx.DB
}

func NewPetImageRepository(db *sqlx.DB) *PetImageRepository {
	return &PetImageRepository{db: db}
}

func (r *PetImageRepository) Create(ctx context.Context, img *models.PetImage) (err error) {
	ctx, span, done := instrument(ctx, imageTracer, "CreatePetImage")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", img.PetID))

	err = r.db.QueryRowxContext(ctx, `INSERT INTO pet_images (pet_id, image) VALUES ($1, $2) RETURNING id`,
		img.PetID, img.Image).Scan(&img.ID)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return pkgerrors.ErrPetNotFound
		}
		slog.Error("failed to create pet image", "method", "Create", "pet_id", img.PetID, "error", err)
		return fmt.Errorf("failed to create pet image: %w", err)
	}

	slog.Info("pet image created", "method", "Create", "pet_id", img.PetID, "image_id", img.ID)
	return nil
}

func (r *PetImageRepository) GetByID(ctx context.Context, petID, id int64) (_ *models.PetImage, err error) {
	ctx, span, done := instrument(ctx, imageTracer, "GetPetImageByID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", petID), attribute.Int64("image_id", id))

	var img models.PetImage
	err = r.db.GetContext(ctx, &img, `SELECT id, pet_id, image FROM pet_images WHERE id = $1 AND pet_id = $2`, id, petID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrImageNotFound
	}
	if err != nil {
		slog.Error("failed to get pet image", "method", "GetByID", "image_id", id, "error", err)
		return nil, fmt.Errorf("failed to get pet image: %w", err)
	}
	return &img, nil
}

func (r *PetImageRepository) ListByPets(ctx context.Context, petIDs []int64) (_ []models.PetImage, err error) {
	ctx, _, done := instrument(ctx, imageTracer, "ListPetImages")
	defer done(&err)

	images := []models.PetImage{}
	if len(petIDs) == 0 {
		return images, nil
	}
	err = r.db.SelectContext(ctx, &images, `SELECT id, pet_id, image FROM pet_images WHERE pet_id = ANY($1) ORDER BY id`,
		pq.Array(petIDs))
	if err != nil {
		slog.Error("failed to list pet images", "method", "ListByPets", "error", err)
		return nil, fmt.Errorf("failed to list pet images: %w", err)
	}
	return images, nil
}

func (r *PetImageRepository) Delete(ctx context.Context, petID, id int64) (err error) {
	ctx, span, done := instrument(ctx, imageTracer, "DeletePetImage")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", petID), attribute.Int64("image_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM pet_images WHERE id = $1 AND pet_id = $2`, id, petID)
	if err != nil {
		slog.Error("failed to delete pet image", "method", "Delete", "image_id", id, "error", err)
		return fmt.Errorf("failed to delete pet image: %w", err)
	}
	return requireAffected(res, pkgerrors.ErrImageNotFound)
}
