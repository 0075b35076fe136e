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

const reviewTracer = "review-repository"

const reviewSelect = `SELECT r.id, r.pet_id, r.user_id, u.email AS user_email, r.rating, r.comment, r.created_at, r.updated_at
	FROM reviews r JOIN users u ON u.id = r.user_id`

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) (err error) {
	ctx, span, done := instrument(ctx, reviewTracer, "CreateReview")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", rv.PetID), attribute.Int64("user_id", rv.UserID))

	query := `INSERT INTO reviews (pet_id, user_id, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err = r.db.QueryRowxContext(ctx, query, rv.PetID, rv.UserID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return pkgerrors.ErrAlreadyReviewed
		case foreignKeyViolation:
			return pkgerrors.ErrPetNotFound
		}
		slog.Error("failed to create review", "method", "Create", "pet_id", rv.PetID, "user_id", rv.UserID, "error", err)
		return fmt.Errorf("failed to create review: %w", err)
	}

	slog.Info("review created", "method", "Create", "review_id", rv.ID, "pet_id", rv.PetID, "user_id", rv.UserID)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, petID, id int64) (_ *models.Review, err error) {
	ctx, span, done := instrument(ctx, reviewTracer, "GetReviewByID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", petID), attribute.Int64("review_id", id))

	var rv models.Review
	err = r.db.GetContext(ctx, &rv, reviewSelect+` WHERE r.id = $1 AND r.pet_id = $2`, id, petID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrReviewNotFound
	}
	if err != nil {
		slog.Error("failed to get review", "method", "GetByID", "review_id", id, "error", err)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &rv, nil
}

func (r *ReviewRepository) ListByPets(ctx context.Context, petIDs []int64) (_ []models.Review, err error) {
	ctx, _, done := instrument(ctx, reviewTracer, "ListReviews")
	defer done(&err)

	reviews := []models.Review{}
	if len(petIDs) == 0 {
		return reviews, nil
	}
	if err = r.db.SelectContext(ctx, &reviews, reviewSelect+` WHERE r.pet_id = ANY($1) ORDER BY r.id`, pq.Array(petIDs)); err != nil {
		slog.Error("failed to list reviews", "method", "ListByPets", "error", err)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) Exists(ctx context.Context, petID, userID int64) (_ bool, err error) {
	ctx, _, done := instrument(ctx, reviewTracer, "ReviewExists")
	defer done(&err)

	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM reviews WHERE pet_id = $1 AND user_id = $2)`, petID, userID)
	if err != nil {
		slog.Error("failed to check review", "method", "Exists", "pet_id", petID, "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return exists, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *models.Review) (err error) {
	ctx, span, done := instrument(ctx, reviewTracer, "UpdateReview")
	defer done(&err)
	span.SetAttributes(attribute.Int64("review_id", rv.ID))

	query := `UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW() WHERE id = $3 AND pet_id = $4 RETURNING updated_at`
	err = r.db.QueryRowxContext(ctx, query, rv.Rating, rv.Comment, rv.ID, rv.PetID).Scan(&rv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.ErrReviewNotFound
	}
	if err != nil {
		slog.Error("failed to update review", "method", "Update", "review_id", rv.ID, "error", err)
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, petID, id int64) (err error) {
	ctx, span, done := instrument(ctx, reviewTracer, "DeleteReview")
	defer done(&err)
	span.SetAttributes(attribute.Int64("review_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1 AND pet_id = $2`, id, petID)
	if err != nil {
		slog.Error("failed to delete review", "method", "Delete", "review_id", id, "error", err)
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return requireAffected(res, pkgerrors.ErrReviewNotFound)
}
