package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/honeynil/PetAdoptService/internal/models"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const adoptionTracer = "adoption-repository"

const adoptionSelect = `SELECT a.id, a.user_id, COALESCE(w.balance, 0) AS user_balance, a.created_at
	FROM adoptions a LEFT JOIN wallets w ON w.user_id = a.user_id`

const adoptPetSelect = `SELECT ap.id, ap.adopt_id, ap.pet_id, p.name AS pet_name, c.name AS category_name, p.breed
	FROM adopt_pets ap
	JOIN pets p ON p.id = ap.pet_id
	JOIN categories c ON c.id = p.category_id`

type AdoptionRepository struct {
	db *sqlx.DB
}

func NewAdoptionRepository(db *sqlx.DB) *AdoptionRepository {
	return &AdoptionRepository{db: db}
}

func (r *AdoptionRepository) Create(ctx context.Context, userID int64) (_ *models.Adoption, err error) {
	ctx, span, done := instrument(ctx, adoptionTracer, "CreateAdoption")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID))

	a := &models.Adoption{ID: uuid.New(), UserID: userID}
	query := `WITH a AS (
			INSERT INTO adoptions (id, user_id) VALUES ($1, $2) RETURNING id, user_id, created_at
		)
		SELECT a.created_at, COALESCE(w.balance, 0) FROM a LEFT JOIN wallets w ON w.user_id = a.user_id`
	err = r.db.QueryRowxContext(ctx, query, a.ID, userID).Scan(&a.CreatedAt, &a.UserBalance)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			slog.Error("adoption already exists", "method", "Create", "user_id", userID)
			return nil, pkgerrors.ErrAdoptionExists
		}
		slog.Error("failed to create adoption", "method", "Create", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create adoption: %w", err)
	}

	a.Pets = []models.AdoptPet{}
	slog.Info("adoption created", "method", "Create", "adoption_id", a.ID, "user_id", userID)
	return a, nil
}

func (r *AdoptionRepository) ExistsForUser(ctx context.Context, userID int64) (_ bool, err error) {
	ctx, _, done := instrument(ctx, adoptionTracer, "AdoptionExistsForUser")
	defer done(&err)

	var exists bool
	if err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM adoptions WHERE user_id = $1)`, userID); err != nil {
		slog.Error("failed to check adoption", "method", "ExistsForUser", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to check adoption: %w", err)
	}
	return exists, nil
}

func (r *AdoptionRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *models.Adoption, err error) {
	ctx, span, done := instrument(ctx, adoptionTracer, "GetAdoptionByID")
	defer done(&err)
	span.SetAttributes(attribute.String("adoption_id", id.String()))

	var a models.Adoption
	err = r.db.GetContext(ctx, &a, adoptionSelect+` WHERE a.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrAdoptionNotFound
	}
	if err != nil {
		slog.Error("failed to get adoption", "method", "GetByID", "adoption_id", id, "error", err)
		return nil, fmt.Errorf("failed to get adoption: %w", err)
	}
	return &a, nil
}

func (r *AdoptionRepository) List(ctx context.Context, userID int64) (_ []models.Adoption, err error) {
	ctx, span, done := instrument(ctx, adoptionTracer, "ListAdoptions")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID))

	adoptions := []models.Adoption{}
	if userID == 0 {
		err = r.db.SelectContext(ctx, &adoptions, adoptionSelect+` ORDER BY a.created_at`)
	} else {
		err = r.db.SelectContext(ctx, &adoptions, adoptionSelect+` WHERE a.user_id = $1 ORDER BY a.created_at`, userID)
	}
	if err != nil {
		slog.Error("failed to list adoptions", "method", "List", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list adoptions: %w", err)
	}
	return adoptions, nil
}

func (r *AdoptionRepository) ListPets(ctx context.Context, adoptIDs []uuid.UUID) (_ []models.AdoptPet, err error) {
	ctx, _, done := instrument(ctx, adoptionTracer, "ListAdoptPets")
	defer done(&err)

	pets := []models.AdoptPet{}
	if len(adoptIDs) == 0 {
		return pets, nil
	}
	ids := make([]string, len(adoptIDs))
	for i, id := range adoptIDs {
		ids[i] = id.String()
	}
	if err = r.db.SelectContext(ctx, &pets, adoptPetSelect+` WHERE ap.adopt_id = ANY($1::uuid[]) ORDER BY ap.id`, pq.Array(ids)); err != nil {
		slog.Error("failed to list adoption pets", "method", "ListPets", "error", err)
		return nil, fmt.Errorf("failed to list adoption pets: %w", err)
	}
	return pets, nil
}

// AddPet runs checkout in one transaction. The pet and wallet rows are locked
// before they are checked, and both updates are conditional, so a lost race
// rolls back instead of double selling or overdrawing.
func (r *AdoptionRepository) AddPet(ctx context.Context, adoptID uuid.UUID, userID, petID int64) (_ *models.AdoptPet, err error) {
	ctx, span, done := instrument(ctx, adoptionTracer, "AddPetToAdoption")
	defer done(&err)
	span.SetAttributes(
		attribute.String("adoption_id", adoptID.String()),
		attribute.Int64("user_id", userID),
		attribute.Int64("pet_id", petID),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "method", "AddPet", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback failed", "method", "AddPet", "error", rbErr)
			}
		}
	}()

	var pet struct {
		Name         string          `db:"name"`
		Breed        string          `db:"breed"`
		Price        decimal.Decimal `db:"price"`
		IsAdopted    bool            `db:"is_adopted"`
		CategoryName string          `db:"category_name"`
	}
	err = tx.GetContext(ctx, &pet, `SELECT p.name, p.breed, p.price, p.is_adopted, c.name AS category_name
		FROM pets p JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1 FOR UPDATE OF p`, petID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrPetNotFound
	}
	if err != nil {
		slog.Error("failed to lock pet", "method", "AddPet", "pet_id", petID, "error", err)
		return nil, fmt.Errorf("failed to lock pet: %w", err)
	}
	if pet.IsAdopted {
		return nil, pkgerrors.ErrPetAlreadyAdopted.Withf("pet '%s' is already adopted", pet.Name)
	}

	var balance decimal.Decimal
	err = tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrInsufficientBalance
	}
	if err != nil {
		slog.Error("failed to lock wallet", "method", "AddPet", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if balance.LessThan(pet.Price) {
		slog.Info("insufficient balance", "method", "AddPet", "user_id", userID, "balance", balance.StringFixed(2), "price", pet.Price.StringFixed(2))
		return nil, pkgerrors.ErrInsufficientBalance
	}

	res, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = balance - $1, updated_at = NOW() WHERE user_id = $2 AND balance >= $1`,
		pet.Price, userID)
	if err != nil {
		if pqCode(err) == numericOutOfRange {
			return nil, pkgerrors.ErrInvalidInput.Withf("price out of range")
		}
		slog.Error("failed to debit wallet", "method", "AddPet", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if err = requireAffected(res, pkgerrors.ErrInsufficientBalance); err != nil {
		return nil, err
	}

	res, err = tx.ExecContext(ctx, `UPDATE pets SET is_adopted = true WHERE id = $1 AND is_adopted = false`, petID)
	if err != nil {
		slog.Error("failed to mark pet adopted", "method", "AddPet", "pet_id", petID, "error", err)
		return nil, fmt.Errorf("failed to mark pet adopted: %w", err)
	}
	if err = requireAffected(res, pkgerrors.ErrPetAlreadyAdopted.Withf("pet '%s' is already adopted", pet.Name)); err != nil {
		return nil, err
	}

	ap := &models.AdoptPet{
		AdoptID:      adoptID,
		PetID:        petID,
		PetName:      pet.Name,
		CategoryName: pet.CategoryName,
		Breed:        pet.Breed,
		Price:        pet.Price,
	}
	err = tx.QueryRowxContext(ctx, `INSERT INTO adopt_pets (adopt_id, pet_id) VALUES ($1, $2) RETURNING id`, adoptID, petID).Scan(&ap.ID)
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return nil, pkgerrors.ErrPetAlreadyAdopted.Withf("pet '%s' is already adopted", pet.Name)
		case foreignKeyViolation:
			return nil, pkgerrors.ErrAdoptionNotFound
		}
		slog.Error("failed to link pet to adoption", "method", "AddPet", "adoption_id", adoptID, "pet_id", petID, "error", err)
		return nil, fmt.Errorf("failed to link pet to adoption: %w", err)
	}

	if err = tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "method", "AddPet", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("pet adopted", "method", "AddPet", "adoption_id", adoptID, "user_id", userID, "pet_id", petID, "price", pet.Price.StringFixed(2))
	return ap, nil
}

func (r *AdoptionRepository) HasAdoptedPet(ctx context.Context, userID, petID int64) (_ bool, err error) {
	ctx, _, done := instrument(ctx, adoptionTracer, "HasAdoptedPet")
	defer done(&err)

	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM adopt_pets ap JOIN adoptions a ON a.id = ap.adopt_id
		WHERE a.user_id = $1 AND ap.pet_id = $2)`
	if err = r.db.GetContext(ctx, &exists, query, userID, petID); err != nil {
		slog.Error("failed to check adopted pet", "method", "HasAdoptedPet", "user_id", userID, "pet_id", petID, "error", err)
		return false, fmt.Errorf("failed to check adopted pet: %w", err)
	}
	return exists, nil
}
