package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/honeynil/PetAdoptService/internal/models"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

const petTracer = "pet-repository"

const petColumns = `id, category_id, name, breed, age, description, price, is_adopted, availability`

var petOrderings = map[string]bool{
	"id":    true,
	"name":  true,
	"price": true,
	"age":   true,
	"breed": true,
}

type PetRepository struct {
	db *sqlx.DB
}

func NewPetRepository(db *sqlx.DB) *PetRepository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Create(ctx context.Context, p *models.Pet) (err error) {
	ctx, span, done := instrument(ctx, petTracer, "CreatePet")
	defer done(&err)
	span.SetAttributes(attribute.Int64("category_id", p.CategoryID))

	query := `INSERT INTO pets (category_id, name, breed, age, description, price, is_adopted, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err = r.db.QueryRowxContext(ctx, query,
		p.CategoryID, p.Name, p.Breed, p.Age, p.Description, p.Price, p.IsAdopted, p.Availability,
	).Scan(&p.ID)
	if err != nil {
		switch pqCode(err) {
		case foreignKeyViolation:
			return pkgerrors.ErrCategoryNotFound
		case numericOutOfRange:
			return pkgerrors.ErrInvalidInput.Withf("age or price out of range")
		}
		slog.Error("failed to create pet", "method", "Create", "name", p.Name, "error", err)
		return fmt.Errorf("failed to create pet: %w", err)
	}

	slog.Info("pet created", "method", "Create", "pet_id", p.ID, "category_id", p.CategoryID)
	return nil
}

func (r *PetRepository) GetByID(ctx context.Context, id int64) (_ *models.Pet, err error) {
	ctx, span, done := instrument(ctx, petTracer, "GetPetByID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", id))

	var p models.Pet
	err = r.db.GetContext(ctx, &p, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrPetNotFound
	}
	if err != nil {
		slog.Error("failed to get pet", "method", "GetByID", "pet_id", id, "error", err)
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &p, nil
}

func (r *PetRepository) List(ctx context.Context, filter models.PetFilter) (_ []models.Pet, err error) {
	ctx, _, done := instrument(ctx, petTracer, "ListPets")
	defer done(&err)

	query, args := buildPetListQuery(filter)

	pets := []models.Pet{}
	if err = r.db.SelectContext(ctx, &pets, query, args...); err != nil {
		slog.Error("failed to list pets", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return pets, nil
}

func buildPetListQuery(filter models.PetFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.PublicOnly {
		args = append(args, models.AvailabilityPublic)
		conds = append(conds, fmt.Sprintf("availability = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.IsAdopted != nil {
		args = append(args, *filter.IsAdopted)
		conds = append(conds, fmt.Sprintf("is_adopted = $%d", len(args)))
	}

	query := `SELECT ` + petColumns + ` FROM pets`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY ` + petOrderBy(filter.Ordering), args
}

// petOrderBy turns an ordering like "-price" into an ORDER BY clause.
// Unknown columns fall back to id.
func petOrderBy(ordering string) string {
	column, desc := strings.CutPrefix(ordering, "-")
	if !petOrderings[column] {
		return "id"
	}
	if desc {
		return column + " DESC, id"
	}
	if column == "id" {
		return "id"
	}
	return column + ", id"
}

func (r *PetRepository) Update(ctx context.Context, p *models.Pet) (err error) {
	ctx, span, done := instrument(ctx, petTracer, "UpdatePet")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", p.ID))

	// is_adopted can only be raised here.
	query := `UPDATE pets SET category_id = $1, name = $2, breed = $3, age = $4, description = $5,
		price = $6, is_adopted = is_adopted OR $7, availability = $8 WHERE id = $9 RETURNING is_adopted`
	err = r.db.QueryRowxContext(ctx, query,
		p.CategoryID, p.Name, p.Breed, p.Age, p.Description, p.Price, p.IsAdopted, p.Availability, p.ID,
	).Scan(&p.IsAdopted)
	if errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.ErrPetNotFound
	}
	if err != nil {
		switch pqCode(err) {
		case foreignKeyViolation:
			return pkgerrors.ErrCategoryNotFound
		case numericOutOfRange:
			return pkgerrors.ErrInvalidInput.Withf("age or price out of range")
		}
		slog.Error("failed to update pet", "method", "Update", "pet_id", p.ID, "error", err)
		return fmt.Errorf("failed to update pet: %w", err)
	}

	slog.Info("pet updated", "method", "Update", "pet_id", p.ID)
	return nil
}

func (r *PetRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span, done := instrument(ctx, petTracer, "DeletePet")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete pet", "method", "Delete", "pet_id", id, "error", err)
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	if err = requireAffected(res, pkgerrors.ErrPetNotFound); err != nil {
		return err
	}

	slog.Info("pet deleted", "method", "Delete", "pet_id", id)
	return nil
}

func (r *PetRepository) MarkAdopted(ctx context.Context, id int64) (err error) {
	ctx, span, done := instrument(ctx, petTracer, "MarkPetAdopted")
	defer done(&err)
	span.SetAttributes(attribute.Int64("pet_id", id))

	res, err := r.db.ExecContext(ctx, `UPDATE pets SET is_adopted = true WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to mark pet adopted", "method", "MarkAdopted", "pet_id", id, "error", err)
		return fmt.Errorf("failed to mark pet adopted: %w", err)
	}
	if err = requireAffected(res, pkgerrors.ErrPetNotFound); err != nil {
		return err
	}

	slog.Info("pet marked as adopted", "method", "MarkAdopted", "pet_id", id)
	return nil
}
