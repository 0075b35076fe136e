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
	"go.opentelemetry.io/otel/attribute"
)

const categoryTracer = "category-repository"

const categorySelect = `SELECT c.id, c.name, c.description, COUNT(p.id) AS pet_count
	FROM categories c LEFT JOIN pets p ON p.category_id = c.id`

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) (err error) {
	ctx, span, done := instrument(ctx, categoryTracer, "CreateCategory")
	defer done(&err)
	span.SetAttributes(attribute.String("name", c.Name))

	err = r.db.QueryRowxContext(ctx, `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return pkgerrors.ErrCategoryExists
		}
		slog.Error("failed to create category", "method", "Create", "name", c.Name, "error", err)
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("category created", "method", "Create", "category_id", c.ID)
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (_ *models.Category, err error) {
	ctx, span, done := instrument(ctx, categoryTracer, "GetCategoryByID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("category_id", id))

	var c models.Category
	err = r.db.GetContext(ctx, &c, categorySelect+` WHERE c.id = $1 GROUP BY c.id`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrCategoryNotFound
	}
	if err != nil {
		slog.Error("failed to get category", "method", "GetByID", "category_id", id, "error", err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) (_ []models.Category, err error) {
	ctx, _, done := instrument(ctx, categoryTracer, "ListCategories")
	defer done(&err)

	categories := []models.Category{}
	if err = r.db.SelectContext(ctx, &categories, categorySelect+` GROUP BY c.id ORDER BY c.name`); err != nil {
		slog.Error("failed to list categories", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) (err error) {
	ctx, span, done := instrument(ctx, categoryTracer, "UpdateCategory")
	defer done(&err)
	span.SetAttributes(attribute.Int64("category_id", c.ID))

	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = $1, description = $2 WHERE id = $3`,
		c.Name, c.Description, c.ID)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return pkgerrors.ErrCategoryExists
		}
		slog.Error("failed to update category", "method", "Update", "category_id", c.ID, "error", err)
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res, pkgerrors.ErrCategoryNotFound)
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span, done := instrument(ctx, categoryTracer, "DeleteCategory")
	defer done(&err)
	span.SetAttributes(attribute.Int64("category_id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete category", "method", "Delete", "category_id", id, "error", err)
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err = requireAffected(res, pkgerrors.ErrCategoryNotFound); err != nil {
		return err
	}

	slog.Info("category deleted", "method", "Delete", "category_id", id)
	return nil
}
