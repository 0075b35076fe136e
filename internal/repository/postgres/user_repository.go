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

const userTracer = "user-repository"

const userColumns = `id, email, password_hash, first_name, last_name, phone_number, address, is_staff, is_verified, created_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, span, done := instrument(ctx, userTracer, "CreateUser")
	defer done(&err)

	if user == nil {
		err = pkgerrors.ErrNilUser
		slog.Error("failed to create user", "method", "Create", "error", err)
		return err
	}
	span.SetAttributes(attribute.String("email", user.Email))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO users (email, password_hash, first_name, last_name, phone_number, address, is_staff, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.Address, user.IsStaff, user.IsVerified,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			slog.Error("user already exists", "method", "Create", "email", user.Email)
			return pkgerrors.ErrUserAlreadyExists
		}
		slog.Error("failed to create user", "method", "Create", "email", user.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, 0)`, user.ID); err != nil {
		slog.Error("failed to create wallet", "method", "Create", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("user created", "method", "Create", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (_ *models.User, err error) {
	ctx, span, done := instrument(ctx, userTracer, "GetUserByID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", id))

	var user models.User
	err = r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Error("user not found", "method", "GetByID", "user_id", id)
		return nil, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, span, done := instrument(ctx, userTracer, "GetUserByEmail")
	defer done(&err)
	span.SetAttributes(attribute.String("email", email))

	var user models.User
	err = r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Error("user not found", "method", "GetByEmail", "email", email)
		return nil, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to get user by email", "method", "GetByEmail", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}
