package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/PetAdoptService/internal/models"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

const transactionTracer = "transaction-repository"

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.WalletTransaction) (_ int64, err error) {
	ctx, span, done := instrument(ctx, transactionTracer, "CreateTransaction")
	defer done(&err)

	if tx == nil {
		err = pkgerrors.ErrNilTransaction
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return 0, err
	}

	if !tx.Type.Valid() {
		err = pkgerrors.ErrInvalidTransactionType
		slog.Error("invalid transaction type", "method", "Create", "type", tx.Type, "error", err)
		return 0, err
	}

	// admin_set stores the new absolute balance, which may be zero.
	if tx.Type != models.TypeAdminSet && tx.Amount.IsZero() {
		err = fmt.Errorf("amount must be non-zero")
		slog.Error("amount must be non-zero", "method", "Create", "type", tx.Type, "error", err)
		return 0, err
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	span.SetAttributes(
		attribute.Int64("user_id", tx.UserID),
		attribute.Int64("related_id", tx.RelatedID),
		attribute.String("amount", tx.Amount.String()),
		attribute.String("type", string(tx.Type)),
	)

	query := `INSERT INTO wallet_transactions (user_id, related_id, amount, type, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = r.db.QueryRowxContext(ctx, query, tx.UserID, tx.RelatedID, tx.Amount, tx.Type, tx.CreatedAt).Scan(&tx.ID)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "user_id", tx.UserID, "type", tx.Type, "error", err)
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "id", tx.ID, "user_id", tx.UserID, "type", tx.Type)
	return tx.ID, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) (_ []models.WalletTransaction, err error) {
	ctx, span, done := instrument(ctx, transactionTracer, "ListTransactionsByUser")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID))

	txs := []models.WalletTransaction{}
	query := `SELECT id, user_id, related_id, amount, type, created_at FROM wallet_transactions
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	if err = r.db.SelectContext(ctx, &txs, query, userID); err != nil {
		slog.Error("failed to list transactions", "method", "ListByUser", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
