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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const walletTracer = "wallet-repository"

const walletSelect = `SELECT w.id, w.user_id, u.email, w.balance, w.updated_at FROM wallets w JOIN users u ON u.id = w.user_id`

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (_ *models.Wallet, err error) {
	ctx, span, done := instrument(ctx, walletTracer, "GetWalletByUserID")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID))

	var w models.Wallet
	err = r.db.GetContext(ctx, &w, walletSelect+` WHERE w.user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Error("wallet not found", "method", "GetByUserID", "user_id", userID)
		return nil, pkgerrors.ErrWalletNotFound
	}
	if err != nil {
		slog.Error("failed to get wallet", "method", "GetByUserID", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) List(ctx context.Context) (_ []models.Wallet, err error) {
	ctx, _, done := instrument(ctx, walletTracer, "ListWallets")
	defer done(&err)

	wallets := []models.Wallet{}
	if err = r.db.SelectContext(ctx, &wallets, walletSelect+` ORDER BY w.id`); err != nil {
		slog.Error("failed to list wallets", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// upsert inserts a wallet for userID or applies setExpr to the existing row.
func (r *WalletRepository) upsert(ctx context.Context, method, setExpr string, userID int64, amount decimal.Decimal) (*models.Wallet, error) {
	query := `WITH w AS (
			INSERT INTO wallets (user_id, balance) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET balance = ` + setExpr + `, updated_at = NOW()
			RETURNING id, user_id, balance, updated_at
		)
		SELECT w.id, w.user_id, u.email, w.balance, w.updated_at FROM w JOIN users u ON u.id = w.user_id`

	var w models.Wallet
	err := r.db.GetContext(ctx, &w, query, userID, amount)
	if err != nil {
		switch pqCode(err) {
		case foreignKeyViolation:
			slog.Error("user does not exist", "method", method, "user_id", userID)
			return nil, pkgerrors.ErrUserDoesNotExist
		case numericOutOfRange:
			slog.Warn("wallet balance out of range", "method", method, "user_id", userID, "amount", amount.String())
			return nil, pkgerrors.ErrInvalidInput.Withf("balance must not exceed 99999999.99")
		}
		slog.Error("failed to update wallet", "method", method, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	slog.Info("wallet updated", "method", method, "user_id", userID, "balance", w.Balance.StringFixed(2))
	return &w, nil
}

func (r *WalletRepository) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (_ *models.Wallet, err error) {
	ctx, span, done := instrument(ctx, walletTracer, "TopUpWallet")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("amount", amount.String()))

	return r.upsert(ctx, "TopUp", "wallets.balance + EXCLUDED.balance", userID, amount)
}

func (r *WalletRepository) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) (_ *models.Wallet, err error) {
	ctx, span, done := instrument(ctx, walletTracer, "SetWalletBalance")
	defer done(&err)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("balance", balance.String()))

	return r.upsert(ctx, "SetBalance", "EXCLUDED.balance", userID, balance)
}
