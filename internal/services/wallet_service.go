package service

import (
	"context"
	"log/slog"

	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type WalletService interface {
	Get(ctx context.Context, userID int64) (*models.Wallet, error)
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Wallet, error)
	AdminSet(ctx context.Context, userID int64, balance decimal.Decimal) (*models.Wallet, error)
	List(ctx context.Context) ([]models.Wallet, error)
	History(ctx context.Context, userID int64) ([]models.WalletTransaction, error)
}

type walletService struct {
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	events          *EventPublisher
}

func NewWalletService(
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	events *EventPublisher,
) *walletService {
	return &walletService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		events:          events,
	}
}

func (s *walletService) Get(ctx context.Context, userID int64) (*models.Wallet, error) {
	ctx, span := otel.Tracer("wallet-service").Start(ctx, "GetWallet")
	defer span.End()

	return s.walletRepo.GetByUserID(ctx, userID)
}

func (s *walletService) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Wallet, error) {
	ctx, span := otel.Tracer("wallet-service").Start(ctx, "TopUp")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("amount", amount.String()))

	if !amount.IsPositive() {
		return nil, pkgerrors.ErrInvalidAmount
	}
	if err := checkMoney("amount", amount); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.TopUp(ctx, userID, amount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.events.walletEvent(userID, 0, amount, models.TypeTopUp)
	slog.Info("wallet topped up", "user_id", userID, "amount", amount.StringFixed(2), "balance", wallet.Balance.StringFixed(2))
	return wallet, nil
}

func (s *walletService) AdminSet(ctx context.Context, userID int64, balance decimal.Decimal) (*models.Wallet, error) {
	ctx, span := otel.Tracer("wallet-service").Start(ctx, "AdminSetBalance")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.String("balance", balance.String()))

	if userID <= 0 {
		return nil, pkgerrors.ErrUserDoesNotExist
	}
	if balance.IsNegative() {
		return nil, pkgerrors.ErrInvalidAmount.Withf("balance must not be negative")
	}
	if err := checkMoney("balance", balance); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.SetBalance(ctx, userID, balance)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.events.walletEvent(userID, 0, balance, models.TypeAdminSet)
	slog.Info("wallet balance set", "user_id", userID, "balance", wallet.Balance.StringFixed(2))
	return wallet, nil
}

func (s *walletService) List(ctx context.Context) ([]models.Wallet, error) {
	ctx, span := otel.Tracer("wallet-service").Start(ctx, "ListWallets")
	defer span.End()

	return s.walletRepo.List(ctx)
}

func (s *walletService) History(ctx context.Context, userID int64) ([]models.WalletTransaction, error) {
	ctx, span := otel.Tracer("wallet-service").Start(ctx, "History")
	defer span.End()

	txs, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("wallet history retrieved", "user_id", userID, "count", len(txs))
	return txs, nil
}

// maxMoney is the largest value a NUMERIC(10,2) column holds.
var maxMoney = decimal.RequireFromString("99999999.99")

// checkMoney rejects values that a NUMERIC(10,2) column would round or overflow.
func checkMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return pkgerrors.ErrInvalidInput.Withf("%s must have at most 2 decimal places", field)
	}
	if d.Abs().GreaterThan(maxMoney) {
		return pkgerrors.ErrInvalidInput.Withf("%s must not exceed %s", field, maxMoney.StringFixed(2))
	}
	return nil
}
