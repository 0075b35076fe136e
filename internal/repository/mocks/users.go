// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletRepository) List(ctx context.Context) ([]models.Wallet, error) {
	args := m.Called(ctx)
	w, _ := args.Get(0).([]models.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletRepository) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletRepository) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, userID, balance)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.WalletTransaction) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID int64) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, userID)
	txs, _ := args.Get(0).([]models.WalletTransaction)
	return txs, args.Error(1)
}
