package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lockPetQuery    = `FOR UPDATE OF p`
	lockWalletQuery = `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`
	debitQuery      = `UPDATE wallets SET balance = balance - $1, updated_at = NOW() WHERE user_id = $2 AND balance >= $1`
	flipPetQuery    = `UPDATE pets SET is_adopted = true WHERE id = $1 AND is_adopted = false`
	linkPetQuery    = `INSERT INTO adopt_pets (adopt_id, pet_id) VALUES ($1, $2) RETURNING id`
)

var lockedPetColumns = []string{"name", "breed", "price", "is_adopted", "category_name"}

func TestAdoptionRepository_AddPet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAdoptionRepository(db)
	ctx := context.Background()
	adoptID := uuid.New()
	price := decimal.RequireFromString("40.00")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
		mock.ExpectExec(regexp.QuoteMeta(debitQuery)).
			WithArgs(price, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(flipPetQuery)).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(linkPetQuery)).
			WithArgs(adoptID, int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
		mock.ExpectCommit()

		ap, err := repo.AddPet(ctx, adoptID, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(10), ap.ID)
		assert.Equal(t, int64(3), ap.PetID)
		assert.Equal(t, "Rex", ap.PetName)
		assert.Equal(t, "Dogs", ap.CategoryName)
		assert.True(t, ap.Price.Equal(price))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("PetNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		ap, err := repo.AddPet(ctx, adoptID, 1, 99)
		assert.Nil(t, ap)
		assert.ErrorIs(t, err, pkgerrors.ErrPetNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyAdoptedLeavesWalletAlone", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", true, "Dogs"))
		mock.ExpectRollback()

		ap, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.Nil(t, ap)
		assert.ErrorIs(t, err, pkgerrors.ErrPetAlreadyAdopted)
		assert.Equal(t, "pet 'Rex' is already adopted", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("39.99"))
		mock.ExpectRollback()

		ap, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.Nil(t, ap)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingWallet", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRaceOnPetFlipRollsBackDebit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
		mock.ExpectExec(regexp.QuoteMeta(debitQuery)).
			WithArgs(price, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(flipPetQuery)).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		ap, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.Nil(t, ap)
		assert.ErrorIs(t, err, pkgerrors.ErrPetAlreadyAdopted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRaceOnDebit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
		mock.ExpectExec(regexp.QuoteMeta(debitQuery)).
			WithArgs(price, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DebitOutOfRange", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
		mock.ExpectExec(regexp.QuoteMeta(debitQuery)).
			WithArgs(price, int64(1)).
			WillReturnError(&pq.Error{Code: "22003"})
		mock.ExpectRollback()

		ap, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.Nil(t, ap)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("PetLinkedElsewhere", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockPetQuery)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(lockedPetColumns).AddRow("Rex", "Collie", "40.00", false, "Dogs"))
		mock.ExpectQuery(regexp.QuoteMeta(lockWalletQuery)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("100.00"))
		mock.ExpectExec(regexp.QuoteMeta(debitQuery)).
			WithArgs(price, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(flipPetQuery)).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(linkPetQuery)).
			WithArgs(adoptID, int64(3)).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err := repo.AddPet(ctx, adoptID, 1, 3)
		assert.ErrorIs(t, err, pkgerrors.ErrPetAlreadyAdopted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdoptionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAdoptionRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		createdAt := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO adoptions (id, user_id)`)).
			WithArgs(sqlmock.AnyArg(), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "balance"}).AddRow(createdAt, "100.00"))

		a, err := repo.Create(ctx, 1)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.Equal(t, int64(1), a.UserID)
		assert.Equal(t, "100.00", a.UserBalance.StringFixed(2))
		assert.Empty(t, a.Pets)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondAdoptionRejected", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO adoptions`)).
			WithArgs(sqlmock.AnyArg(), int64(1)).
			WillReturnError(&pq.Error{Code: "23505"})

		a, err := repo.Create(ctx, 1)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, pkgerrors.ErrAdoptionExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdoptionRepository_Reads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAdoptionRepository(db)
	ctx := context.Background()
	id := uuid.New()
	adoptionColumns := []string{"id", "user_id", "user_balance", "created_at"}

	t.Run("GetNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.id = $1`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		a, err := repo.GetByID(ctx, id)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, pkgerrors.ErrAdoptionNotFound)
	})

	t.Run("ListAll", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM adoptions a LEFT JOIN wallets w ON w.user_id = a.user_id ORDER BY a.created_at`)).
			WillReturnRows(sqlmock.NewRows(adoptionColumns).
				AddRow(id.String(), int64(1), "60.00", time.Now()).
				AddRow(uuid.NewString(), int64(2), "0.00", time.Now()))

		adoptions, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, adoptions, 2)
		assert.Equal(t, id, adoptions[0].ID)
	})

	t.Run("ListOwn", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.user_id = $1`)).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(adoptionColumns).AddRow(id.String(), int64(1), "60.00", time.Now()))

		adoptions, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, adoptions, 1)
	})

	t.Run("ListPets", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE ap.adopt_id = ANY($1::uuid[])`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "adopt_id", "pet_id", "pet_name", "category_name", "breed"}).
				AddRow(int64(10), id.String(), int64(3), "Rex", "Dogs", "Collie"))

		pets, err := repo.ListPets(ctx, []uuid.UUID{id})
		require.NoError(t, err)
		require.Len(t, pets, 1)
		assert.Equal(t, id, pets[0].AdoptID)
		assert.Equal(t, "Rex", pets[0].PetName)
	})

	t.Run("HasAdoptedPet", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM adopt_pets ap JOIN adoptions a ON a.id = ap.adopt_id`)).
			WithArgs(int64(1), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.HasAdoptedPet(ctx, 1, 3)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
