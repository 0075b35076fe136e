package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/honeynil/PetAdoptService/internal/access"
	redismocks "github.com/honeynil/PetAdoptService/internal/infrastructure/redis/mocks"
	"github.com/honeynil/PetAdoptService/internal/models"
	repositorymocks "github.com/honeynil/PetAdoptService/internal/repository/mocks"
	service "github.com/honeynil/PetAdoptService/internal/services"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router     *mux.Router
	users      *repositorymocks.MockUserRepository
	wallets    *repositorymocks.MockWalletRepository
	txs        *repositorymocks.MockTransactionRepository
	categories *repositorymocks.MockCategoryRepository
	pets       *repositorymocks.MockPetRepository
	images     *repositorymocks.MockPetImageRepository
	reviews    *repositorymocks.MockReviewRepository
	adoptions  *repositorymocks.MockAdoptionRepository
	redis      *redismocks.MockRedisClient
}

func newTestEnv() *testEnv {
	e := &testEnv{
		users:      &repositorymocks.MockUserRepository{},
		wallets:    &repositorymocks.MockWalletRepository{},
		txs:        &repositorymocks.MockTransactionRepository{},
		categories: &repositorymocks.MockCategoryRepository{},
		pets:       &repositorymocks.MockPetRepository{},
		images:     &repositorymocks.MockPetImageRepository{},
		reviews:    &repositorymocks.MockReviewRepository{},
		adoptions:  &repositorymocks.MockAdoptionRepository{},
		redis:      &redismocks.MockRedisClient{},
	}

	h := NewHandler(
		service.NewAuthService(e.users, e.wallets, e.adoptions, e.redis, nil, "secret", 0),
		service.NewWalletService(e.wallets, e.txs, nil),
		service.NewCatalogService(e.categories, e.pets, e.images, e.reviews, nil),
		service.NewReviewService(e.reviews, e.pets, e.adoptions),
		service.NewAdoptionService(e.adoptions, e.redis, nil),
	)

	e.router = mux.NewRouter()
	h.RegisterRoutes(e.router.PathPrefix("/api").Subrouter())
	return e
}

func (e *testEnv) do(t *testing.T, actor access.Actor, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(access.WithActor(req.Context(), actor))

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

var (
	anonymous = access.Actor{}
	user      = access.Actor{UserID: 1}
	staff     = access.Actor{UserID: 9, IsStaff: true}
)

func TestListPets_Visibility(t *testing.T) {
	pets := []models.Pet{{
		ID:           3,
		CategoryID:   1,
		Name:         "Rex",
		Breed:        "Collie",
		Age:          decimal.RequireFromString("2"),
		Price:        decimal.RequireFromString("40"),
		Availability: models.AvailabilityPublic,
	}}

	t.Run("anonymous", func(t *testing.T) {
		e := newTestEnv()
		e.pets.On("List", mock.Anything, models.PetFilter{PublicOnly: true}).Return(pets, nil)
		e.images.On("ListByPets", mock.Anything, []int64{3}).Return([]models.PetImage{}, nil)
		e.reviews.On("ListByPets", mock.Anything, []int64{3}).
			Return([]models.Review{{ID: 4, PetID: 3, UserEmail: "bob@example.com", Rating: 5, Comment: "good"}}, nil)

		rec := e.do(t, anonymous, http.MethodGet, "/api/pets", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body []map[string]any
		decodeBody(t, rec, &body)
		require.Len(t, body, 1)
		assert.NotContains(t, body[0], "availability")
		assert.Equal(t, "40.00", body[0]["price"])
		assert.Equal(t, "bob@example.com", body[0]["reviews"].([]any)[0].(map[string]any)["user"])
		e.pets.AssertExpectations(t)
	})

	t.Run("staff see availability and filters", func(t *testing.T) {
		e := newTestEnv()
		categoryID := int64(1)
		adopted := false
		e.pets.On("List", mock.Anything, models.PetFilter{CategoryID: &categoryID, IsAdopted: &adopted, Ordering: "-price"}).
			Return(pets, nil)
		e.images.On("ListByPets", mock.Anything, []int64{3}).Return([]models.PetImage{}, nil)
		e.reviews.On("ListByPets", mock.Anything, []int64{3}).Return([]models.Review{}, nil)

		rec := e.do(t, staff, http.MethodGet, "/api/pets?category_id=1&is_adopted=false&ordering=-price", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body []map[string]any
		decodeBody(t, rec, &body)
		assert.Equal(t, "Public", body[0]["availability"])
	})

	t.Run("bad filter", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, user, http.MethodGet, "/api/pets?is_adopted=maybe", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCheckout(t *testing.T) {
	adoptID := uuid.New()
	path := "/api/adoptions/" + adoptID.String() + "/pets"

	t.Run("adopts and returns pet summary", func(t *testing.T) {
		e := newTestEnv()
		e.adoptions.On("GetByID", mock.Anything, adoptID).Return(&models.Adoption{ID: adoptID, UserID: 1}, nil)
		e.adoptions.On("AddPet", mock.Anything, adoptID, int64(1), int64(3)).Return(&models.AdoptPet{
			ID:           10,
			AdoptID:      adoptID,
			PetID:        3,
			PetName:      "Rex",
			CategoryName: "Dogs",
			Breed:        "Collie",
			Price:        decimal.RequireFromString("40.00"),
		}, nil)

		rec := e.do(t, user, http.MethodPost, path, `{"pet_id": 3}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body adoptPetResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, int64(3), body.PetID)
		assert.Equal(t, adoptPetSummary{Name: "Rex", CategoryName: "Dogs", Breed: "Collie"}, body.Pet)
	})

	t.Run("retry on adopted pet", func(t *testing.T) {
		e := newTestEnv()
		e.adoptions.On("GetByID", mock.Anything, adoptID).Return(&models.Adoption{ID: adoptID, UserID: 1}, nil)
		e.adoptions.On("AddPet", mock.Anything, adoptID, int64(1), int64(3)).
			Return(nil, pkgerrors.ErrPetAlreadyAdopted.Withf("pet '%s' is already adopted", "Rex"))

		rec := e.do(t, user, http.MethodPost, path, `{"pet_id": 3}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "pet 'Rex' is already adopted", body.Error)
	})

	t.Run("replayed idempotency key", func(t *testing.T) {
		e := newTestEnv()
		e.adoptions.On("GetByID", mock.Anything, adoptID).Return(&models.Adoption{ID: adoptID, UserID: 1}, nil)
		e.redis.On("SetNX", mock.Anything, "request:1:abc", "pending", mock.Anything).Return(false, nil)

		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"pet_id": 3}`))
		req.Header.Set(IdempotencyHeader, "abc")
		req = req.WithContext(access.WithActor(req.Context(), user))
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		e.adoptions.AssertNotCalled(t, "AddPet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign adoption", func(t *testing.T) {
		e := newTestEnv()
		e.adoptions.On("GetByID", mock.Anything, adoptID).Return(&models.Adoption{ID: adoptID, UserID: 2}, nil)

		rec := e.do(t, user, http.MethodPost, path, `{"pet_id": 3}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed adoption id", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, user, http.MethodPost, "/api/adoptions/not-a-uuid/pets", `{"pet_id": 3}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, anonymous, http.MethodPost, path, `{"pet_id": 3}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetAdoption(t *testing.T) {
	e := newTestEnv()
	adoptID := uuid.New()
	e.adoptions.On("GetByID", mock.Anything, adoptID).
		Return(&models.Adoption{ID: adoptID, UserID: 1, UserBalance: decimal.RequireFromString("60")}, nil)
	e.adoptions.On("ListPets", mock.Anything, []uuid.UUID{adoptID}).
		Return([]models.AdoptPet{{ID: 10, AdoptID: adoptID, PetID: 3, PetName: "Rex", CategoryName: "Dogs", Breed: "Collie"}}, nil)

	rec := e.do(t, user, http.MethodGet, "/api/adoptions/"+adoptID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body adoptionResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "60.00", body.UserBalance)
	require.Len(t, body.AdoptPets, 1)
	assert.Equal(t, "Rex", body.AdoptPets[0].Pet.Name)
}

func TestCreateReview_NonAdopter(t *testing.T) {
	e := newTestEnv()
	e.pets.On("GetByID", mock.Anything, int64(3)).Return(&models.Pet{ID: 3, IsAdopted: true}, nil)
	e.reviews.On("Exists", mock.Anything, int64(3), int64(1)).Return(false, nil)
	e.adoptions.On("HasAdoptedPet", mock.Anything, int64(1), int64(3)).Return(false, nil)

	rec := e.do(t, user, http.MethodPost, "/api/pets/3/reviews", `{"rating": 5, "comment": "nice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	decodeBody(t, rec, &body)
	assert.Contains(t, body.Error, "must have adopted this pet")
}

func TestAccessControl(t *testing.T) {
	tests := []struct {
		name   string
		actor  access.Actor
		method string
		path   string
		body   string
		want   int
	}{
		{"anonymous wallet", anonymous, http.MethodGet, "/api/wallet", "", http.StatusUnauthorized},
		{"anonymous profile", anonymous, http.MethodGet, "/api/auth/users/me", "", http.StatusUnauthorized},
		{"user lists categories", user, http.MethodGet, "/api/categories", "", http.StatusForbidden},
		{"user lists all wallets", user, http.MethodGet, "/api/admin/wallet", "", http.StatusForbidden},
		{"user deletes pet", user, http.MethodDelete, "/api/pets/3", "", http.StatusForbidden},
		{"user marks adopted", user, http.MethodPost, "/api/pets/3/adopt", "", http.StatusForbidden},
		{"anonymous creates pet", anonymous, http.MethodPost, "/api/pets", `{}`, http.StatusUnauthorized},
		{"anonymous adds image", anonymous, http.MethodPost, "/api/pets/3/images", `{"image":"x"}`, http.StatusUnauthorized},
		{"anonymous reviews", anonymous, http.MethodPost, "/api/pets/3/reviews", `{"rating":5}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv()
			rec := e.do(t, tt.actor, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWalletEndpoints(t *testing.T) {
	wallet := &models.Wallet{ID: 5, UserID: 1, Email: "bob@example.com", Balance: decimal.RequireFromString("100")}

	t.Run("top up", func(t *testing.T) {
		e := newTestEnv()
		e.wallets.On("TopUp", mock.Anything, int64(1), decimal.RequireFromString("100.00")).Return(wallet, nil)

		rec := e.do(t, user, http.MethodPost, "/api/wallet", `{"balance": "100.00"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body walletResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, walletResponse{ID: 5, Email: "bob@example.com", Balance: "100.00"}, body)
	})

	t.Run("top up must be positive", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, user, http.MethodPost, "/api/wallet", `{"balance": "-5"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin set requires balance", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, staff, http.MethodPost, "/api/admin/wallet", `{"id": 1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin set unknown user", func(t *testing.T) {
		e := newTestEnv()
		e.wallets.On("SetBalance", mock.Anything, int64(42), decimal.RequireFromString("10")).
			Return(nil, pkgerrors.ErrUserDoesNotExist)

		rec := e.do(t, staff, http.MethodPost, "/api/admin/wallet", `{"id": 42, "balance": "10"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "user does not exist", body.Error)
	})
}

func TestMarkAdopted(t *testing.T) {
	e := newTestEnv()
	e.pets.On("MarkAdopted", mock.Anything, int64(3)).Return(nil)

	rec := e.do(t, staff, http.MethodPost, "/api/pets/3/adopt", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Pet marked as adopted", body["status"])
}

func TestWriteError(t *testing.T) {
	t.Run("internal errors are hidden", func(t *testing.T) {
		e := newTestEnv()
		e.categories.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

		rec := e.do(t, staff, http.MethodGet, "/api/categories", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "internal server error", body.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		e := newTestEnv()
		rec := e.do(t, staff, http.MethodPost, "/api/categories", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
