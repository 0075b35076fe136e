package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/honeynil/PetAdoptService/internal/access"
	service "github.com/honeynil/PetAdoptService/internal/services"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
)

type Handler struct {
	auth      service.AuthService
	wallets   service.WalletService
	catalog   service.CatalogService
	reviews   service.ReviewService
	adoptions service.AdoptionService
}

func NewHandler(
	auth service.AuthService,
	wallets service.WalletService,
	catalog service.CatalogService,
	reviews service.ReviewService,
	adoptions service.AdoptionService,
) *Handler {
	return &Handler{
		auth:      auth,
		wallets:   wallets,
		catalog:   catalog,
		reviews:   reviews,
		adoptions: adoptions,
	}
}

// RegisterRoutes mounts every API route on r. Authentication middleware must
// already be applied so handlers can read the actor from the request context.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/users", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/users/me", h.Me).Methods(http.MethodGet)
	r.HandleFunc("/auth/jwt/create", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	r.HandleFunc("/wallet", h.GetWallet).Methods(http.MethodGet)
	r.HandleFunc("/wallet", h.TopUpWallet).Methods(http.MethodPost)
	r.HandleFunc("/wallet/history", h.WalletHistory).Methods(http.MethodGet)
	r.HandleFunc("/admin/wallet", h.ListWallets).Methods(http.MethodGet)
	r.HandleFunc("/admin/wallet", h.SetWallet).Methods(http.MethodPost)

	r.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories/{id:[0-9]+}", h.GetCategory).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id:[0-9]+}", h.UpdateCategory).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id:[0-9]+}", h.DeleteCategory).Methods(http.MethodDelete)

	r.HandleFunc("/pets", h.ListPets).Methods(http.MethodGet)
	r.HandleFunc("/pets", h.CreatePet).Methods(http.MethodPost)
	r.HandleFunc("/pets/{id:[0-9]+}", h.GetPet).Methods(http.MethodGet)
	r.HandleFunc("/pets/{id:[0-9]+}", h.UpdatePet).Methods(http.MethodPut)
	r.HandleFunc("/pets/{id:[0-9]+}", h.DeletePet).Methods(http.MethodDelete)
	r.HandleFunc("/pets/{id:[0-9]+}/adopt", h.MarkAdopted).Methods(http.MethodPost)

	r.HandleFunc("/pets/{pet_id:[0-9]+}/images", h.ListImages).Methods(http.MethodGet)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/images", h.CreateImage).Methods(http.MethodPost)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/images/{id:[0-9]+}", h.GetImage).Methods(http.MethodGet)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/images/{id:[0-9]+}", h.DeleteImage).Methods(http.MethodDelete)

	r.HandleFunc("/pets/{pet_id:[0-9]+}/reviews", h.ListReviews).Methods(http.MethodGet)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/reviews", h.CreateReview).Methods(http.MethodPost)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/reviews/{id:[0-9]+}", h.GetReview).Methods(http.MethodGet)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/reviews/{id:[0-9]+}", h.UpdateReview).Methods(http.MethodPut)
	r.HandleFunc("/pets/{pet_id:[0-9]+}/reviews/{id:[0-9]+}", h.DeleteReview).Methods(http.MethodDelete)

	r.HandleFunc("/adoptions", h.ListAdoptions).Methods(http.MethodGet)
	r.HandleFunc("/adoptions", h.CreateAdoption).Methods(http.MethodPost)
	r.HandleFunc("/adoptions/{id}", h.GetAdoption).Methods(http.MethodGet)
	r.HandleFunc("/adoptions/{id}/pets", h.ListAdoptionPets).Methods(http.MethodGet)
	r.HandleFunc("/adoptions/{id}/pets", h.AddAdoptionPet).Methods(http.MethodPost)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func statusFor(kind pkgerrors.Kind) int {
	switch kind {
	case pkgerrors.KindValidation:
		return http.StatusBadRequest
	case pkgerrors.KindNotFound:
		return http.StatusNotFound
	case pkgerrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case pkgerrors.KindForbidden:
		return http.StatusForbidden
	case pkgerrors.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *pkgerrors.Error
	if !errors.As(err, &e) || e.Kind == pkgerrors.KindInternal {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, statusFor(e.Kind), errorResponse{Error: e.Msg})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerrors.ErrInvalidInput.Withf("invalid request body: %v", err)
	}
	return nil
}

// authorize runs a collection-level check for the actor on r.
func authorize(r *http.Request, p access.Policy, action access.Action) (access.Actor, error) {
	actor := access.ActorFrom(r.Context())
	return actor, access.Authorize(p, actor, action, 0)
}

// pathID reads a numeric route variable. Routes constrain it to digits.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, pkgerrors.ErrInvalidInput.Withf("invalid %s", name)
	}
	return id, nil
}
