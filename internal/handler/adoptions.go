package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/honeynil/PetAdoptService/internal/access"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
)

// IdempotencyHeader makes a checkout request safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// adoptionID parses the {id} route variable. A malformed id cannot name an adoption.
func adoptionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, pkgerrors.ErrAdoptionNotFound
	}
	return id, nil
}

func (h *Handler) ListAdoptions(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	adoptions, err := h.adoptions.List(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdoptionResponses(adoptions))
}

func (h *Handler) CreateAdoption(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.adoptions.Create(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAdoptionResponse(a))
}

func (h *Handler) GetAdoption(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := adoptionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.adoptions.Get(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdoptionResponse(a))
}

func (h *Handler) ListAdoptionPets(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := adoptionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pets, err := h.adoptions.ListPets(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdoptPetResponses(pets))
}

// AddAdoptionPet is checkout: it debits the wallet and attaches the pet.
func (h *Handler) AddAdoptionPet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.Owner, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := adoptionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		PetID int64 `json:"pet_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ap, err := h.adoptions.AddPet(r.Context(), actor, id, req.PetID, r.Header.Get(IdempotencyHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAdoptPetResponse(ap))
}
