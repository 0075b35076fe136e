package handler

import (
	"net/http"

	"github.com/honeynil/PetAdoptService/internal/access"
	service "github.com/honeynil/PetAdoptService/internal/services"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.reviews.List(r.Context(), petID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, newReviewResponse(&reviews[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rv, err := h.reviews.Get(r.Context(), petID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponse(rv))
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.AuthorOrReadOnly, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	rv, err := h.reviews.Create(r.Context(), actor, petID, service.ReviewInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReviewResponse(rv))
}

// UpdateReview and DeleteReview leave the author check to the service,
// which needs the stored review to know who wrote it.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	actor := access.ActorFrom(r.Context())
	rv, err := h.reviews.Update(r.Context(), actor, petID, id, service.ReviewInput{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewResponse(rv))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.reviews.Delete(r.Context(), access.ActorFrom(r.Context()), petID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
