package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/models"
	service "github.com/honeynil/PetAdoptService/internal/services"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 10 << 20

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionRead); err != nil {
		h.writeError(w, r, err)
		return
	}

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, newCategoryResponse(&categories[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionRead); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(c))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionCreate); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(c))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionUpdate); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.catalog.UpdateCategory(r.Context(), id, service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionDelete); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type petRequest struct {
	Category     int64                `json:"category"`
	Name         string               `json:"name"`
	Breed        string               `json:"breed"`
	Age          decimal.Decimal      `json:"age"`
	Price        decimal.Decimal      `json:"price"`
	Description  string               `json:"description"`
	IsAdopted    *bool                `json:"is_adopted"`
	Availability *models.Availability `json:"availability"`
}

func (p petRequest) input() service.PetInput {
	return service.PetInput{
		CategoryID:   p.Category,
		Name:         p.Name,
		Breed:        p.Breed,
		Age:          p.Age,
		Description:  p.Description,
		Price:        p.Price,
		IsAdopted:    p.IsAdopted,
		Availability: p.Availability,
	}
}

// petFilter reads category_id, is_adopted and ordering from the query string.
func petFilter(r *http.Request) (models.PetFilter, error) {
	q := r.URL.Query()
	filter := models.PetFilter{Ordering: q.Get("ordering")}

	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, pkgerrors.ErrInvalidInput.Withf("invalid category_id")
		}
		filter.CategoryID = &id
	}
	if v := q.Get("is_adopted"); v != "" {
		adopted, err := strconv.ParseBool(v)
		if err != nil {
			return filter, pkgerrors.ErrInvalidInput.Withf("invalid is_adopted")
		}
		filter.IsAdopted = &adopted
	}
	return filter, nil
}

func (h *Handler) ListPets(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter, err := petFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pets, err := h.catalog.ListPets(r.Context(), actor, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]petResponse, 0, len(pets))
	for i := range pets {
		resp = append(resp, newPetResponse(&pets[i], actor.IsStaff))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetPet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pet, err := h.catalog.GetPet(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPetResponse(pet, actor.IsStaff))
}

func (h *Handler) CreatePet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req petRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	pet, err := h.catalog.CreatePet(r.Context(), actor, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPetResponse(pet, actor.IsStaff))
}

func (h *Handler) UpdatePet(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionUpdate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req petRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	pet, err := h.catalog.UpdatePet(r.Context(), actor, id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPetResponse(pet, actor.IsStaff))
}

func (h *Handler) DeletePet(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionDelete); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.catalog.DeletePet(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAdopted flags a pet as adopted without touching any wallet.
func (h *Handler) MarkAdopted(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOnly, access.ActionUpdate); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.catalog.MarkAdopted(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Pet marked as adopted"})
}

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	images, err := h.catalog.ListImages(r.Context(), actor, petID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newImageResponses(images))
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionRead)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
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

	img, err := h.catalog.GetImage(r.Context(), actor, petID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{ID: img.ID, Image: img.Image})
}

// CreateImage accepts either a JSON body {"image": "<url>"} or a multipart
// form with an "image" file, which is uploaded to object storage.
func (h *Handler) CreateImage(w http.ResponseWriter, r *http.Request) {
	actor, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionCreate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	petID, err := pathID(r, "pet_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var img *models.PetImage
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		img, err = h.uploadImage(w, r, actor, petID)
	} else {
		var req struct {
			Image string `json:"image"`
		}
		if err = decodeJSON(r, &req); err == nil {
			img, err = h.catalog.AddImage(r.Context(), actor, petID, req.Image)
		}
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, imageResponse{ID: img.ID, Image: img.Image})
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, actor access.Actor, petID int64) (*models.PetImage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, pkgerrors.ErrInvalidInput.Withf("invalid multipart form: %v", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, pkgerrors.ErrImageRequired
	}
	defer file.Close()

	return h.catalog.UploadImage(r.Context(), actor, petID, header.Filename, header.Header.Get("Content-Type"), file)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, access.StaffOrReadOrAuthenticatedCreate, access.ActionDelete); err != nil {
		h.writeError(w, r, err)
		return
	}
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

	if err := h.catalog.DeleteImage(r.Context(), petID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
