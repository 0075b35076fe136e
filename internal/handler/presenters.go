package handler

import (
	"time"

	"github.com/honeynil/PetAdoptService/internal/models"
	service "github.com/honeynil/PetAdoptService/internal/services"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type userResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
	}
}

type profileResponse struct {
	userResponse
	Wallet          *string            `json:"wallet"`
	AdoptionHistory []adoptionResponse `json:"adoption_history"`
}

func newProfileResponse(p *service.Profile) profileResponse {
	resp := profileResponse{
		userResponse:    newUserResponse(p.User),
		AdoptionHistory: newAdoptionResponses(p.Adoptions),
	}
	if p.Wallet != nil {
		balance := money(p.Wallet.Balance)
		resp.Wallet = &balance
	}
	return resp
}

type walletResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Balance string `json:"balance"`
}

func newWalletResponse(w *models.Wallet) walletResponse {
	return walletResponse{ID: w.ID, Email: w.Email, Balance: money(w.Balance)}
}

type adminWalletResponse struct {
	walletResponse
	UserID int64 `json:"user_id"`
}

func newAdminWalletResponse(w *models.Wallet) adminWalletResponse {
	return adminWalletResponse{walletResponse: newWalletResponse(w), UserID: w.UserID}
}

type transactionResponse struct {
	ID        int64     `json:"id"`
	Amount    string    `json:"amount"`
	Type      string    `json:"type"`
	RelatedID int64     `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type categoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PetCount    int64   `json:"pet_count"`
}

func newCategoryResponse(c *models.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, PetCount: c.PetCount}
}

type imageResponse struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

func newImageResponses(images []models.PetImage) []imageResponse {
	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, imageResponse{ID: img.ID, Image: img.Image})
	}
	return resp
}

// petReviewResponse is the short review embedded in pets. User is the author's email.
type petReviewResponse struct {
	ID      int64  `json:"id"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type petResponse struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Category     int64                `json:"category"`
	Breed        string               `json:"breed"`
	Age          string               `json:"age"`
	Price        string               `json:"price"`
	Description  string               `json:"description"`
	IsAdopted    bool                 `json:"is_adopted"`
	Availability *models.Availability `json:"availability,omitempty"`
	Images       []imageResponse      `json:"images"`
	Reviews      []petReviewResponse  `json:"reviews"`
}

// newPetResponse renders p. Availability is only shown to staff.
func newPetResponse(p *models.Pet, staff bool) petResponse {
	resp := petResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.CategoryID,
		Breed:       p.Breed,
		Age:         money(p.Age),
		Price:       money(p.Price),
		Description: p.Description,
		IsAdopted:   p.IsAdopted,
		Images:      newImageResponses(p.Images),
		Reviews:     make([]petReviewResponse, 0, len(p.Reviews)),
	}
	if staff {
		availability := p.Availability
		resp.Availability = &availability
	}
	for _, rv := range p.Reviews {
		resp.Reviews = append(resp.Reviews, petReviewResponse{ID: rv.ID, User: rv.UserEmail, Rating: rv.Rating, Comment: rv.Comment})
	}
	return resp
}

type reviewResponse struct {
	ID        int64     `json:"id"`
	PetID     int64     `json:"pet_id"`
	User      string    `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newReviewResponse(rv *models.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		PetID:     rv.PetID,
		User:      rv.UserEmail,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

type adoptPetSummary struct {
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
	Breed        string `json:"breed"`
}

type adoptPetResponse struct {
	ID    int64           `json:"id"`
	PetID int64           `json:"pet_id"`
	Pet   adoptPetSummary `json:"pet"`
}

func newAdoptPetResponse(ap *models.AdoptPet) adoptPetResponse {
	return adoptPetResponse{
		ID:    ap.ID,
		PetID: ap.PetID,
		Pet:   adoptPetSummary{Name: ap.PetName, CategoryName: ap.CategoryName, Breed: ap.Breed},
	}
}

func newAdoptPetResponses(pets []models.AdoptPet) []adoptPetResponse {
	resp := make([]adoptPetResponse, 0, len(pets))
	for i := range pets {
		resp = append(resp, newAdoptPetResponse(&pets[i]))
	}
	return resp
}

type adoptionResponse struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UserBalance string             `json:"user_balance"`
	AdoptPets   []adoptPetResponse `json:"adoptpets"`
}

func newAdoptionResponse(a *models.Adoption) adoptionResponse {
	return adoptionResponse{
		ID:          a.ID.String(),
		CreatedAt:   a.CreatedAt,
		UserBalance: money(a.UserBalance),
		AdoptPets:   newAdoptPetResponses(a.Pets),
	}
}

func newAdoptionResponses(adoptions []models.Adoption) []adoptionResponse {
	resp := make([]adoptionResponse, 0, len(adoptions))
	for i := range adoptions {
		resp = append(resp, newAdoptionResponse(&adoptions[i]))
	}
	return resp
}
