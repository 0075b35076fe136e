package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adoption groups the pets a user has adopted. A user owns at most one.
type Adoption struct {
	ID          uuid.UUID       `db:"id"`
	UserID      int64           `db:"user_id"`
	UserBalance decimal.Decimal `db:"user_balance"`
	CreatedAt   time.Time       `db:"created_at"`

	Pets []AdoptPet `db:"-"`
}

// AdoptPet links an adoption to one pet, with a summary of that pet.
type AdoptPet struct {
	ID           int64     `db:"id"`
	AdoptID      uuid.UUID `db:"adopt_id"`
	PetID        int64     `db:"pet_id"`
	PetName      string    `db:"pet_name"`
	CategoryName string    `db:"category_name"`
	Breed        string    `db:"breed"`

	// Price is what the wallet was charged; only set by checkout.
	Price decimal.Decimal `db:"-"`
}
