package models

import "github.com/shopspring/decimal"

type Availability string

const (
	AvailabilityPublic Availability = "Public"
	AvailabilityAnyone Availability = "Anyone"
)

func (a Availability) Valid() bool {
	return a == AvailabilityPublic || a == AvailabilityAnyone
}

// Pet is a catalogued animal. IsAdopted only ever moves from false to true.
type Pet struct {
	ID           int64           `db:"id"`
	CategoryID   int64           `db:"category_id"`
	Name         string          `db:"name"`
	Breed        string          `db:"breed"`
	Age          decimal.Decimal `db:"age"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	IsAdopted    bool            `db:"is_adopted"`
	Availability Availability    `db:"availability"`

	Images  []PetImage `db:"-"`
	Reviews []Review   `db:"-"`
}

// PetImage references media hosted outside the service.
type PetImage struct {
	ID    int64  `db:"id"`
	PetID int64  `db:"pet_id"`
	Image string `db:"image"`
}

// PetFilter narrows pet listings.
type PetFilter struct {
	PublicOnly bool
	CategoryID *int64
	IsAdopted  *bool
	// Ordering is a column name, optionally prefixed with "-" for descending order.
	Ordering string
}
