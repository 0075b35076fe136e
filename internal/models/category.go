package models

type Category struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	PetCount    int64   `db:"pet_count"`
}
