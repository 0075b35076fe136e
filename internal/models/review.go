package models

import "time"

type Review struct {
	ID        int64     `db:"id"`
	PetID     int64     `db:"pet_id"`
	UserID    int64     `db:"user_id"`
	UserEmail string    `db:"user_email"`
	Rating    int       `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
