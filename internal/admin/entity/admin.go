package entity

import "time"

// Admin is an operator of the dashboard. PasswordHash never leaves the
// service layer; handlers serialize Admin which omits it.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
