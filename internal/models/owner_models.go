package models

import "time"

// Owner is the account that scopes every other entity. Brands, gear,
// customers and rentals are exclusively owned by one owner and never
// shared across accounts.
type Owner struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CompanyName  *string   `json:"company_name,omitempty" db:"company_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
