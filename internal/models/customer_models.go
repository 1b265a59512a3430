package models

import "time"

// Customer represents a renting client of the shop.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"-" db:"owner_id"`
	FullName  string    `json:"full_name" db:"full_name" binding:"required"`
	Phone     string    `json:"phone" db:"phone" binding:"required"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CustomerFilters defines the available filters for querying customers.
type CustomerFilters struct {
	OwnerID  int64
	Search   *string `form:"search"` // matches full_name or phone, substring
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// CustomerSummary is the compact customer shape embedded in rental responses.
type CustomerSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}
