package models

import "time"

// Brand represents an equipment manufacturer referenced by gear items.
type Brand struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"-" db:"owner_id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BrandFilters defines pagination for querying brands.
type BrandFilters struct {
	OwnerID  int64
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
