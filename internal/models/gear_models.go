package models

import "time"

// GearType defines the closed set of rentable equipment categories.
type GearType string

const (
	GearTypeSki   GearType = "ski"
	GearTypeSkate GearType = "skate"
	GearTypeSled  GearType = "sled"
)

// IsValidGearType checks if the provided type string is a valid GearType.
func IsValidGearType(t string) bool {
	switch GearType(t) {
	case GearTypeSki, GearTypeSkate, GearTypeSled:
		return true
	default:
		return false
	}
}

// GearStatus defines the availability state of a gear item.
// Transitions happen only through the gear service: reserve moves
// available -> rented, release moves rented -> available (or broken,
// when the return scored the item 1).
type GearStatus string

const (
	GearStatusAvailable GearStatus = "available"
	GearStatusRented    GearStatus = "rented"
	GearStatusBroken    GearStatus = "broken"
)

// IsValidGearStatus checks if the provided status string is a valid GearStatus.
func IsValidGearStatus(s string) bool {
	switch GearStatus(s) {
	case GearStatusAvailable, GearStatusRented, GearStatusBroken:
		return true
	default:
		return false
	}
}

// Gear represents a single physical rentable item (skis, skates or a sled).
type Gear struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"-" db:"owner_id"`
	Type        string    `json:"type" db:"type" binding:"required"`
	BrandID     int64     `json:"brand_id" db:"brand_id" binding:"required"`
	BrandName   *string   `json:"brand,omitempty"`
	Size        *string   `json:"size,omitempty" db:"size"`
	Status      string    `json:"status" db:"status"`
	HourlyPrice float64   `json:"hourly_price" db:"hourly_price"`
	DailyPrice  float64   `json:"daily_price" db:"daily_price"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// GearFilters defines the available filters for querying gear.
type GearFilters struct {
	OwnerID  int64
	Type     *string `form:"type"`
	Status   *string `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// GearSummary is the compact gear shape embedded in rental responses.
type GearSummary struct {
	ID    int64   `json:"id"`
	Type  string  `json:"type"`
	Brand *string `json:"brand,omitempty"`
	Size  *string `json:"size,omitempty"`
}
