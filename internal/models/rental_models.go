package models

import "time"

// RentalType defines the closed set of billing modes.
type RentalType string

const (
	RentalTypeHourly RentalType = "hourly"
	RentalTypeDaily  RentalType = "daily"
)

// IsValidRentalType checks if the provided type string is a valid RentalType.
func IsValidRentalType(t string) bool {
	switch RentalType(t) {
	case RentalTypeHourly, RentalTypeDaily:
		return true
	default:
		return false
	}
}

// Rental status filter values accepted by the list endpoint.
const (
	RentalStatusFilterActive    = "active"
	RentalStatusFilterCompleted = "completed"
	RentalStatusFilterOverdue   = "overdue"
	RentalStatusFilterAll       = "all"
)

// IsValidRentalStatusFilter checks a list-endpoint status value.
func IsValidRentalStatusFilter(s string) bool {
	switch s {
	case RentalStatusFilterActive, RentalStatusFilterCompleted, RentalStatusFilterOverdue, RentalStatusFilterAll:
		return true
	default:
		return false
	}
}

// Rental is one transaction binding one customer to one gear item for a
// priced duration. TotalPrice and DueAt are fixed at creation; ReturnAt,
// ConditionScore and Comment are written exactly once, at return.
type Rental struct {
	ID             int64      `json:"id" db:"id"`
	OwnerID        int64      `json:"-" db:"owner_id"`
	CustomerID     int64      `json:"customer_id" db:"customer_id"`
	GearID         int64      `json:"gear_id" db:"gear_id"`
	RentalType     string     `json:"rental_type" db:"rental_type"`
	Duration       int        `json:"duration" db:"duration"`
	StartAt        time.Time  `json:"start_at" db:"start_at"`
	DueAt          time.Time  `json:"due_at" db:"due_at"`
	ReturnAt       *time.Time `json:"return_at,omitempty" db:"return_at"`
	TotalPrice     float64    `json:"total_price" db:"total_price"`
	ConditionScore *int       `json:"condition_score,omitempty" db:"condition_score"`
	Comment        *string    `json:"comment,omitempty" db:"comment"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	// IsOverdue is derived on every read, never stored. A returned
	// rental is never overdue.
	IsOverdue bool `json:"is_overdue"`

	Gear     *GearSummary     `json:"gear,omitempty"`
	Customer *CustomerSummary `json:"customer,omitempty"`
}

// ComputeOverdue refreshes the derived overdue flag against the given clock.
func (r *Rental) ComputeOverdue(now time.Time) {
	r.IsOverdue = r.ReturnAt == nil && now.After(r.DueAt)
}

// RentalFilters defines the available filters for querying rentals.
type RentalFilters struct {
	OwnerID    int64
	Status     string `form:"status"` // active | completed | overdue | all
	CustomerID *int64 `form:"customer_id"`
	GearID     *int64 `form:"gear_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}
