package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"ski_rental_backend/internal/models"
)

var (
	ErrInvalidDuration   = errors.New("rental duration must be a positive whole number of units")
	ErrInvalidRentalType = errors.New("unknown rental type")
)

// PriceQuote is the outcome of pricing one prospective rental. The quote
// is fixed at creation time; later rate changes never touch it.
type PriceQuote struct {
	RateApplied float64
	TotalPrice  float64
	DueAt       time.Time
}

// QuotePrice computes the total price and due time for a rental of the
// given type and duration, starting at startAt. It is a pure function of
// its inputs: no clock, no store.
//
// The total is rounded half-up to two decimals, so e.g. 3 hours at 16.665
// quotes 50.00, not 49.99.
func QuotePrice(rentalType string, duration int, hourlyRate, dailyRate float64, startAt time.Time) (PriceQuote, error) {
	if duration < 1 {
		return PriceQuote{}, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}

	var quote PriceQuote
	switch models.RentalType(rentalType) {
	case models.RentalTypeHourly:
		quote.RateApplied = hourlyRate
		quote.DueAt = startAt.Add(time.Duration(duration) * time.Hour)
	case models.RentalTypeDaily:
		quote.RateApplied = dailyRate
		quote.DueAt = startAt.Add(time.Duration(duration) * 24 * time.Hour)
	default:
		return PriceQuote{}, fmt.Errorf("%w: '%s'", ErrInvalidRentalType, rentalType)
	}

	quote.TotalPrice = roundMoney(quote.RateApplied * float64(duration))
	return quote, nil
}

// roundMoney rounds to two decimal places, halves away from zero.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
