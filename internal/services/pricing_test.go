package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotePrice(t *testing.T) {
	startAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rentalType string
		duration   int
		hourly     float64
		daily      float64
		wantTotal  float64
		wantDueAt  time.Time
		wantErr    error
	}{
		{
			name:       "hourly three hours",
			rentalType: "hourly",
			duration:   3,
			hourly:     50,
			daily:      300,
			wantTotal:  150,
			wantDueAt:  startAt.Add(3 * time.Hour),
		},
		{
			name:       "daily two days",
			rentalType: "daily",
			duration:   2,
			hourly:     50,
			daily:      300,
			wantTotal:  600,
			wantDueAt:  startAt.Add(48 * time.Hour),
		},
		{
			name:       "fractional rate rounds half up",
			rentalType: "hourly",
			duration:   3,
			hourly:     16.665,
			daily:      0,
			wantTotal:  50.00,
			wantDueAt:  startAt.Add(3 * time.Hour),
		},
		{
			name:       "zero duration rejected",
			rentalType: "hourly",
			duration:   0,
			hourly:     50,
			daily:      300,
			wantErr:    ErrInvalidDuration,
		},
		{
			name:       "negative duration rejected",
			rentalType: "daily",
			duration:   -2,
			hourly:     50,
			daily:      300,
			wantErr:    ErrInvalidDuration,
		},
		{
			name:       "unknown rental type rejected",
			rentalType: "weekly",
			duration:   1,
			hourly:     50,
			daily:      300,
			wantErr:    ErrInvalidRentalType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := QuotePrice(tt.rentalType, tt.duration, tt.hourly, tt.daily, startAt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, quote.TotalPrice)
			assert.Equal(t, tt.wantDueAt, quote.DueAt)
		})
	}
}

func TestQuotePriceIsDeterministic(t *testing.T) {
	startAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	first, err := QuotePrice("daily", 5, 40, 250.55, startAt)
	assert.NoError(t, err)
	second, err := QuotePrice("daily", 5, 40, 250.55, startAt)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1252.75, first.TotalPrice)
}
