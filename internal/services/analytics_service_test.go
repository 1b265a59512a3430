package services

import (
	"context"
	"testing"
	"time"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyticsRepo overrides only the methods a test exercises; calling
// anything else panics on the nil embedded interface, which is the point.
type stubAnalyticsRepo struct {
	repositories.AnalyticsRepository

	completedStats []models.CustomerStat
	dayBuckets     []models.DayOfWeekBucket
	hourBuckets    []models.HourBucket
	monthBuckets   []models.MonthBucket
	idleCandidates []repositories.IdleCandidate
	overdueItems   []models.OverdueRentalItem
}

func (s *stubAnalyticsRepo) CompletedRentalStats(ctx context.Context, ownerID int64) ([]models.CustomerStat, error) {
	return s.completedStats, nil
}

func (s *stubAnalyticsRepo) DayOfWeekPatterns(ctx context.Context, ownerID int64) ([]models.DayOfWeekBucket, error) {
	return s.dayBuckets, nil
}

func (s *stubAnalyticsRepo) HourPatterns(ctx context.Context, ownerID int64) ([]models.HourBucket, error) {
	return s.hourBuckets, nil
}

func (s *stubAnalyticsRepo) MonthlyPatterns(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthBucket, error) {
	return s.monthBuckets, nil
}

func (s *stubAnalyticsRepo) IdleCandidates(ctx context.Context, ownerID int64) ([]repositories.IdleCandidate, error) {
	return s.idleCandidates, nil
}

func (s *stubAnalyticsRepo) OverdueRentals(ctx context.Context, ownerID int64) ([]models.OverdueRentalItem, error) {
	return s.overdueItems, nil
}

func TestAnalyticsService_Segmentation(t *testing.T) {
	repo := &stubAnalyticsRepo{
		completedStats: []models.CustomerStat{
			{ID: 1, FullName: "Frequent", RentalCount: 7, TotalSpent: 700},
			{ID: 2, FullName: "Steady", RentalCount: 3, TotalSpent: 300},
			{ID: 3, FullName: "Steady Two", RentalCount: 2, TotalSpent: 150},
			{ID: 4, FullName: "One Timer", RentalCount: 1, TotalSpent: 50},
		},
	}
	svc := NewAnalyticsService(repo, 7)

	report, err := svc.Segmentation(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, report.VIP.Count)
	assert.Equal(t, 2, report.Regular.Count)
	assert.Equal(t, 1, report.Occasional.Count)
	assert.Equal(t, 700.0, report.VIP.TotalRevenue)
	assert.Equal(t, 450.0, report.Regular.TotalRevenue)
	assert.Equal(t, 4, report.Summary.TotalCustomers)
	assert.Equal(t, 25.0, report.Summary.VIPPercentage)
}

func TestAnalyticsService_SegmentationEmpty(t *testing.T) {
	svc := NewAnalyticsService(&stubAnalyticsRepo{}, 7)

	report, err := svc.Segmentation(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.TotalCustomers)
	assert.Equal(t, 0.0, report.Summary.VIPPercentage)
	assert.Empty(t, report.VIP.Customers)
	assert.Empty(t, report.Regular.Customers)
	assert.Empty(t, report.Occasional.Customers)
}

func TestAnalyticsService_TimePatternsWeekdayRemap(t *testing.T) {
	repo := &stubAnalyticsRepo{
		// Store convention: 0=Sunday, 1=Monday, 5=Friday.
		dayBuckets: []models.DayOfWeekBucket{
			{DayOfWeek: 0, RentalCount: 4, Revenue: 400},
			{DayOfWeek: 1, RentalCount: 10, Revenue: 1000},
			{DayOfWeek: 5, RentalCount: 2, Revenue: 200},
		},
		hourBuckets: []models.HourBucket{
			{Hour: 9, RentalCount: 3, Revenue: 300},
			{Hour: 14, RentalCount: 8, Revenue: 800},
		},
		monthBuckets: []models.MonthBucket{
			{Year: 2026, Month: 1, RentalCount: 12, Revenue: 1200},
			{Year: 2026, Month: 2, RentalCount: 6, Revenue: 1500},
		},
	}
	svc := NewAnalyticsService(repo, 7)

	report, err := svc.TimePatterns(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, report.ByDayOfWeek, 3)
	// Monday-first order: Monday(0), Friday(4), Sunday(6).
	assert.Equal(t, "Monday", report.ByDayOfWeek[0].DayName)
	assert.Equal(t, 0, report.ByDayOfWeek[0].DayOfWeek)
	assert.Equal(t, "Friday", report.ByDayOfWeek[1].DayName)
	assert.Equal(t, 4, report.ByDayOfWeek[1].DayOfWeek)
	assert.Equal(t, "Sunday", report.ByDayOfWeek[2].DayName)
	assert.Equal(t, 6, report.ByDayOfWeek[2].DayOfWeek)

	require.NotNil(t, report.Insights.PeakDay)
	assert.Equal(t, "Monday", report.Insights.PeakDay.DayName)
	require.NotNil(t, report.Insights.PeakHour)
	assert.Equal(t, 14, report.Insights.PeakHour.Hour)
	require.NotNil(t, report.Insights.BestMonth)
	assert.Equal(t, "February", report.Insights.BestMonth.MonthName)
	assert.Equal(t, "2026-02", report.Insights.BestMonth.MonthKey)
}

func TestAnalyticsService_IdleEquipment(t *testing.T) {
	now := time.Now()
	lastUsed := now.AddDate(0, 0, -20)
	repo := &stubAnalyticsRepo{
		idleCandidates: []repositories.IdleCandidate{
			{GearID: 1, Type: "ski", DailyPrice: 100, CreatedAt: now.AddDate(0, 0, -40), LastUsed: &lastUsed},
			{GearID: 2, Type: "sled", DailyPrice: 50, CreatedAt: now.AddDate(0, 0, -3)},
			{GearID: 3, Type: "skate", DailyPrice: 80, CreatedAt: now.AddDate(0, 0, -30)},
		},
	}
	svc := NewAnalyticsService(repo, 7)

	report, err := svc.IdleEquipment(context.Background(), 10, 0)
	require.NoError(t, err)

	// Gear 2 is only 3 days old and stays out; never-rented gear 3 idles
	// from its creation date and ranks above gear 1.
	require.Equal(t, 2, report.Count)
	assert.Equal(t, int64(3), report.IdleEquipment[0].GearID)
	assert.Equal(t, 30, report.IdleEquipment[0].DaysIdle)
	assert.Equal(t, int64(1), report.IdleEquipment[1].GearID)
	assert.Equal(t, 20, report.IdleEquipment[1].DaysIdle)
	assert.Equal(t, 2400.0, report.IdleEquipment[0].PotentialLostRevenue)
	assert.Equal(t, 4400.0, report.TotalPotentialLostRevenue)
}

func TestAnalyticsService_Overdue(t *testing.T) {
	now := time.Now()
	repo := &stubAnalyticsRepo{
		overdueItems: []models.OverdueRentalItem{
			{RentalID: 1, DueAt: now.AddDate(0, 0, -3)},
			{RentalID: 2, DueAt: now.Add(-6 * time.Hour)},
		},
	}
	svc := NewAnalyticsService(repo, 7)

	report, err := svc.Overdue(context.Background(), 10)
	require.NoError(t, err)

	require.Equal(t, 2, report.Count)
	assert.Equal(t, 3, report.OverdueRentals[0].DaysOverdue)
	assert.Equal(t, 0, report.OverdueRentals[1].DaysOverdue)
}
