package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/repositories"
)

var ErrAnalyticsValidation = errors.New("analytics query validation error")

// Segmentation thresholds over completed rentals.
const (
	vipRentalThreshold     = 5
	regularRentalThreshold = 2
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AnalyticsService computes the reporting views. Every report is derived
// from the base tables at call time; nothing is cached or persisted, so a
// report never disagrees with the ledger for longer than one request.
type AnalyticsService interface {
	Dashboard(ctx context.Context, ownerID int64) (*models.DashboardSummary, error)
	PopularEquipment(ctx context.Context, ownerID int64, limit int) (*models.PopularEquipmentReport, error)
	TopCustomers(ctx context.Context, ownerID int64, limit int) (*models.TopCustomersReport, error)
	Segmentation(ctx context.Context, ownerID int64) (*models.SegmentationReport, error)
	ProblematicCustomers(ctx context.Context, ownerID int64) (*models.ProblematicCustomersReport, error)
	Revenue(ctx context.Context, ownerID int64, days int) (*models.RevenueReport, error)
	IdleEquipment(ctx context.Context, ownerID int64, thresholdDays int) (*models.IdleEquipmentReport, error)
	BrandPerformance(ctx context.Context, ownerID int64) (*models.BrandPerformanceReport, error)
	TimePatterns(ctx context.Context, ownerID int64) (*models.TimePatternsReport, error)
	Overdue(ctx context.Context, ownerID int64) (*models.OverdueReport, error)
}

type analyticsService struct {
	analyticsRepo        repositories.AnalyticsRepository
	defaultIdleThreshold int
}

// NewAnalyticsService creates a new instance of AnalyticsService.
// defaultIdleThreshold is the days-without-rental cutoff used when the
// idle-equipment report is requested without an explicit threshold.
func NewAnalyticsService(ar repositories.AnalyticsRepository, defaultIdleThreshold int) AnalyticsService {
	if defaultIdleThreshold <= 0 {
		defaultIdleThreshold = 7
	}
	return &analyticsService{analyticsRepo: ar, defaultIdleThreshold: defaultIdleThreshold}
}

func (s *analyticsService) Dashboard(ctx context.Context, ownerID int64) (*models.DashboardSummary, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	total, available, rented, broken, err := s.analyticsRepo.GearStatusCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count gear: %w", err)
	}
	active, overdue, err := s.analyticsRepo.RentalCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rentals: %w", err)
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.analyticsRepo.RevenueSince(ctx, ownerID, todayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}
	week, err := s.analyticsRepo.RevenueSince(ctx, ownerID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum weekly revenue: %w", err)
	}
	month, err := s.analyticsRepo.RevenueSince(ctx, ownerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	avgScore, err := s.analyticsRepo.AvgConditionScore(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to average condition score: %w", err)
	}
	totalCustomers, newThisMonth, err := s.analyticsRepo.CustomerCounts(ctx, ownerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var occupancy float64
	if total > 0 {
		occupancy = roundMoney(float64(rented) / float64(total) * 100)
	}

	return &models.DashboardSummary{
		Equipment: models.EquipmentSummary{
			Total:         total,
			Available:     available,
			Rented:        rented,
			Overdue:       overdue,
			Broken:        broken,
			OccupancyRate: occupancy,
		},
		Customers: models.CustomerCounts{Total: totalCustomers, NewThisMonth: newThisMonth},
		Rentals:   models.RentalCounts{Active: active, Overdue: overdue},
		Revenue:   models.RevenueSummary{Today: today, Week: week, Month: month},
		Quality:   models.QualitySummary{AvgConditionScore: roundMoney(avgScore)},
	}, nil
}

func (s *analyticsService) PopularEquipment(ctx context.Context, ownerID int64, limit int) (*models.PopularEquipmentReport, error) {
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	top, err := s.analyticsRepo.TopEquipment(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank equipment: %w", err)
	}
	byType, err := s.analyticsRepo.TypeDistribution(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket gear by type: %w", err)
	}
	byBrand, err := s.analyticsRepo.BrandDistribution(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket gear by brand: %w", err)
	}

	return &models.PopularEquipmentReport{TopEquipment: top, ByType: byType, ByBrand: byBrand}, nil
}

func (s *analyticsService) TopCustomers(ctx context.Context, ownerID int64, limit int) (*models.TopCustomersReport, error) {
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	top, err := s.analyticsRepo.TopCustomers(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	_, newThisMonth, err := s.analyticsRepo.CustomerCounts(ctx, ownerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	return &models.TopCustomersReport{TopCustomers: top, NewThisMonth: newThisMonth}, nil
}

// Segmentation partitions customers by completed-rental count. Customers
// with no completed rentals do not appear in any segment.
func (s *analyticsService) Segmentation(ctx context.Context, ownerID int64) (*models.SegmentationReport, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	stats, err := s.analyticsRepo.CompletedRentalStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed rental stats: %w", err)
	}

	report := &models.SegmentationReport{
		VIP:        models.CustomerSegment{Customers: []models.CustomerStat{}},
		Regular:    models.CustomerSegment{Customers: []models.CustomerStat{}},
		Occasional: models.CustomerSegment{Customers: []models.CustomerStat{}},
	}

	for _, stat := range stats {
		var segment *models.CustomerSegment
		switch {
		case stat.RentalCount >= vipRentalThreshold:
			segment = &report.VIP
		case stat.RentalCount >= regularRentalThreshold:
			segment = &report.Regular
		default:
			segment = &report.Occasional
		}
		segment.Customers = append(segment.Customers, stat)
		segment.Count++
		segment.TotalRevenue = roundMoney(segment.TotalRevenue + stat.TotalSpent)
	}

	report.Summary.TotalCustomers = len(stats)
	if len(stats) > 0 {
		report.Summary.VIPPercentage = roundMoney(float64(report.VIP.Count) / float64(len(stats)) * 100)
	}
	return report, nil
}

func (s *analyticsService) ProblematicCustomers(ctx context.Context, ownerID int64) (*models.ProblematicCustomersReport, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	customers, err := s.analyticsRepo.ProblematicCustomers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load problematic customers: %w", err)
	}
	for i := range customers {
		customers[i].AvgConditionScore = roundMoney(customers[i].AvgConditionScore)
	}
	return &models.ProblematicCustomersReport{ProblematicCustomers: customers, Count: len(customers)}, nil
}

func (s *analyticsService) Revenue(ctx context.Context, ownerID int64, days int) (*models.RevenueReport, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		return nil, fmt.Errorf("%w: days must not exceed 365", ErrAnalyticsValidation)
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	since := time.Now().AddDate(0, 0, -days)
	daily, err := s.analyticsRepo.DailyRevenue(ctx, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily revenue: %w", err)
	}

	byRentalType, err := s.analyticsRepo.RevenueByRentalType(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket revenue by rental type: %w", err)
	}
	rentalTypeMap := make(map[string]models.RevenueTypeBucket, len(byRentalType))
	for _, bucket := range byRentalType {
		rentalTypeMap[bucket.Type] = bucket
	}

	byGearType, err := s.analyticsRepo.RevenueByGearType(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket revenue by gear type: %w", err)
	}

	return &models.RevenueReport{Daily: daily, ByRentalType: rentalTypeMap, ByGearType: byGearType}, nil
}

func (s *analyticsService) IdleEquipment(ctx context.Context, ownerID int64, thresholdDays int) (*models.IdleEquipmentReport, error) {
	if thresholdDays <= 0 {
		thresholdDays = s.defaultIdleThreshold
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	candidates, err := s.analyticsRepo.IdleCandidates(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load idle candidates: %w", err)
	}

	now := time.Now()
	report := &models.IdleEquipmentReport{IdleEquipment: []models.IdleGearItem{}}
	for _, c := range candidates {
		// Gear that was never rented idles from the day it was added.
		ref := c.CreatedAt
		if c.LastUsed != nil {
			ref = *c.LastUsed
		}
		daysIdle := int(now.Sub(ref).Hours() / 24)
		if daysIdle < thresholdDays {
			continue
		}

		lost := roundMoney(float64(daysIdle) * c.DailyPrice)
		report.IdleEquipment = append(report.IdleEquipment, models.IdleGearItem{
			GearID:               c.GearID,
			Type:                 c.Type,
			Brand:                c.Brand,
			Size:                 c.Size,
			HourlyPrice:          c.HourlyPrice,
			DailyPrice:           c.DailyPrice,
			DaysIdle:             daysIdle,
			LastUsed:             c.LastUsed,
			PotentialLostRevenue: lost,
		})
		report.TotalPotentialLostRevenue = roundMoney(report.TotalPotentialLostRevenue + lost)
	}

	sort.Slice(report.IdleEquipment, func(i, j int) bool {
		return report.IdleEquipment[i].DaysIdle > report.IdleEquipment[j].DaysIdle
	})
	report.Count = len(report.IdleEquipment)
	return report, nil
}

func (s *analyticsService) BrandPerformance(ctx context.Context, ownerID int64) (*models.BrandPerformanceReport, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	brands, err := s.analyticsRepo.BrandPerformance(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand performance: %w", err)
	}
	totalGear, totalRentals, totalRevenue, err := s.analyticsRepo.AccountTotals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account totals: %w", err)
	}

	for i := range brands {
		b := &brands[i]
		b.TotalRevenue = roundMoney(b.TotalRevenue)
		b.AvgConditionScore = roundMoney(b.AvgConditionScore)
		if b.EquipmentCount > 0 {
			b.UtilizationRate = roundMoney(float64(b.RentedCount) / float64(b.EquipmentCount) * 100)
			b.AvgRevenuePerItem = roundMoney(b.TotalRevenue / float64(b.EquipmentCount))
		}
		if totalRentals > 0 {
			b.DemandPercentage = roundMoney(float64(b.RentalCount) / float64(totalRentals) * 100)
		}
		if totalRevenue > 0 {
			b.RevenuePercentage = roundMoney(b.TotalRevenue / totalRevenue * 100)
		}
	}

	return &models.BrandPerformanceReport{
		Brands: brands,
		Summary: models.BrandPerformanceSummary{
			TotalBrands:    len(brands),
			TotalEquipment: totalGear,
			TotalRevenue:   roundMoney(totalRevenue),
			TotalRentals:   totalRentals,
		},
	}, nil
}

func (s *analyticsService) TimePatterns(ctx context.Context, ownerID int64) (*models.TimePatternsReport, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	rawDays, err := s.analyticsRepo.DayOfWeekPatterns(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load day-of-week patterns: %w", err)
	}
	hours, err := s.analyticsRepo.HourPatterns(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hour patterns: %w", err)
	}
	since := time.Now().AddDate(-1, 0, 0)
	rawMonths, err := s.analyticsRepo.MonthlyPatterns(ctx, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly patterns: %w", err)
	}

	// The store numbers weekdays Sunday-first; remap to Monday-first and
	// keep the week in calendar order.
	days := make([]models.DayOfWeekBucket, len(rawDays))
	for i, bucket := range rawDays {
		bucket.DayOfWeek = (bucket.DayOfWeek + 6) % 7
		bucket.DayName = dayNames[bucket.DayOfWeek]
		days[i] = bucket
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayOfWeek < days[j].DayOfWeek })

	months := make([]models.MonthBucket, len(rawMonths))
	for i, bucket := range rawMonths {
		bucket.MonthName = time.Month(bucket.Month).String()
		bucket.MonthKey = fmt.Sprintf("%04d-%02d", bucket.Year, bucket.Month)
		months[i] = bucket
	}

	report := &models.TimePatternsReport{ByDayOfWeek: days, ByHour: hours, ByMonth: months}

	for i := range days {
		if report.Insights.PeakDay == nil || days[i].RentalCount > report.Insights.PeakDay.RentalCount {
			report.Insights.PeakDay = &days[i]
		}
	}
	for i := range hours {
		if report.Insights.PeakHour == nil || hours[i].RentalCount > report.Insights.PeakHour.RentalCount {
			report.Insights.PeakHour = &hours[i]
		}
	}
	for i := range months {
		if report.Insights.BestMonth == nil || months[i].Revenue > report.Insights.BestMonth.Revenue {
			report.Insights.BestMonth = &months[i]
		}
	}

	return report, nil
}

func (s *analyticsService) Overdue(ctx context.Context, ownerID int64) (*models.OverdueReport, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	items, err := s.analyticsRepo.OverdueRentals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue rentals: %w", err)
	}

	now := time.Now()
	for i := range items {
		items[i].DaysOverdue = int(now.Sub(items[i].DueAt).Hours() / 24)
	}
	return &models.OverdueReport{OverdueRentals: items, Count: len(items)}, nil
}
