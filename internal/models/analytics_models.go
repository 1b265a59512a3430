package models

import "time"

// DashboardSummary holds the headline metrics for the dashboard view.
// Every field is recomputed from the base tables at query time.
type DashboardSummary struct {
	Equipment EquipmentSummary `json:"equipment"`
	Customers CustomerCounts   `json:"customers"`
	Rentals   RentalCounts     `json:"rentals"`
	Revenue   RevenueSummary   `json:"revenue"`
	Quality   QualitySummary   `json:"quality"`
}

type EquipmentSummary struct {
	Total         int     `json:"total"`
	Available     int     `json:"available"`
	Rented        int     `json:"rented"`
	Overdue       int     `json:"overdue"`
	Broken        int     `json:"broken"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type CustomerCounts struct {
	Total        int `json:"total"`
	NewThisMonth int `json:"new_this_month"`
}

type RentalCounts struct {
	Active  int `json:"active"`
	Overdue int `json:"overdue"`
}

type RevenueSummary struct {
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

type QualitySummary struct {
	AvgConditionScore float64 `json:"avg_condition_score"`
}

// PopularGearItem is one row of the top-equipment ranking.
type PopularGearItem struct {
	ID           int64   `json:"id"`
	Type         string  `json:"type"`
	Brand        *string `json:"brand,omitempty"`
	Size         *string `json:"size,omitempty"`
	RentalCount  int     `json:"rental_count"`
	TotalRevenue float64 `json:"total_revenue"`
	HourlyPrice  float64 `json:"hourly_price"`
	DailyPrice   float64 `json:"daily_price"`
}

// TypeCount is a gear count bucketed by gear type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BrandCount is a gear count bucketed by brand.
type BrandCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PopularEquipmentReport aggregates the equipment popularity view.
type PopularEquipmentReport struct {
	TopEquipment []PopularGearItem `json:"top_equipment"`
	ByType       []TypeCount       `json:"by_type"`
	ByBrand      []BrandCount      `json:"by_brand"`
}

// CustomerStat carries per-customer lifetime rental aggregates.
type CustomerStat struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	RentalCount int        `json:"rental_count"`
	TotalSpent  float64    `json:"total_spent"`
	LastRental  *time.Time `json:"last_rental,omitempty"`
}

// TopCustomersReport is the top-customer ranking view.
type TopCustomersReport struct {
	TopCustomers []CustomerStat `json:"top_customers"`
	NewThisMonth int            `json:"new_this_month"`
}

// CustomerSegment is one partition of the segmentation view.
type CustomerSegment struct {
	Customers    []CustomerStat `json:"customers"`
	Count        int            `json:"count"`
	TotalRevenue float64        `json:"total_revenue"`
}

// SegmentationReport partitions customers by completed-rental count:
// vip >= 5, regular 2-4, occasional 1. Customers with no completed
// rentals are excluded, so the partitions are disjoint and exhaustive
// over customers with at least one completed rental.
type SegmentationReport struct {
	VIP        CustomerSegment     `json:"vip"`
	Regular    CustomerSegment     `json:"regular"`
	Occasional CustomerSegment     `json:"occasional"`
	Summary    SegmentationSummary `json:"summary"`
}

type SegmentationSummary struct {
	TotalCustomers int     `json:"total_customers"`
	VIPPercentage  float64 `json:"vip_percentage"`
}

// ProblematicCustomer is a customer whose scored returns average below 3.0.
type ProblematicCustomer struct {
	ID                int64   `json:"id"`
	FullName          string  `json:"full_name"`
	Phone             string  `json:"phone"`
	AvgConditionScore float64 `json:"avg_condition_score"`
	RentalCount       int     `json:"rental_count"`
	TotalSpent        float64 `json:"total_spent"`
}

// ProblematicCustomersReport lists problematic customers, worst first.
type ProblematicCustomersReport struct {
	ProblematicCustomers []ProblematicCustomer `json:"problematic_customers"`
	Count                int                   `json:"count"`
}

// DailyRevenuePoint is one day of the revenue series.
type DailyRevenuePoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Revenue float64 `json:"revenue"`
}

// RevenueTypeBucket aggregates revenue and count for one rental or gear type.
type RevenueTypeBucket struct {
	Type    string  `json:"type"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// RevenueReport is the revenue breakdown view.
type RevenueReport struct {
	Daily        []DailyRevenuePoint          `json:"daily"`
	ByRentalType map[string]RevenueTypeBucket `json:"by_rental_type"`
	ByGearType   []RevenueTypeBucket          `json:"by_gear_type"`
}

// IdleGearItem is gear that has not been rented within the idle threshold.
type IdleGearItem struct {
	GearID               int64      `json:"gear_id"`
	Type                 string     `json:"type"`
	Brand                *string    `json:"brand,omitempty"`
	Size                 *string    `json:"size,omitempty"`
	HourlyPrice          float64    `json:"hourly_price"`
	DailyPrice           float64    `json:"daily_price"`
	DaysIdle             int        `json:"days_idle"`
	LastUsed             *time.Time `json:"last_used,omitempty"`
	PotentialLostRevenue float64    `json:"potential_lost_revenue"`
}

// IdleEquipmentReport ranks idle gear by days idle, descending.
type IdleEquipmentReport struct {
	IdleEquipment             []IdleGearItem `json:"idle_equipment"`
	Count                     int            `json:"count"`
	TotalPotentialLostRevenue float64        `json:"total_potential_lost_revenue"`
}

// BrandPerformance carries per-brand fleet and revenue metrics.
type BrandPerformance struct {
	BrandID           int64   `json:"brand_id"`
	BrandName         string  `json:"brand_name"`
	EquipmentCount    int     `json:"equipment_count"`
	RentalCount       int     `json:"rental_count"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgConditionScore float64 `json:"avg_condition_score"`
	RentedCount       int     `json:"rented_count"`
	AvailableCount    int     `json:"available_count"`
	UtilizationRate   float64 `json:"utilization_rate"`
	DemandPercentage  float64 `json:"demand_percentage"`
	RevenuePercentage float64 `json:"revenue_percentage"`
	AvgRevenuePerItem float64 `json:"avg_revenue_per_item"`
}

// BrandPerformanceReport is the brand ranking view, by revenue descending.
type BrandPerformanceReport struct {
	Brands  []BrandPerformance      `json:"brands"`
	Summary BrandPerformanceSummary `json:"summary"`
}

type BrandPerformanceSummary struct {
	TotalBrands    int     `json:"total_brands"`
	TotalEquipment int     `json:"total_equipment"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalRentals   int     `json:"total_rentals"`
}

// DayOfWeekBucket is rentals bucketed by weekday. Weekday is 0=Monday
// through 6=Sunday for presentation, regardless of the store's
// day-numbering convention.
type DayOfWeekBucket struct {
	DayOfWeek   int     `json:"day_of_week"`
	DayName     string  `json:"day_name"`
	RentalCount int     `json:"rental_count"`
	Revenue     float64 `json:"revenue"`
}

// HourBucket is rentals bucketed by start hour (0-23).
type HourBucket struct {
	Hour        int     `json:"hour"`
	RentalCount int     `json:"rental_count"`
	Revenue     float64 `json:"revenue"`
}

// MonthBucket is rentals bucketed by calendar month.
type MonthBucket struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	MonthName   string  `json:"month_name"`
	MonthKey    string  `json:"month_key"` // YYYY-MM
	RentalCount int     `json:"rental_count"`
	Revenue     float64 `json:"revenue"`
}

// TimePatternsReport is the seasonality view.
type TimePatternsReport struct {
	ByDayOfWeek []DayOfWeekBucket   `json:"by_day_of_week"`
	ByHour      []HourBucket        `json:"by_hour"`
	ByMonth     []MonthBucket       `json:"by_month"`
	Insights    TimePatternInsights `json:"insights"`
}

type TimePatternInsights struct {
	PeakDay   *DayOfWeekBucket `json:"peak_day,omitempty"`
	PeakHour  *HourBucket      `json:"peak_hour,omitempty"`
	BestMonth *MonthBucket     `json:"best_month,omitempty"`
}

// OverdueRentalItem is one open rental past its due date.
type OverdueRentalItem struct {
	RentalID    int64           `json:"rental_id"`
	StartAt     time.Time       `json:"start_at"`
	DueAt       time.Time       `json:"due_at"`
	DaysOverdue int             `json:"days_overdue"`
	RentalType  string          `json:"rental_type"`
	TotalPrice  float64         `json:"total_price"`
	Customer    CustomerSummary `json:"customer"`
	Gear        GearSummary     `json:"gear"`
}

// OverdueReport lists overdue rentals, earliest due date first.
type OverdueReport struct {
	OverdueRentals []OverdueRentalItem `json:"overdue_rentals"`
	Count          int                 `json:"count"`
}
