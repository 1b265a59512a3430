package repositories

import (
	"context"
	"database/sql"
	"time"

	"ski_rental_backend/internal/models"
)

// IdleCandidate is an available gear item with the timestamp of its last
// completed return, if any. Idle-day math lives in the service layer.
type IdleCandidate struct {
	GearID      int64
	Type        string
	Brand       *string
	Size        *string
	HourlyPrice float64
	DailyPrice  float64
	CreatedAt   time.Time
	LastUsed    *time.Time
}

// AnalyticsRepository exposes the read-only aggregates the dashboard is
// built from. Each method issues exactly one query, so every metric is
// internally consistent even though the dashboard as a whole is not a
// snapshot.
type AnalyticsRepository interface {
	GearStatusCounts(ctx context.Context, ownerID int64) (total, available, rented, broken int, err error)
	RentalCounts(ctx context.Context, ownerID int64) (active, overdue int, err error)
	RevenueSince(ctx context.Context, ownerID int64, since time.Time) (float64, error)
	AvgConditionScore(ctx context.Context, ownerID int64) (float64, error)
	CustomerCounts(ctx context.Context, ownerID int64, monthStart time.Time) (total, newThisMonth int, err error)

	TopEquipment(ctx context.Context, ownerID int64, limit int) ([]models.PopularGearItem, error)
	TypeDistribution(ctx context.Context, ownerID int64) ([]models.TypeCount, error)
	BrandDistribution(ctx context.Context, ownerID int64) ([]models.BrandCount, error)

	TopCustomers(ctx context.Context, ownerID int64, limit int) ([]models.CustomerStat, error)
	CompletedRentalStats(ctx context.Context, ownerID int64) ([]models.CustomerStat, error)
	ProblematicCustomers(ctx context.Context, ownerID int64) ([]models.ProblematicCustomer, error)

	DailyRevenue(ctx context.Context, ownerID int64, since time.Time) ([]models.DailyRevenuePoint, error)
	RevenueByRentalType(ctx context.Context, ownerID int64) ([]models.RevenueTypeBucket, error)
	RevenueByGearType(ctx context.Context, ownerID int64) ([]models.RevenueTypeBucket, error)

	BrandPerformance(ctx context.Context, ownerID int64) ([]models.BrandPerformance, error)
	AccountTotals(ctx context.Context, ownerID int64) (totalGear, totalRentals int, totalRevenue float64, err error)

	DayOfWeekPatterns(ctx context.Context, ownerID int64) ([]models.DayOfWeekBucket, error)
	HourPatterns(ctx context.Context, ownerID int64) ([]models.HourBucket, error)
	MonthlyPatterns(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthBucket, error)

	IdleCandidates(ctx context.Context, ownerID int64) ([]IdleCandidate, error)
	OverdueRentals(ctx context.Context, ownerID int64) ([]models.OverdueRentalItem, error)
}

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GearStatusCounts(ctx context.Context, ownerID int64) (total, available, rented, broken int, err error) {
	query := `SELECT COUNT(*),
	                 COUNT(*) FILTER (WHERE status = 'available'),
	                 COUNT(*) FILTER (WHERE status = 'rented'),
	                 COUNT(*) FILTER (WHERE status = 'broken')
	          FROM gear WHERE owner_id = $1`
	err = r.db.QueryRowContext(ctx, query, ownerID).Scan(&total, &available, &rented, &broken)
	if err != nil {
		return 0, 0, 0, 0, wrapDBError(err, "counting gear by status")
	}
	return total, available, rented, broken, nil
}

func (r *analyticsRepository) RentalCounts(ctx context.Context, ownerID int64) (active, overdue int, err error) {
	query := `SELECT COUNT(*) FILTER (WHERE return_at IS NULL),
	                 COUNT(*) FILTER (WHERE return_at IS NULL AND due_at < NOW())
	          FROM rentals WHERE owner_id = $1`
	err = r.db.QueryRowContext(ctx, query, ownerID).Scan(&active, &overdue)
	if err != nil {
		return 0, 0, wrapDBError(err, "counting rentals")
	}
	return active, overdue, nil
}

func (r *analyticsRepository) RevenueSince(ctx context.Context, ownerID int64, since time.Time) (float64, error) {
	var revenue float64
	query := `SELECT COALESCE(SUM(total_price), 0)::float8 FROM rentals WHERE owner_id = $1 AND start_at >= $2`
	if err := r.db.QueryRowContext(ctx, query, ownerID, since).Scan(&revenue); err != nil {
		return 0, wrapDBError(err, "summing revenue")
	}
	return revenue, nil
}

func (r *analyticsRepository) AvgConditionScore(ctx context.Context, ownerID int64) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(condition_score), 0)::float8 FROM rentals
	          WHERE owner_id = $1 AND condition_score IS NOT NULL`
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&avg); err != nil {
		return 0, wrapDBError(err, "averaging condition score")
	}
	return avg, nil
}

func (r *analyticsRepository) CustomerCounts(ctx context.Context, ownerID int64, monthStart time.Time) (total, newThisMonth int, err error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $2)
	          FROM customers WHERE owner_id = $1`
	err = r.db.QueryRowContext(ctx, query, ownerID, monthStart).Scan(&total, &newThisMonth)
	if err != nil {
		return 0, 0, wrapDBError(err, "counting customers")
	}
	return total, newThisMonth, nil
}

func (r *analyticsRepository) TopEquipment(ctx context.Context, ownerID int64, limit int) ([]models.PopularGearItem, error) {
	query := `SELECT g.id, g.type, b.name, g.size,
	                 COUNT(r.id), COALESCE(SUM(r.total_price), 0)::float8,
	                 g.hourly_price, g.daily_price
	          FROM gear g
	          LEFT JOIN brands b ON g.brand_id = b.id
	          LEFT JOIN rentals r ON r.gear_id = g.id AND r.owner_id = g.owner_id
	          WHERE g.owner_id = $1
	          GROUP BY g.id, b.name
	          ORDER BY COUNT(r.id) DESC
	          LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, wrapDBError(err, "querying top equipment")
	}
	defer rows.Close()

	items := []models.PopularGearItem{}
	for rows.Next() {
		var item models.PopularGearItem
		var brand, size sql.NullString
		if err := rows.Scan(&item.ID, &item.Type, &brand, &size,
			&item.RentalCount, &item.TotalRevenue, &item.HourlyPrice, &item.DailyPrice); err != nil {
			return nil, wrapDBError(err, "scanning top equipment")
		}
		if brand.Valid {
			item.Brand = &brand.String
		}
		if size.Valid {
			item.Size = &size.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *analyticsRepository) TypeDistribution(ctx context.Context, ownerID int64) ([]models.TypeCount, error) {
	query := `SELECT type, COUNT(*) FROM gear WHERE owner_id = $1 GROUP BY type ORDER BY COUNT(*) DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying type distribution")
	}
	defer rows.Close()

	counts := []models.TypeCount{}
	for rows.Next() {
		var tc models.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, wrapDBError(err, "scanning type distribution")
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

func (r *analyticsRepository) BrandDistribution(ctx context.Context, ownerID int64) ([]models.BrandCount, error) {
	query := `SELECT b.name, COUNT(g.id)
	          FROM brands b
	          JOIN gear g ON b.id = g.brand_id AND g.owner_id = b.owner_id
	          WHERE b.owner_id = $1
	          GROUP BY b.name
	          ORDER BY COUNT(g.id) DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying brand distribution")
	}
	defer rows.Close()

	counts := []models.BrandCount{}
	for rows.Next() {
		var bc models.BrandCount
		if err := rows.Scan(&bc.Name, &bc.Count); err != nil {
			return nil, wrapDBError(err, "scanning brand distribution")
		}
		counts = append(counts, bc)
	}
	return counts, rows.Err()
}

func scanCustomerStats(rows *sql.Rows) ([]models.CustomerStat, error) {
	stats := []models.CustomerStat{}
	for rows.Next() {
		var stat models.CustomerStat
		var lastRental sql.NullTime
		if err := rows.Scan(&stat.ID, &stat.FullName, &stat.Phone,
			&stat.RentalCount, &stat.TotalSpent, &lastRental); err != nil {
			return nil, wrapDBError(err, "scanning customer stats")
		}
		if lastRental.Valid {
			stat.LastRental = &lastRental.Time
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (r *analyticsRepository) TopCustomers(ctx context.Context, ownerID int64, limit int) ([]models.CustomerStat, error) {
	query := `SELECT c.id, c.full_name, c.phone,
	                 COUNT(r.id), COALESCE(SUM(r.total_price), 0)::float8, MAX(r.created_at)
	          FROM customers c
	          LEFT JOIN rentals r ON c.id = r.customer_id AND r.owner_id = c.owner_id
	          WHERE c.owner_id = $1
	          GROUP BY c.id
	          ORDER BY COUNT(r.id) DESC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, wrapDBError(err, "querying top customers")
	}
	defer rows.Close()
	return scanCustomerStats(rows)
}

// CompletedRentalStats counts only returned rentals, which is what the
// segmentation partitions are defined over.
func (r *analyticsRepository) CompletedRentalStats(ctx context.Context, ownerID int64) ([]models.CustomerStat, error) {
	query := `SELECT c.id, c.full_name, c.phone,
	                 COUNT(r.id), COALESCE(SUM(r.total_price), 0)::float8, MAX(r.created_at)
	          FROM customers c
	          JOIN rentals r ON c.id = r.customer_id AND r.owner_id = c.owner_id AND r.return_at IS NOT NULL
	          WHERE c.owner_id = $1
	          GROUP BY c.id
	          ORDER BY SUM(r.total_price) DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying completed rental stats")
	}
	defer rows.Close()
	return scanCustomerStats(rows)
}

func (r *analyticsRepository) ProblematicCustomers(ctx context.Context, ownerID int64) ([]models.ProblematicCustomer, error) {
	query := `SELECT c.id, c.full_name, c.phone,
	                 AVG(r.condition_score)::float8, COUNT(r.id), COALESCE(SUM(r.total_price), 0)::float8
	          FROM customers c
	          JOIN rentals r ON c.id = r.customer_id AND r.owner_id = c.owner_id
	          WHERE c.owner_id = $1 AND r.condition_score IS NOT NULL
	          GROUP BY c.id
	          HAVING AVG(r.condition_score) < 3.0
	          ORDER BY AVG(r.condition_score)`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying problematic customers")
	}
	defer rows.Close()

	customers := []models.ProblematicCustomer{}
	for rows.Next() {
		var pc models.ProblematicCustomer
		if err := rows.Scan(&pc.ID, &pc.FullName, &pc.Phone,
			&pc.AvgConditionScore, &pc.RentalCount, &pc.TotalSpent); err != nil {
			return nil, wrapDBError(err, "scanning problematic customers")
		}
		customers = append(customers, pc)
	}
	return customers, rows.Err()
}

func (r *analyticsRepository) DailyRevenue(ctx context.Context, ownerID int64, since time.Time) ([]models.DailyRevenuePoint, error) {
	query := `SELECT to_char(start_at::date, 'YYYY-MM-DD'), COALESCE(SUM(total_price), 0)::float8
	          FROM rentals
	          WHERE owner_id = $1 AND start_at >= $2
	          GROUP BY start_at::date
	          ORDER BY start_at::date`
	rows, err := r.db.QueryContext(ctx, query, ownerID, since)
	if err != nil {
		return nil, wrapDBError(err, "querying daily revenue")
	}
	defer rows.Close()

	points := []models.DailyRevenuePoint{}
	for rows.Next() {
		var p models.DailyRevenuePoint
		if err := rows.Scan(&p.Date, &p.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning daily revenue")
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *analyticsRepository) RevenueByRentalType(ctx context.Context, ownerID int64) ([]models.RevenueTypeBucket, error) {
	query := `SELECT rental_type, COALESCE(SUM(total_price), 0)::float8, COUNT(*)
	          FROM rentals WHERE owner_id = $1 GROUP BY rental_type`
	return r.queryTypeBuckets(ctx, query, ownerID, "querying revenue by rental type")
}

func (r *analyticsRepository) RevenueByGearType(ctx context.Context, ownerID int64) ([]models.RevenueTypeBucket, error) {
	query := `SELECT g.type, COALESCE(SUM(r.total_price), 0)::float8, COUNT(r.id)
	          FROM rentals r
	          JOIN gear g ON r.gear_id = g.id
	          WHERE r.owner_id = $1
	          GROUP BY g.type`
	return r.queryTypeBuckets(ctx, query, ownerID, "querying revenue by gear type")
}

func (r *analyticsRepository) queryTypeBuckets(ctx context.Context, query string, ownerID int64, op string) ([]models.RevenueTypeBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, op)
	}
	defer rows.Close()

	buckets := []models.RevenueTypeBucket{}
	for rows.Next() {
		var b models.RevenueTypeBucket
		if err := rows.Scan(&b.Type, &b.Revenue, &b.Count); err != nil {
			return nil, wrapDBError(err, op)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *analyticsRepository) BrandPerformance(ctx context.Context, ownerID int64) ([]models.BrandPerformance, error) {
	query := `SELECT b.id, b.name,
	                 COUNT(DISTINCT g.id),
	                 COUNT(r.id),
	                 COALESCE(SUM(r.total_price), 0)::float8,
	                 COALESCE(AVG(r.condition_score), 0)::float8,
	                 COUNT(DISTINCT g.id) FILTER (WHERE g.status = 'rented'),
	                 COUNT(DISTINCT g.id) FILTER (WHERE g.status = 'available')
	          FROM brands b
	          LEFT JOIN gear g ON g.brand_id = b.id AND g.owner_id = b.owner_id
	          LEFT JOIN rentals r ON r.gear_id = g.id AND r.owner_id = b.owner_id
	          WHERE b.owner_id = $1
	          GROUP BY b.id, b.name
	          ORDER BY COALESCE(SUM(r.total_price), 0) DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying brand performance")
	}
	defer rows.Close()

	brands := []models.BrandPerformance{}
	for rows.Next() {
		var bp models.BrandPerformance
		if err := rows.Scan(&bp.BrandID, &bp.BrandName, &bp.EquipmentCount, &bp.RentalCount,
			&bp.TotalRevenue, &bp.AvgConditionScore, &bp.RentedCount, &bp.AvailableCount); err != nil {
			return nil, wrapDBError(err, "scanning brand performance")
		}
		brands = append(brands, bp)
	}
	return brands, rows.Err()
}

func (r *analyticsRepository) AccountTotals(ctx context.Context, ownerID int64) (totalGear, totalRentals int, totalRevenue float64, err error) {
	query := `SELECT (SELECT COUNT(*) FROM gear WHERE owner_id = $1),
	                 (SELECT COUNT(*) FROM rentals WHERE owner_id = $1),
	                 (SELECT COALESCE(SUM(total_price), 0)::float8 FROM rentals WHERE owner_id = $1)`
	err = r.db.QueryRowContext(ctx, query, ownerID).Scan(&totalGear, &totalRentals, &totalRevenue)
	if err != nil {
		return 0, 0, 0, wrapDBError(err, "querying account totals")
	}
	return totalGear, totalRentals, totalRevenue, nil
}

// DayOfWeekPatterns returns buckets keyed by the Postgres DOW convention
// (0=Sunday). The service remaps them to Monday-first for presentation.
func (r *analyticsRepository) DayOfWeekPatterns(ctx context.Context, ownerID int64) ([]models.DayOfWeekBucket, error) {
	query := `SELECT EXTRACT(DOW FROM start_at)::int, COUNT(*), COALESCE(SUM(total_price), 0)::float8
	          FROM rentals WHERE owner_id = $1
	          GROUP BY EXTRACT(DOW FROM start_at)
	          ORDER BY EXTRACT(DOW FROM start_at)`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying day-of-week patterns")
	}
	defer rows.Close()

	buckets := []models.DayOfWeekBucket{}
	for rows.Next() {
		var b models.DayOfWeekBucket
		if err := rows.Scan(&b.DayOfWeek, &b.RentalCount, &b.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning day-of-week patterns")
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *analyticsRepository) HourPatterns(ctx context.Context, ownerID int64) ([]models.HourBucket, error) {
	query := `SELECT EXTRACT(HOUR FROM start_at)::int, COUNT(*), COALESCE(SUM(total_price), 0)::float8
	          FROM rentals WHERE owner_id = $1
	          GROUP BY EXTRACT(HOUR FROM start_at)
	          ORDER BY EXTRACT(HOUR FROM start_at)`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying hour patterns")
	}
	defer rows.Close()

	buckets := []models.HourBucket{}
	for rows.Next() {
		var b models.HourBucket
		if err := rows.Scan(&b.Hour, &b.RentalCount, &b.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning hour patterns")
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *analyticsRepository) MonthlyPatterns(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthBucket, error) {
	query := `SELECT EXTRACT(YEAR FROM start_at)::int, EXTRACT(MONTH FROM start_at)::int,
	                 COUNT(*), COALESCE(SUM(total_price), 0)::float8
	          FROM rentals WHERE owner_id = $1 AND start_at >= $2
	          GROUP BY 1, 2
	          ORDER BY 1, 2`
	rows, err := r.db.QueryContext(ctx, query, ownerID, since)
	if err != nil {
		return nil, wrapDBError(err, "querying monthly patterns")
	}
	defer rows.Close()

	buckets := []models.MonthBucket{}
	for rows.Next() {
		var b models.MonthBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.RentalCount, &b.Revenue); err != nil {
			return nil, wrapDBError(err, "scanning monthly patterns")
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *analyticsRepository) IdleCandidates(ctx context.Context, ownerID int64) ([]IdleCandidate, error) {
	query := `SELECT g.id, g.type, b.name, g.size, g.hourly_price, g.daily_price, g.created_at,
	                 MAX(r.return_at)
	          FROM gear g
	          LEFT JOIN brands b ON g.brand_id = b.id
	          LEFT JOIN rentals r ON r.gear_id = g.id AND r.owner_id = g.owner_id AND r.return_at IS NOT NULL
	          WHERE g.owner_id = $1 AND g.status = 'available'
	          GROUP BY g.id, b.name`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying idle candidates")
	}
	defer rows.Close()

	candidates := []IdleCandidate{}
	for rows.Next() {
		var c IdleCandidate
		var brand, size sql.NullString
		var lastUsed sql.NullTime
		if err := rows.Scan(&c.GearID, &c.Type, &brand, &size,
			&c.HourlyPrice, &c.DailyPrice, &c.CreatedAt, &lastUsed); err != nil {
			return nil, wrapDBError(err, "scanning idle candidates")
		}
		if brand.Valid {
			c.Brand = &brand.String
		}
		if size.Valid {
			c.Size = &size.String
		}
		if lastUsed.Valid {
			c.LastUsed = &lastUsed.Time
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *analyticsRepository) OverdueRentals(ctx context.Context, ownerID int64) ([]models.OverdueRentalItem, error) {
	query := `SELECT r.id, r.start_at, r.due_at, r.rental_type, r.total_price::float8,
	                 c.id, c.full_name, c.phone,
	                 g.id, g.type, b.name, g.size
	          FROM rentals r
	          JOIN customers c ON r.customer_id = c.id
	          JOIN gear g ON r.gear_id = g.id
	          LEFT JOIN brands b ON g.brand_id = b.id
	          WHERE r.owner_id = $1 AND r.return_at IS NULL AND r.due_at < NOW()
	          ORDER BY r.due_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError(err, "querying overdue rentals")
	}
	defer rows.Close()

	items := []models.OverdueRentalItem{}
	for rows.Next() {
		var item models.OverdueRentalItem
		var brand, size sql.NullString
		if err := rows.Scan(&item.RentalID, &item.StartAt, &item.DueAt, &item.RentalType, &item.TotalPrice,
			&item.Customer.ID, &item.Customer.FullName, &item.Customer.Phone,
			&item.Gear.ID, &item.Gear.Type, &brand, &size); err != nil {
			return nil, wrapDBError(err, "scanning overdue rentals")
		}
		if brand.Valid {
			item.Gear.Brand = &brand.String
		}
		if size.Valid {
			item.Gear.Size = &size.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
