package router

import (
	"database/sql"
	"strconv"

	"ski_rental_backend/internal/handlers"
	"ski_rental_backend/internal/middleware"
	"ski_rental_backend/internal/repositories"
	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	ownerRepo := repositories.NewOwnerRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	gearRepo := repositories.NewGearRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	rentalRepo := repositories.NewRentalRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	idleThreshold, err := strconv.Atoi(utils.Getenv("IDLE_THRESHOLD_DAYS", "7"))
	if err != nil {
		idleThreshold = 7
	}

	// Initialize Services
	authService := services.NewAuthService(ownerRepo)
	brandService := services.NewBrandService(brandRepo)
	gearService := services.NewGearService(gearRepo, brandRepo, rentalRepo)
	customerService := services.NewCustomerService(customerRepo, rentalRepo)
	rentalService := services.NewRentalService(rentalRepo, gearRepo, customerRepo, db)
	analyticsService := services.NewAnalyticsService(analyticsRepo, idleThreshold)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	brandHandler := handlers.NewBrandHandler(brandService)
	gearHandler := handlers.NewGearHandler(gearService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	rentalHandler := handlers.NewRentalHandler(rentalService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupGearRoutes(authenticated, gearHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupBrandRoutes(authenticated, brandHandler)
		SetupRentalRoutes(authenticated, rentalHandler)
		SetupAnalyticsRoutes(authenticated, analyticsHandler)
	}
}
