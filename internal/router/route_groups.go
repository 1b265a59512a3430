package router

import (
	"ski_rental_backend/internal/handlers"
	"ski_rental_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes. Register and login
// are public; the profile endpoint requires a token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetProfile)
		}
	}
}

// SetupGearRoutes sets up the gear fleet routes.
func SetupGearRoutes(authenticatedGroup *gin.RouterGroup, gearHandler *handlers.GearHandler) {
	gearRoutes := authenticatedGroup.Group("/gear")
	{
		gearRoutes.POST("", gearHandler.CreateGear)
		gearRoutes.GET("", gearHandler.GetGear)
		gearRoutes.GET("/:id", gearHandler.GetGearByID)
		gearRoutes.PUT("/:id", gearHandler.UpdateGear)
		gearRoutes.DELETE("/:id", gearHandler.DeleteGear)
		gearRoutes.POST("/:id/mark-broken", gearHandler.MarkBroken)
		gearRoutes.POST("/:id/mark-repaired", gearHandler.MarkRepaired)
	}
}

// SetupCustomerRoutes sets up the customer directory routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}

// SetupBrandRoutes sets up the brand catalog routes.
func SetupBrandRoutes(authenticatedGroup *gin.RouterGroup, brandHandler *handlers.BrandHandler) {
	brandRoutes := authenticatedGroup.Group("/brands")
	{
		brandRoutes.POST("", brandHandler.CreateBrand)
		brandRoutes.GET("", brandHandler.GetBrands)
		brandRoutes.GET("/:id", brandHandler.GetBrandByID)
		brandRoutes.PUT("/:id", brandHandler.UpdateBrand)
		brandRoutes.DELETE("/:id", brandHandler.DeleteBrand)
	}
}

// SetupRentalRoutes sets up the rental ledger routes.
func SetupRentalRoutes(authenticatedGroup *gin.RouterGroup, rentalHandler *handlers.RentalHandler) {
	rentalRoutes := authenticatedGroup.Group("/rentals")
	{
		rentalRoutes.POST("", rentalHandler.CreateRental)
		rentalRoutes.GET("", rentalHandler.GetRentals)
		rentalRoutes.GET("/:id", rentalHandler.GetRentalByID)
		rentalRoutes.POST("/:id/return", rentalHandler.ReturnRental)
	}
}

// SetupAnalyticsRoutes sets up the reporting routes.
func SetupAnalyticsRoutes(authenticatedGroup *gin.RouterGroup, analyticsHandler *handlers.AnalyticsHandler) {
	analyticsRoutes := authenticatedGroup.Group("/analytics")
	{
		analyticsRoutes.GET("/dashboard", analyticsHandler.Dashboard)
		analyticsRoutes.GET("/equipment/popular", analyticsHandler.PopularEquipment)
		analyticsRoutes.GET("/equipment/idle", analyticsHandler.IdleEquipment)
		analyticsRoutes.GET("/customers/top", analyticsHandler.TopCustomers)
		analyticsRoutes.GET("/customers/segmentation", analyticsHandler.Segmentation)
		analyticsRoutes.GET("/customers/problematic", analyticsHandler.ProblematicCustomers)
		analyticsRoutes.GET("/revenue", analyticsHandler.Revenue)
		analyticsRoutes.GET("/brands/performance", analyticsHandler.BrandPerformance)
		analyticsRoutes.GET("/rentals/time-patterns", analyticsHandler.TimePatterns)
		analyticsRoutes.GET("/overdue", analyticsHandler.Overdue)
	}
}
