package main

import (
	"os"
	"strings"

	"ski_rental_backend/internal/database"
	"ski_rental_backend/internal/handlers"
	appRouter "ski_rental_backend/internal/router"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "ski_rental_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "ski_rental_password")
	dbName := utils.Getenv("DB_NAME", "ski_rental_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/health", handlers.HealthCheck(database.GetDB()))

	appRouter.Setup(engine, database.GetDB())

	port := utils.Getenv("PORT", "8080")
	log.Info().Str("port", port).Msg("Server starting")

	if err := engine.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
