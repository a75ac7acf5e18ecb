package main

import (
	"context"
	"log"

	"github.com/JoyKMondal/Mern-Blog-App/internal/router"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/config"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/firebase"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/storage"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx := context.Background()

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Initialize object storage
	store, err := storage.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Validator
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Database, firebaseApp.AuthClient, store, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
