package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/JoyKMondal/Mern-Blog-App/internal/handlers"
	"github.com/JoyKMondal/Mern-Blog-App/internal/middleware"
	"github.com/JoyKMondal/Mern-Blog-App/internal/repositories"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/config"
	"github.com/JoyKMondal/Mern-Blog-App/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, firebaseAuthClient *auth.Client, store *storage.Client, cfg *config.Config) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "Hello, World!"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	blogRepo := repositories.NewMongoBlogRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	requireAuth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	// --- User routes ---
	users := e.Group("/api/users")

	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(users)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterPublicRoutes(users)

	profile := users.Group("", requireAuth)
	userHandler.RegisterProfileRoutes(profile)
	log.Println("User profile routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, blogRepo, commentRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(profile)
	log.Println("Notification routes configured.")

	// --- Blog routes ---
	blogs := e.Group("/api/blogs")

	blogHandler := handlers.NewBlogHandler(blogRepo, userRepo, commentRepo, notificationRepo)
	blogHandler.RegisterPublicRoutes(blogs)

	commentHandler := handlers.NewCommentHandler(commentRepo, blogRepo, notificationRepo, userRepo)
	commentHandler.RegisterPublicRoutes(blogs)

	authored := blogs.Group("", requireAuth)
	blogHandler.RegisterBlogRoutes(authored)
	log.Println("Blog routes configured.")

	likeHandler := handlers.NewLikeHandler(blogRepo, notificationRepo)
	likeHandler.RegisterLikeRoutes(authored)
	log.Println("Like routes configured.")

	commentHandler.RegisterCommentRoutes(authored)
	log.Println("Comment routes configured.")

	// --- Upload routes ---
	uploadHandler := handlers.NewUploadHandler(store)

	uploads := e.Group("", requireAuth)
	uploadHandler.RegisterUploadRoutes(uploads)

	files := e.Group("/api/files")
	uploadHandler.RegisterFileRoutes(files)
	log.Println("Upload routes configured.")

	log.Println("All routes configured.")
}
