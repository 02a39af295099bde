package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pptx-quiz-service/internal/ai"
	"pptx-quiz-service/internal/auth"
	"pptx-quiz-service/internal/config"
	"pptx-quiz-service/internal/logger"
	"pptx-quiz-service/internal/storage"
	"pptx-quiz-service/middleware"
	"pptx-quiz-service/routes"
	"pptx-quiz-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// External clients
	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer geminiClient.Close()

	objectStore, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatal("Failed to create object-store client:", err)
	}

	identityClient := auth.NewIdentityClient(cfg.IdentityAPIKey, cfg.IdentityAPIURL)

	// Services
	db := mongoClient.Database(cfg.DBName)
	tracker := services.NewJobTracker(db)
	quizStore := services.NewQuizStore(db)
	questionGen := services.NewQuestionGenerator(geminiClient)
	pipeline := services.NewPipeline(objectStore, tracker, questionGen, quizStore, cfg.ChunkSize, cfg.DefaultQuestionCount)
	officeConverter := services.NewOfficeConverter(cfg)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.TracingMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(identityClient)

	// Setup routes
	routes.SetupQuizRoutes(router, pipeline)
	routes.SetupConvertRoutes(router, officeConverter, services.RenderHTMLToPDF, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
