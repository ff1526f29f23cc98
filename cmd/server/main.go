package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"ibmentor/config"
	"ibmentor/controllers"
	"ibmentor/db"
	"ibmentor/internal/metrics"
	"ibmentor/internal/usage"
	"ibmentor/middlewares"
	"ibmentor/routes"
	"ibmentor/services"
	"ibmentor/utils"
	"ibmentor/websocket"

	"github.com/casbin/casbin/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "./config/config.prod.yml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Connect to MongoDB; Connect also builds the collection indexes
	store, err := db.Connect(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	// Redis backs the daily AI usage counters
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")

	cognito, err := services.NewCognitoAuth(ctx, cfg.Cognito)
	if err != nil {
		log.Fatalf("Failed to set up Cognito client: %v", err)
	}

	enforcer, err := middlewares.NewEnforcer(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to set up RBAC enforcer: %v", err)
	}

	// Seed demo accounts so a fresh install has a non-empty leaderboard
	utils.SeedDemoUsers(ctx, store)

	// Create the upload directory up front
	os.MkdirAll(cfg.Server.UploadDir, os.ModePerm)

	router := setupRouter(cfg, store, rdb, cognito, enforcer)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config, store *db.Store, rdb *redis.Client, cognito *services.CognitoAuth, enforcer *casbin.Enforcer) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	router.Use(metrics.Middleware())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Uploaded avatars, post images and stories are served straight from disk
	router.Static("/uploads", cfg.Server.UploadDir)

	gateway := services.NewOpenRouter(cfg.OpenRouter.ApiKey, cfg.OpenRouter.BaseURL)
	retrieval := services.NewRetrievalService(store, gateway)
	links := services.NewLinkAnswerService(gateway)
	tutor := services.NewTutorService(gateway, retrieval, links)
	flashcards := services.NewFlashcardService(gateway)
	marker := services.NewMarkerService(gateway)
	gamify := services.NewGamifyService(store)
	limiter := usage.NewLimiter(rdb)
	hub := websocket.NewHub(cognito, store)

	authCtrl := controllers.NewAuthController(cognito)
	tutorCtrl := controllers.NewTutorController(store, tutor, retrieval, links, limiter, gamify)
	flashcardCtrl := controllers.NewFlashcardController(store, flashcards, limiter, gamify)
	essayCtrl := controllers.NewEssayController(store, marker, limiter, gamify)
	profileCtrl := controllers.NewProfileController(store, cfg.Server.UploadDir)
	socialCtrl := controllers.NewSocialController(store, cfg.Server.UploadDir)
	dashboardCtrl := controllers.NewDashboardController(store, limiter, gamify)
	adminCtrl := controllers.NewAdminController(store, cfg.Admin.JWTSecret, cfg.Admin.TokenTTLHours)

	// Public routes for signup, login and password recovery
	routes.SetupAuthRoutes(router, authCtrl)

	// Protected routes (Cognito access token)
	api := router.Group("/")
	api.Use(middlewares.Auth(cognito, store))
	{
		routes.SetupTutorRoutes(api, tutorCtrl)
		routes.SetupFlashcardRoutes(api, flashcardCtrl)
		routes.SetupEssayRoutes(api, essayCtrl)
		routes.SetupProfileRoutes(api, profileCtrl)
		routes.SetupCommunityRoutes(api, socialCtrl)
		routes.SetupDashboardRoutes(api, dashboardCtrl)
	}

	// Study room websocket plus its lobby listing
	routes.SetupStudyRoomRoutes(router, api, hub)

	// Staff endpoints use their own JWT auth, separate from Cognito
	routes.SetupAdminRoutes(router, adminCtrl, store, enforcer, cfg.Admin.JWTSecret)

	return router
}
