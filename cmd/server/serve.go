package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/api/handlers"
	"github.com/maheshrc27/selfpost/internal/api/middleware"
	job "github.com/maheshrc27/selfpost/internal/jobs"
	"github.com/maheshrc27/selfpost/internal/metrics"
	"github.com/maheshrc27/selfpost/internal/queue"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

const upstreamTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, publish worker and cron jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(config.LoadConfig())
	},
}

func serve(cfg *config.Config) error {
	if missing := cfg.Validate(); len(missing) > 0 {
		log.Fatalf("Missing required configuration: %s", strings.Join(missing, ", "))
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB(db)

	metrics.MustRegister()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	googleHTTP := metrics.NewHTTPClient("google", nil, upstreamTimeout)
	facebookHTTP := metrics.NewHTTPClient("facebook", nil, upstreamTimeout)

	// repositories
	cipher := utils.NewTokenCipher(cfg.EncryptionKey())
	txRunner := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewSocialProfileRepository(db, cipher)
	postRepo := repository.NewPostRepository(db)
	mappingRepo := repository.NewPostSocialMappingRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// upstream clients
	googleClient := service.NewGoogleBusinessClient(googleHTTP, service.GoogleClientOptions{
		AccountsEndpoint: cfg.Google.AccountsAPIURL,
		InfoEndpoint:     cfg.Google.InfoAPIURL,
		ReviewsEndpoint:  cfg.Google.ReviewsAPIURL,
	})
	facebookClient := service.NewFacebookClient(facebookHTTP, service.FacebookClientOptions{
		GraphURL: cfg.Facebook.GraphURL,
		MockMode: cfg.Facebook.MockMode,
	})

	r2Client, err := service.NewR2Client(context.Background(), cfg.R2)
	if err != nil {
		log.Fatal(err)
	}

	// services
	connectionService := service.NewConnectionService(txRunner, userRepo, profileRepo)
	tokenService := service.NewTokenService(*cfg, profileRepo, googleHTTP)
	oauthService := service.NewOAuthService(*cfg, googleClient, facebookClient, googleHTTP)
	businessService := service.NewBusinessProfileService(connectionService, tokenService, googleClient)
	facebookService := service.NewFacebookService(connectionService, facebookClient)
	debugService := service.NewDebugService(*cfg, oauthService, connectionService, tokenService)
	mediaService := service.NewMediaService(r2Client, cfg.R2.BucketName, cfg.R2.PublicURL)
	analyticsService := service.NewAnalyticsService(analyticsRepo, mappingRepo, postRepo, profileRepo, facebookClient)
	postService := service.NewPostService(txRunner, postRepo, mappingRepo, profileRepo, analyticsRepo, userRepo,
		facebookService, businessService, queue.NewScheduler(client))

	if cfg.Facebook.MockMode {
		log.Println("Facebook mock mode is enabled")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New())
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigin,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	registerRoutes(app, *cfg, routeDeps{
		users:       userRepo,
		connections: connectionService,
		oauth:       oauthService,
		business:    businessService,
		facebook:    facebookService,
		debug:       debugService,
		posts:       postService,
		analytics:   analyticsService,
		media:       mediaService,
	})

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(profileRepo, tokenService)
	analyticsJob := job.NewAnalyticsJob(analyticsService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.Run)
	c.AddFunc("@every 01h00m00s", analyticsJob.Run)
	c.Start()
	defer c.Stop()

	// queue
	worker := queue.NewQueue(postService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	worker.Register(mux)

	log.Println("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server)
	return nil
}

type routeDeps struct {
	users       repository.UserRepository
	connections service.ConnectionService
	oauth       service.OAuthService
	business    service.BusinessProfileService
	facebook    service.FacebookService
	debug       service.DebugService
	posts       service.PostService
	analytics   service.AnalyticsService
	media       service.MediaService
}

func registerRoutes(app *fiber.App, cfg config.Config, d routeDeps) {
	app.Get("/health", handlers.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := handlers.NewAuthHandler(cfg, d.oauth, d.connections)
	app.Get("/auth/google", auth.GoogleAuth)
	app.Get("/auth/google/oauth/callback", auth.GoogleCallback)
	app.Get("/auth/facebook", auth.FacebookAuth)
	app.Get("/auth/facebook/oauth/callback", auth.FacebookCallback)

	connections := handlers.NewConnectionHandler(d.connections)
	app.Get("/auth/connections/:email", connections.Connections)
	app.Delete("/auth/disconnect/:email/:platform", connections.Disconnect)
	app.Post("/auth/clear-oauth-state/:email", connections.ClearOAuthState)
	app.Get("/social-profiles", connections.ListProfiles)
	app.Get("/social-profiles/:id", connections.GetProfile)

	business := handlers.NewBusinessHandler(d.business)
	app.Get("/auth/google-profile/:email", business.GoogleProfile)
	app.Get("/auth/business-accounts/:email", business.BusinessAccounts)
	app.Get("/auth/business-profile/:email/:accountName", business.BusinessProfile)
	app.Get("/auth/location/:email/*", business.LocationDetails)
	app.Patch("/auth/location/:email/*", business.UpdateLocation)
	app.Post("/auth/post/:locationName/:email", business.CreatePost)
	app.Post("/auth/review-reply/:email", business.ReviewReply)

	facebook := handlers.NewFacebookHandler(d.facebook)
	app.Get("/auth/facebook/pages/:email", facebook.Pages)
	app.Post("/auth/facebook/post/:email/:pageId", facebook.Post)
	app.Get("/auth/facebook/insights/:email/:pageId", facebook.Insights)

	debug := handlers.NewDebugHandler(cfg, d.debug, d.connections, d.business)
	app.Get("/auth/debug/google", debug.Google)
	app.Get("/auth/debug/facebook", debug.Facebook)
	app.Get("/auth/debug/oauth-url", debug.OAuthURL)
	app.Get("/auth/debug/tokens/:email", debug.Tokens)
	app.Get("/auth/debug/capabilities/:email", debug.Capabilities)
	app.Post("/auth/debug/test-token-refresh/:email", debug.TestTokenRefresh)
	app.Get("/auth/debug/validate-environment", debug.ValidateEnvironment)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(d.users, d.connections)
	api.Get("/user/info", user.GetUserInfo)

	post := handlers.NewPostHandler(d.posts, d.analytics)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Get("/posts/:id/analytics", post.Analytics)

	media := handlers.NewMediaHandler(d.media)
	api.Post("/media", media.Upload)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
}

func gracefulShutdown(app *fiber.App, worker *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	worker.Shutdown()

	fmt.Println("Server shutdown complete.")
}
