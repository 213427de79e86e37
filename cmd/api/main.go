package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	user "Glupulse_MealPlan/internal/User"
	"Glupulse_MealPlan/internal/admin"
	"Glupulse_MealPlan/internal/auth"
	"Glupulse_MealPlan/internal/config"
	"Glupulse_MealPlan/internal/database"
	"Glupulse_MealPlan/internal/foodcatalog"
	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealplan"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/metrics"
	"Glupulse_MealPlan/internal/server"
	"Glupulse_MealPlan/internal/utility"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight generations may still be waiting on the model.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	ctx := context.Background()

	// 1. Configuration and logging
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	// 2. Database
	dbService, err := database.NewService(ctx, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbService.Close()

	// 3. Gemini client and guideline documents
	client, err := geminiservice.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	defer client.Close()

	references := geminiservice.NewReferenceLibrary()
	var sources []geminiservice.ReferenceSource
	if cfg.References() {
		sources = []geminiservice.ReferenceSource{
			{Principle: mealsafety.PrincipleLowCarbHighFat, Path: cfg.ReferenceLCHFPath},
			{Principle: mealsafety.PrincipleLowFatVegan, Path: cfg.ReferenceLFVPath},
		}
		uploadCtx, cancel := context.WithTimeout(ctx, cfg.GeminiTimeout)
		if err := references.Load(uploadCtx, client, sources); err != nil {
			// Plans are still generated, just without the attached guidelines.
			log.Warn().Err(err).Msg("Failed to upload reference documents")
		}
		cancel()
	}

	// 4. Meal plan pipeline
	m := metrics.NewMealPlanMetrics(prometheus.DefaultRegisterer)
	repo := mealplan.NewRepository(dbService.Queries(), dbService, cfg.HistoryCacheSize, cfg.HistoryCacheTTL, m, log.Logger)
	catalog := foodcatalog.NewCatalog(dbService.Queries(), cfg.FoodCatalogCacheTTL, log.Logger)
	svc := mealplan.NewService(mealplan.Deps{
		Generator:        client,
		Allergies:        repo,
		History:          repo,
		Foods:            catalog,
		References:       references,
		Metrics:          m,
		RecentWindowDays: cfg.RecentMealsWindowDays,
		Logger:           log.Logger,
	})

	var limiter *utility.RateLimiter
	if cfg.GenerateRateLimit > 0 {
		limiter = utility.NewRateLimiter(cfg.GenerateRateWindow, cfg.GenerateRateLimit)
	}

	authenticator, err := auth.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize authentication")
	}

	// 5. HTTP server
	apiServer := server.New(cfg.Port, server.Deps{
		DB:        dbService,
		Auth:      authenticator,
		MealPlans: user.NewMealPlanHandler(repo, svc, limiter),
		Foods:     user.NewFoodHandler(catalog, repo),
		Admin:     admin.NewHandler(references, client, sources, cfg.AdminUserIDs),
	}).HTTPServer()

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Str("addr", apiServer.Addr).Str("env", cfg.AppEnv).Msg("Starting meal plan API")
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
