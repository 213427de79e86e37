package server

import (
	"fmt"
	"net/http"

	"Glupulse_MealPlan/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/mem"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Validator = utility.NewRequestValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	// Public
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// Protected routes
	protected := e.Group("")
	protected.Use(s.auth.JwtAuthMiddleware)

	// Meal plan Functions Routes
	protected.POST("/mealplan/generate", s.mealPlans.GenerateMealPlanHandler)
	protected.POST("/mealplan/validate", s.mealPlans.ValidateMealPlanHandler)
	protected.GET("/mealplan/fallback", s.mealPlans.GetFallbackPlanHandler)
	protected.GET("/mealplan/history", s.mealPlans.GetMealPlanHistoryHandler)

	// Food catalog Routes
	if s.foods != nil {
		protected.GET("/foods", s.foods.SearchFoodsHandler)
		protected.GET("/foods/categories", s.foods.GetFoodCategoriesHandler)
	}

	// Admin Functions Routes
	if s.admin != nil {
		adminGroup := protected.Group("/admin", s.admin.RequireAdmin)
		adminGroup.GET("/health", s.admin.GetServerHealthHandler)
		adminGroup.GET("/references", s.admin.GetReferencesHandler)
		adminGroup.POST("/references/reload", s.admin.ReloadReferencesHandler)
	}

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	stats := map[string]interface{}{
		"database": s.db.Health(c.Request().Context()),
	}

	if v, err := mem.VirtualMemory(); err == nil {
		stats["memory"] = map[string]string{
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      fmt.Sprintf("%.2f GB", float64(v.Free)/1024/1024/1024),
		}
	} else {
		log.Warn().Err(err).Msg("Failed to read memory stats")
	}

	status := http.StatusOK
	if db, ok := stats["database"].(map[string]string); ok && db["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, stats)
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}
