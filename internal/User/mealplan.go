package user

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealplan"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryDays = 7
	maxHistoryDays     = 90
)

// MealPlanStore is the persistence the meal plan handlers need. *mealplan.Repository implements it.
type MealPlanStore interface {
	GetUserProfile(ctx context.Context, userID string) (*geminiservice.UserProfile, error)
	GetMedicalCondition(ctx context.Context, userID string) (*geminiservice.MedicalCondition, error)
	GetUserAllergies(ctx context.Context, userID string) ([]mealsafety.Allergy, error)
	ListCuisinePreferences(ctx context.Context, userID string) ([]string, error)
	SavePlan(ctx context.Context, userID string, planDate time.Time, res mealplan.Result) ([]string, error)
	ListHistory(ctx context.Context, userID string, days int) ([]mealplan.HistoryEntry, error)
}

// MealPlanGenerator is satisfied by *mealplan.Service.
type MealPlanGenerator interface {
	GenerateMealPlan(ctx context.Context, req mealplan.Request) mealplan.Result
}

type MealPlanHandler struct {
	store     MealPlanStore
	generator MealPlanGenerator
	limiter   *utility.RateLimiter
	now       func() time.Time
}

// NewMealPlanHandler wires the handlers. A nil limiter disables rate limiting.
func NewMealPlanHandler(store MealPlanStore, generator MealPlanGenerator, limiter *utility.RateLimiter) *MealPlanHandler {
	return &MealPlanHandler{store: store, generator: generator, limiter: limiter, now: time.Now}
}

type GenerateMealPlanRequest struct {
	PlanDate           string   `json:"plan_date" validate:"omitempty,datetime=2006-01-02"`
	CuisinePreferences []string `json:"cuisine_preferences" validate:"omitempty,max=10,dive,min=1,max=50"`
}

type MealPlanResponse struct {
	MealPlan    mealsafety.MealPlan `json:"meal_plan"`
	Source      string              `json:"source"`
	Reason      string              `json:"reason,omitempty"`
	Violations  []string            `json:"violations"`
	Warnings    []string            `json:"warnings,omitempty"`
	PlanDate    string              `json:"plan_date"`
	MealPlanIDs []string            `json:"meal_plan_ids"`
}

type ValidateMealPlanRequest struct {
	DietType  string              `json:"diet_type" validate:"max=32"`
	Allergies []string            `json:"allergies" validate:"omitempty,max=30,dive,max=64"`
	MealPlan  mealsafety.MealPlan `json:"meal_plan"`
}

type ValidateMealPlanResponse struct {
	HardConstraints mealsafety.ConstraintResult `json:"hard_constraints"`
	Allergens       mealsafety.AllergenResult   `json:"allergens"`
	MissingSlots    []string                    `json:"missing_slots"`
}

// requestLogger returns the per-request logger set by LoggerMiddleware.
func requestLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

/* =================================================================================
								MEAL PLAN HANDLERS
=================================================================================*/

// GenerateMealPlanHandler generates, validates and stores a daily plan for the caller.
func (h *MealPlanHandler) GenerateMealPlanHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	// 1. Get UserID from JWT
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	// 2. Parse and Validate Request Body
	var req GenerateMealPlanRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	planDate := h.now()
	if req.PlanDate != "" {
		// already validated
		planDate, _ = time.Parse("2006-01-02", req.PlanDate)
	}

	// 3. Rate limit the model calls
	if h.limiter != nil {
		if err := h.limiter.Allow(userID, h.now()); err != nil {
			logger.Warn().Str("user_id", userID).Msg("Meal plan generation rate limited")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		}
	}

	// 4. Load user context in parallel; each lookup keeps its own error
	var (
		profile   *geminiservice.UserProfile
		condition *geminiservice.MedicalCondition
		allergies []mealsafety.Allergy
		cuisines  []string
	)
	var profileErr, conditionErr, allergyErr, cuisineErr error
	var g errgroup.Group
	g.Go(func() error {
		profile, profileErr = h.store.GetUserProfile(ctx, userID)
		return nil
	})
	g.Go(func() error {
		condition, conditionErr = h.store.GetMedicalCondition(ctx, userID)
		return nil
	})
	g.Go(func() error {
		allergies, allergyErr = h.store.GetUserAllergies(ctx, userID)
		return nil
	})
	g.Go(func() error {
		cuisines, cuisineErr = h.store.ListCuisinePreferences(ctx, userID)
		return nil
	})
	_ = g.Wait()

	// No plan, generated or fallback, is served without the allergies
	if allergyErr != nil {
		logger.Error().Err(allergyErr).Str("user_id", userID).Msg("Failed to load allergies for meal plan")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": mealsafety.UnableToValidateViolation})
	}
	if cuisineErr != nil {
		logger.Warn().Err(cuisineErr).Str("user_id", userID).Msg("Failed to load cuisine preferences")
		cuisines = nil
	}
	contextErr := errors.Join(profileErr, conditionErr)
	if contextErr != nil {
		logger.Warn().Err(contextErr).Str("user_id", userID).Msg("Incomplete meal plan context, serving fallback")
	}
	if len(req.CuisinePreferences) > 0 {
		cuisines = req.CuisinePreferences
	}

	// 5. Generate (never fails, falls back instead)
	res := h.generator.GenerateMealPlan(ctx, mealplan.Request{
		UserID:             userID,
		Profile:            profile,
		MedicalCondition:   condition,
		Allergies:          allergies,
		CuisinePreferences: cuisines,
		PlanDate:           &planDate,
		ContextErr:         contextErr,
	})

	// 6. Store in history; a failed save does not cost the user the plan
	ids, err := h.store.SavePlan(ctx, userID, planDate, res)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save meal plan")
		ids = []string{}
	}

	logger.Info().Str("user_id", userID).Str("source", res.Source).Str("reason", res.Reason).Msg("Meal plan served")

	return c.JSON(http.StatusOK, MealPlanResponse{
		MealPlan:    res.Plan,
		Source:      res.Source,
		Reason:      res.Reason,
		Violations:  res.Violations,
		Warnings:    res.Warnings,
		PlanDate:    planDate.Format("2006-01-02"),
		MealPlanIDs: ids,
	})
}

// ValidateMealPlanHandler runs both safety checks on a caller-supplied plan.
func (h *MealPlanHandler) ValidateMealPlanHandler(c echo.Context) error {
	var req ValidateMealPlanRequest
	if err := c.Bind(&req); err != nil {
		requestLogger(c).Error().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	allergies := make([]mealsafety.Allergy, 0, len(req.Allergies))
	for _, a := range req.Allergies {
		allergies = append(allergies, mealsafety.Allergy{AllergyType: a})
	}

	diet := mealsafety.NormalizeDietType(req.DietType)
	missing := req.MealPlan.MissingSlots()
	if missing == nil {
		missing = []string{}
	}

	return c.JSON(http.StatusOK, ValidateMealPlanResponse{
		HardConstraints: mealsafety.ValidateHardConstraints(req.MealPlan, diet),
		Allergens:       mealsafety.ValidateAllergens(req.MealPlan, allergies),
		MissingSlots:    missing,
	})
}

// GetFallbackPlanHandler returns the static plan for a diet type, made safe for the
// caller's stored allergies.
func (h *MealPlanHandler) GetFallbackPlanHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	diet := mealsafety.NormalizeDietType(c.QueryParam("diet_type"))

	allergies, err := h.store.GetUserAllergies(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load allergies for fallback plan")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": mealsafety.UnableToValidateViolation})
	}

	plan, unresolved := mealsafety.CheckedFallbackPlan(diet, allergies)
	if len(unresolved) > 0 {
		logger.Error().Str("user_id", userID).Strs("warnings", unresolved).Msg("Fallback meal plan still matches an allergy")
	}

	resp := map[string]interface{}{
		"diet_type": diet,
		"meal_plan": plan,
	}
	if len(unresolved) > 0 {
		resp["warnings"] = unresolved
	}
	return c.JSON(http.StatusOK, resp)
}

// GetMealPlanHistoryHandler lists the caller's stored plan slots, newest first.
func (h *MealPlanHandler) GetMealPlanHistoryHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	days := defaultHistoryDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxHistoryDays {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 90"})
		}
	}

	entries, err := h.store.ListHistory(ctx, userID, days)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return c.JSON(http.StatusRequestTimeout, map[string]string{"error": "Request cancelled"})
		}
		requestLogger(c).Error().Err(err).Str("user_id", userID).Msg("Failed to list meal plan history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve meal plan history"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"days":    days,
		"history": entries,
	})
}
