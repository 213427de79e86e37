package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"Glupulse_MealPlan/internal/foodcatalog"
	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/utility"
	"github.com/labstack/echo/v4"
)

var errNoCatalog = errors.New("no food catalog for diet type")

// FoodCatalog is satisfied by *foodcatalog.Catalog.
type FoodCatalog interface {
	Search(ctx context.Context, q foodcatalog.Query) ([]foodcatalog.Food, error)
	Categories(ctx context.Context, principle string) ([]string, error)
}

// FoodUserStore reads the caller's diet and allergies. *mealplan.Repository implements it.
type FoodUserStore interface {
	GetUserProfile(ctx context.Context, userID string) (*geminiservice.UserProfile, error)
	GetUserAllergies(ctx context.Context, userID string) ([]mealsafety.Allergy, error)
}

type FoodHandler struct {
	catalog FoodCatalog
	store   FoodUserStore
}

func NewFoodHandler(catalog FoodCatalog, store FoodUserStore) *FoodHandler {
	return &FoodHandler{catalog: catalog, store: store}
}

// FoodSearchRequest is bound from the query string. Without principle or diet_type the
// caller's stored diet picks the catalog.
type FoodSearchRequest struct {
	Principle        string  `query:"principle" validate:"max=32"`
	DietType         string  `query:"diet_type" validate:"max=32"`
	Name             string  `query:"name" validate:"max=100"`
	Category         string  `query:"category" validate:"max=100"`
	Limitation       string  `query:"limitation" validate:"max=32"`
	Status           string  `query:"status" validate:"omitempty,oneof=allowed restricted"`
	MaxEnergyKcal    float64 `query:"max_kcal" validate:"gte=0"`
	MinProteinG      float64 `query:"min_protein" validate:"gte=0"`
	MinFiberG        float64 `query:"min_fiber" validate:"gte=0"`
	ExcludeAllergies bool    `query:"exclude_allergies"`
	Limit            int     `query:"limit" validate:"gte=0,lte=200"`
}

type FoodCategoriesRequest struct {
	Principle string `query:"principle" validate:"max=32"`
	DietType  string `query:"diet_type" validate:"max=32"`
}

/* =================================================================================
								FOOD CATALOG HANDLERS
=================================================================================*/

// SearchFoodsHandler lists catalog foods, optionally without the caller's allergens.
func (h *FoodHandler) SearchFoodsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	// 1. Get UserID from JWT
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	// 2. Parse and Validate Query
	var req FoodSearchRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind food search query")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// 3. Resolve the catalog
	principle, err := h.resolvePrinciple(ctx, userID, req.Principle, req.DietType)
	if err != nil {
		return principleError(c, userID, err)
	}

	// 4. Stored allergies; the filter is only trustworthy when they load
	var allergies []mealsafety.Allergy
	if req.ExcludeAllergies {
		allergies, err = h.store.GetUserAllergies(ctx, userID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load allergies for food search")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": mealsafety.UnableToValidateViolation})
		}
	}

	// 5. Search
	foods, err := h.catalog.Search(ctx, foodcatalog.Query{
		Principle:        principle,
		Name:             req.Name,
		Category:         req.Category,
		Limitation:       req.Limitation,
		Status:           req.Status,
		MaxEnergyKcal:    req.MaxEnergyKcal,
		MinProteinG:      req.MinProteinG,
		MinFiberG:        req.MinFiberG,
		ExcludeAllergies: allergies,
		Limit:            req.Limit,
	})
	if err != nil {
		if errors.Is(err, foodcatalog.ErrInvalidQuery) || errors.Is(err, foodcatalog.ErrUnknownPrinciple) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.Error().Err(err).Str("principle", principle).Msg("Failed to search food catalog")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to search foods"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"principle": principle,
		"count":     len(foods),
		"foods":     foods,
	})
}

// GetFoodCategoriesHandler lists the categories of one catalog.
func (h *FoodHandler) GetFoodCategoriesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := requestLogger(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req FoodCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	principle, err := h.resolvePrinciple(ctx, userID, req.Principle, req.DietType)
	if err != nil {
		return principleError(c, userID, err)
	}

	categories, err := h.catalog.Categories(ctx, principle)
	if err != nil {
		logger.Error().Err(err).Str("principle", principle).Msg("Failed to list food categories")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list categories"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"principle":  principle,
		"categories": categories,
	})
}

// resolvePrinciple picks the catalog from the explicit principle, the diet_type, or the
// stored profile, in that order.
func (h *FoodHandler) resolvePrinciple(ctx context.Context, userID, principle, dietType string) (string, error) {
	if strings.TrimSpace(principle) != "" {
		return foodcatalog.ParsePrinciple(principle)
	}

	diet := mealsafety.NormalizeDietType(dietType)
	if diet == mealsafety.DietUnspecified {
		profile, err := h.store.GetUserProfile(ctx, userID)
		if err != nil {
			return "", err
		}
		if profile != nil {
			diet = mealsafety.NormalizeDietType(string(profile.DietType))
		}
	}

	code, ok := foodcatalog.PrincipleForDiet(diet)
	if !ok {
		return "", errNoCatalog
	}
	return code, nil
}

func principleError(c echo.Context, userID string, err error) error {
	switch {
	case errors.Is(err, foodcatalog.ErrUnknownPrinciple):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "principle must be LFV or LCHF"})
	case errors.Is(err, errNoCatalog):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No food catalog for this diet type; pass principle=LFV or principle=LCHF"})
	}
	requestLogger(c).Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for food search")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load user data"})
}
