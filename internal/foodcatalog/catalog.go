/*
Package foodcatalog serves the LFV and LCHF food tables: searchable by name, category,
limitation status and nutrient thresholds, with optional removal of foods that
conflict with a user's allergies.
*/
package foodcatalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Glupulse_MealPlan/internal/database"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/utility"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

const (
	PrincipleLFV  = "LFV"
	PrincipleLCHF = "LCHF"

	StatusAllowed    = "allowed"
	StatusRestricted = "restricted"

	DefaultLimit = 50
	MaxLimit     = 200

	// preferredFoodCount caps the foods listed in a generation prompt.
	preferredFoodCount = 40
)

var (
	ErrUnknownPrinciple = errors.New("unknown diet principle")
	ErrInvalidQuery     = errors.New("invalid food query")
)

// Limitation groups per catalog, lower-case as matched by SearchDietFoods.
var (
	allowedLimitations = map[string][]string{
		PrincipleLFV:  {"ok", "moderation"},
		PrincipleLCHF: {"ok", "recommended"},
	}
	restrictedLimitations = map[string][]string{
		PrincipleLFV:  {"restricted", "limited"},
		PrincipleLCHF: {"restricted", "avoid", "limited", "limit"},
	}
)

// Store is the slice of database.Querier the catalog reads.
type Store interface {
	SearchDietFoods(ctx context.Context, arg database.SearchDietFoodsParams) ([]database.DietFood, error)
	ListDietFoodCategories(ctx context.Context, principle string) ([]string, error)
}

// Food is one catalog entry. Nutrients are per 100g; zero means not recorded.
type Food struct {
	ID            int64    `json:"id"`
	Principle     string   `json:"principle"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Limitation    string   `json:"limitation"`
	VegNonveg     string   `json:"veg_nonveg,omitempty"`
	AllergenFlags []string `json:"allergen_flags"`
	EnergyKcal    float64  `json:"energy_kcal,omitempty"`
	ProteinG      float64  `json:"protein_g,omitempty"`
	CarbohydrateG float64  `json:"carbohydrate_g,omitempty"`
	TotalFatG     float64  `json:"total_fat_g,omitempty"`
	FiberG        float64  `json:"fiber_g,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Query filters a catalog search. Zero values mean "no filter". Limitation wins over Status.
type Query struct {
	Principle        string
	Name             string
	Category         string
	Limitation       string
	Status           string
	MaxEnergyKcal    float64
	MinProteinG      float64
	MinFiberG        float64
	ExcludeAllergies []mealsafety.Allergy
	Limit            int
}

type Catalog struct {
	store   Store
	allowed *expirable.LRU[string, []Food]
	log     zerolog.Logger
}

// NewCatalog builds a Catalog. cacheTTL 0 disables caching of the allowed-food lists.
func NewCatalog(store Store, cacheTTL time.Duration, logger zerolog.Logger) *Catalog {
	c := &Catalog{store: store, log: logger}
	if cacheTTL > 0 {
		c.allowed = expirable.NewLRU[string, []Food](len(allowedLimitations), nil, cacheTTL)
	}
	return c
}

// ParsePrinciple accepts a catalog code ("lfv") or a principle label ("Low Fat Vegan").
func ParsePrinciple(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(raw, PrincipleLFV), strings.EqualFold(raw, mealsafety.PrincipleLowFatVegan):
		return PrincipleLFV, nil
	case strings.EqualFold(raw, PrincipleLCHF), strings.EqualFold(raw, mealsafety.PrincipleLowCarbHighFat):
		return PrincipleLCHF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrinciple, raw)
}

// PrincipleForDiet maps a diet type onto its catalog. Diets without a principle have none.
func PrincipleForDiet(diet mealsafety.DietType) (string, bool) {
	switch mealsafety.Principle(diet) {
	case mealsafety.PrincipleLowFatVegan:
		return PrincipleLFV, true
	case mealsafety.PrincipleLowCarbHighFat:
		return PrincipleLCHF, true
	}
	return "", false
}

func limitationsFor(principle, limitation, status string) ([]string, error) {
	if l := strings.ToLower(strings.TrimSpace(limitation)); l != "" {
		return []string{l}, nil
	}

	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		return []string{}, nil
	case StatusAllowed:
		return append([]string{}, allowedLimitations[principle]...), nil
	case StatusRestricted:
		return append([]string{}, restrictedLimitations[principle]...), nil
	}
	return nil, fmt.Errorf("%w: status must be %q or %q", ErrInvalidQuery, StatusAllowed, StatusRestricted)
}

// threshold maps an unset (zero) nutrient filter to NULL.
func threshold(v float64) pgtype.Numeric {
	if v <= 0 {
		return pgtype.Numeric{}
	}
	return utility.FloatToNumeric(v)
}

/* =================================================================================
								CATALOG SEARCH
=================================================================================*/

// Search runs q against the catalog and drops foods that conflict with q.ExcludeAllergies.
func (c *Catalog) Search(ctx context.Context, q Query) ([]Food, error) {
	principle, err := ParsePrinciple(q.Principle)
	if err != nil {
		return nil, err
	}

	limitations, err := limitationsFor(principle, q.Limitation, q.Status)
	if err != nil {
		return nil, err
	}
	if q.MaxEnergyKcal < 0 || q.MinProteinG < 0 || q.MinFiberG < 0 {
		return nil, fmt.Errorf("%w: nutrient thresholds must not be negative", ErrInvalidQuery)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := c.store.SearchDietFoods(ctx, database.SearchDietFoodsParams{
		Principle:     principle,
		Name:          utility.NullableText(strings.TrimSpace(q.Name)),
		Category:      utility.NullableText(strings.TrimSpace(q.Category)),
		Limitations:   limitations,
		MaxEnergyKcal: threshold(q.MaxEnergyKcal),
		MinProteinG:   threshold(q.MinProteinG),
		MinFiberG:     threshold(q.MinFiberG),
		RowLimit:      int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s foods: %w", principle, err)
	}

	return ExcludeAllergens(toFoods(rows), q.ExcludeAllergies), nil
}

// Categories lists the distinct categories of one catalog.
func (c *Catalog) Categories(ctx context.Context, principle string) ([]string, error) {
	code, err := ParsePrinciple(principle)
	if err != nil {
		return nil, err
	}

	categories, err := c.store.ListDietFoodCategories(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s categories: %w", code, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// PreferredFoods returns allowed catalog food names for the diet that pass both the diet's
// forbidden list and the allergies. Diets without a catalog get nil.
func (c *Catalog) PreferredFoods(ctx context.Context, diet mealsafety.DietType, allergies []mealsafety.Allergy) ([]string, error) {
	principle, ok := PrincipleForDiet(diet)
	if !ok {
		return nil, nil
	}

	foods, err := c.allowedFoods(ctx, principle)
	if err != nil {
		return nil, err
	}

	forbidden := mealsafety.ForbiddenKeywords(diet)
	names := make([]string, 0, preferredFoodCount)
	for _, f := range ExcludeAllergens(foods, allergies) {
		if _, found := mealsafety.FindKeyword(f.Name, forbidden); found {
			continue
		}
		names = append(names, f.Name)
		if len(names) == preferredFoodCount {
			break
		}
	}
	return names, nil
}

func (c *Catalog) allowedFoods(ctx context.Context, principle string) ([]Food, error) {
	if c.allowed != nil {
		if foods, ok := c.allowed.Get(principle); ok {
			return foods, nil
		}
	}

	foods, err := c.Search(ctx, Query{Principle: principle, Status: StatusAllowed, Limit: MaxLimit})
	if err != nil {
		return nil, err
	}

	if c.allowed != nil {
		c.allowed.Add(principle, foods)
	}
	c.log.Debug().Str("principle", principle).Int("foods", len(foods)).Msg("Loaded allowed catalog foods")
	return foods, nil
}

/* =================================================================================
								ALLERGEN FILTER
=================================================================================*/

// ExcludeAllergens drops every food whose allergen flags name one of the allergies, or
// whose name contains one of the allergy's expanded keywords. The input is not modified.
func ExcludeAllergens(foods []Food, allergies []mealsafety.Allergy) []Food {
	out := make([]Food, 0, len(foods))
	if len(allergies) == 0 {
		return append(out, foods...)
	}

	var checks []allergenCheck
	for _, a := range allergies {
		label := mealsafety.NormalizeAllergy(a.AllergyType)
		if label == "" {
			continue
		}
		canonical, _ := mealsafety.CanonicalAllergen(label)
		checks = append(checks, allergenCheck{label: label, canonical: canonical, keywords: mealsafety.ExpandAllergen(label)})
	}

	for _, f := range foods {
		if !conflicts(f, checks) {
			out = append(out, f)
		}
	}
	return out
}

type allergenCheck struct {
	label     string
	canonical string
	keywords  []string
}

func conflicts(f Food, checks []allergenCheck) bool {
	for _, a := range checks {
		for _, flag := range f.AllergenFlags {
			if flag == a.label {
				return true
			}
			if canonical, ok := mealsafety.CanonicalAllergen(flag); ok && canonical == a.canonical {
				return true
			}
		}
		if _, found := mealsafety.FindKeyword(f.Name, a.keywords); found {
			return true
		}
	}
	return false
}

func toFoods(rows []database.DietFood) []Food {
	foods := make([]Food, 0, len(rows))
	for _, r := range rows {
		foods = append(foods, Food{
			ID:            r.FoodID,
			Principle:     r.Principle,
			Name:          r.Name,
			Category:      r.Category,
			Limitation:    r.Limitation,
			VegNonveg:     utility.TextOrEmpty(r.VegNonveg),
			AllergenFlags: splitFlags(utility.TextOrEmpty(r.AllergenFlags)),
			EnergyKcal:    utility.NumericToFloat(r.EnergyKcal),
			ProteinG:      utility.NumericToFloat(r.ProteinG),
			CarbohydrateG: utility.NumericToFloat(r.CarbohydrateG),
			TotalFatG:     utility.NumericToFloat(r.TotalFatG),
			FiberG:        utility.NumericToFloat(r.FiberG),
			Notes:         utility.TextOrEmpty(r.Notes),
		})
	}
	return foods
}

// splitFlags parses "Dairy, nuts" into ["dairy", "nuts"].
func splitFlags(raw string) []string {
	flags := []string{}
	for _, f := range strings.Split(raw, ",") {
		if f = mealsafety.NormalizeAllergy(f); f != "" {
			flags = append(flags, f)
		}
	}
	return flags
}
