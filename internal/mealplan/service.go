package mealplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

const DefaultRecentWindowDays = 3

// Generator produces raw model text for a prompt. *geminiservice.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, docs ...geminiservice.ReferenceDocument) (string, error)
}

// HistoryLookup returns the main meal names served to a user in one slot, newest first.
type HistoryLookup interface {
	GetRecentMealNames(ctx context.Context, userID string, slot mealsafety.MealSlot, windowDays int) ([]string, error)
}

// FoodLookup lists catalog foods suited to a diet and free of the allergies.
// *foodcatalog.Catalog implements it.
type FoodLookup interface {
	PreferredFoods(ctx context.Context, diet mealsafety.DietType, allergies []mealsafety.Allergy) ([]string, error)
}

// Request is one meal-plan generation for one user and day.
type Request struct {
	UserID             string
	Profile            *geminiservice.UserProfile
	MedicalCondition   *geminiservice.MedicalCondition
	Allergies          []mealsafety.Allergy
	CuisinePreferences []string
	PlanDate           *time.Time

	// ContextErr is set when the profile or medical condition could not be loaded.
	// The model is not called without them; a fallback plan is served instead.
	ContextErr error
}

// Result always carries a complete four-slot plan.
type Result struct {
	Plan       mealsafety.MealPlan `json:"meal_plan"`
	Source     string              `json:"source"`
	Reason     string              `json:"reason,omitempty"`
	Violations []string            `json:"violations"`

	// Warnings lists allergen matches a fallback plan could not swap out.
	Warnings []string `json:"warnings,omitempty"`

	// Err is the wrapped cause of a fallback, kept for logging.
	Err error `json:"-"`
}

// Deps wires a Service. Only Generator and Allergies are required for generated plans;
// without them every request is served from the fallback plans.
type Deps struct {
	Generator        Generator
	Allergies        mealsafety.AllergyLookup
	History          HistoryLookup
	Foods            FoodLookup
	References       *geminiservice.ReferenceLibrary
	Metrics          *metrics.MealPlanMetrics
	RecentWindowDays int
	Logger           zerolog.Logger
}

type Service struct {
	generator        Generator
	allergies        mealsafety.AllergyLookup
	history          HistoryLookup
	foods            FoodLookup
	references       *geminiservice.ReferenceLibrary
	metrics          *metrics.MealPlanMetrics
	recentWindowDays int
	log              zerolog.Logger
}

func NewService(d Deps) *Service {
	window := d.RecentWindowDays
	if window <= 0 {
		window = DefaultRecentWindowDays
	}
	return &Service{
		generator:        d.Generator,
		allergies:        d.Allergies,
		history:          d.History,
		foods:            d.Foods,
		references:       d.References,
		metrics:          d.Metrics,
		recentWindowDays: window,
		log:              d.Logger,
	}
}

/* =================================================================================
								MEAL PLAN GENERATION
=================================================================================*/

// GenerateMealPlan builds the prompt for req and runs Orchestrate. It never returns
// a partial plan and never panics.
func (s *Service) GenerateMealPlan(ctx context.Context, req Request) (res Result) {
	diet := dietOf(req.Profile)

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("user_id", req.UserID).Interface("panic", r).Msg("Meal plan prompt assembly panicked")
			res = s.fallback(diet, req.Allergies, fmt.Errorf("prompt assembly panicked: %v", r), nil)
		}
	}()

	// 1. Without the profile or condition the prompt would drop the diet or medical limits
	if req.ContextErr != nil {
		return s.contextFallback(req)
	}

	// 2. Recent meals and catalog foods (best effort)
	recent := s.recentMeals(ctx, req.UserID)
	foods := s.preferredFoods(ctx, req.UserID, diet, req.Allergies)

	// 3. Prompt
	pc := geminiservice.PromptContext{
		MedicalCondition:   req.MedicalCondition,
		Allergies:          req.Allergies,
		CuisinePreferences: req.CuisinePreferences,
		RecentMeals:        recent,
		PreferredFoods:     foods,
		RecentWindowDays:   s.recentWindowDays,
		PlanDate:           req.PlanDate,
	}
	if req.Profile != nil {
		pc.Profile = *req.Profile
	}
	prompt := geminiservice.BuildMealPlanPrompt(pc)

	// 4. Generate and validate
	return s.Orchestrate(ctx, prompt, req.UserID, req.Profile, req.Allergies)
}

// Orchestrate calls the model with a ready prompt, parses and validates the answer and
// substitutes a fallback plan on any failure. allergies are merged with the persisted
// records of userID.
func (s *Service) Orchestrate(ctx context.Context, prompt, userID string, profile *geminiservice.UserProfile, allergies []mealsafety.Allergy) (res Result) {
	start := time.Now()
	diet := dietOf(profile)
	logger := s.log.With().Str("user_id", userID).Str("diet_type", string(diet)).Logger()

	var known []mealsafety.Allergy
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Meal plan orchestration panicked")
			res = s.fallback(diet, mergeAllergies(allergies, known), fmt.Errorf("orchestration panicked: %v", r), nil)
		}
		s.metrics.RecordGeneration(res.Source, reasonCode(res.Err), time.Since(start))
		if res.Err != nil {
			logger.Warn().Err(res.Err).Str("reason", res.Reason).Strs("violations", res.Violations).Msg("Serving fallback meal plan")
		} else {
			logger.Info().Msg("Serving generated meal plan")
		}
	}()

	// 1. Persisted allergies, also needed to keep any fallback allergy-safe
	var lookupErr error
	known, lookupErr = s.knownAllergies(ctx, userID, allergies)

	// 2. Model call
	if s.generator == nil {
		return s.fallback(diet, known, fmt.Errorf("%w: no generator configured", ErrServiceUnavailable), nil)
	}
	text, err := s.generator.Generate(ctx, prompt, s.references.ForDiet(diet)...)
	if err != nil {
		return s.fallback(diet, known, fmt.Errorf("%w: %v", ErrServiceUnavailable, err), nil)
	}

	// 3. Parse and check slots
	plan, err := ParseMealPlan(text)
	if err != nil {
		return s.fallback(diet, known, err, nil)
	}

	// 4. Diet hard constraints
	hard := mealsafety.ValidateHardConstraints(plan, diet)
	if !hard.IsValid {
		s.metrics.RecordViolations(metrics.KindDietConstraint, len(hard.Violations))
		res = s.fallback(diet, known, fmt.Errorf("%w: %s", ErrConstraintViolation, strings.Join(hard.Violations, "; ")), hard.Violations)
		if len(known) == 0 && hard.CorrectedPlan != nil {
			res.Plan = *hard.CorrectedPlan
		}
		return res
	}

	// 5. Allergens
	if lookupErr != nil {
		return s.fallback(diet, known, fmt.Errorf("%w: %v", ErrValidationUnavailable, lookupErr),
			[]string{mealsafety.UnableToValidateViolation})
	}
	safety := mealsafety.ValidateAllergens(plan, known)
	if !safety.IsSafe {
		s.metrics.RecordViolations(metrics.KindAllergen, len(safety.Violations))
		return s.fallback(diet, known, fmt.Errorf("%w: %s", ErrAllergenViolation, strings.Join(safety.Violations, "; ")), safety.Violations)
	}

	return Result{Plan: plan, Source: SourceGenerated, Violations: []string{}}
}

// fallback serves the diet's static plan with allergy-conflicting slots swapped out.
// Matches the swap cannot clear are logged and reported as warnings.
func (s *Service) fallback(diet mealsafety.DietType, allergies []mealsafety.Allergy, cause error, violations []string) Result {
	if violations == nil {
		violations = []string{}
	}

	plan, unresolved := mealsafety.CheckedFallbackPlan(diet, allergies)
	if len(unresolved) > 0 {
		s.metrics.RecordViolations(metrics.KindUnresolvedAllergen, len(unresolved))
		s.log.Error().Str("diet_type", string(diet)).Strs("warnings", unresolved).Msg("Fallback meal plan still matches an allergy")
	}

	return Result{
		Plan:       plan,
		Source:     SourceFallback,
		Reason:     reasonCode(cause),
		Violations: violations,
		Warnings:   unresolved,
		Err:        cause,
	}
}

// contextFallback serves a fallback when the user context is incomplete. Without a
// profile the diet is unknown, so the plant-only plan is used: it passes every diet.
func (s *Service) contextFallback(req Request) Result {
	start := time.Now()
	diet := dietOf(req.Profile)
	if req.Profile == nil {
		diet = mealsafety.DietVegan
	}

	res := s.fallback(diet, mergeAllergies(req.Allergies), fmt.Errorf("%w: %v", ErrContextUnavailable, req.ContextErr), nil)
	s.metrics.RecordGeneration(res.Source, res.Reason, time.Since(start))
	s.log.Warn().Err(res.Err).Str("user_id", req.UserID).Str("diet_type", string(diet)).Msg("Serving fallback meal plan")
	return res
}

// preferredFoods fetches catalog foods for the prompt. Failures are logged and skipped.
func (s *Service) preferredFoods(ctx context.Context, userID string, diet mealsafety.DietType, allergies []mealsafety.Allergy) []string {
	if s.foods == nil {
		return nil
	}

	foods, err := s.foods.PreferredFoods(ctx, diet, allergies)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load catalog foods")
		return nil
	}
	return foods
}

// knownAllergies merges the supplied allergies with the persisted ones. On a lookup
// failure the supplied list is still returned together with the error.
func (s *Service) knownAllergies(ctx context.Context, userID string, supplied []mealsafety.Allergy) ([]mealsafety.Allergy, error) {
	if s.allergies == nil {
		return mergeAllergies(supplied, nil), errors.New("no allergy lookup configured")
	}

	persisted, err := s.allergies.GetUserAllergies(ctx, userID)
	if err != nil {
		return mergeAllergies(supplied, nil), fmt.Errorf("failed to load allergies for user %s: %w", userID, err)
	}
	return mergeAllergies(supplied, persisted), nil
}

// mergeAllergies dedupes by normalized label, keeping first-seen order.
func mergeAllergies(lists ...[]mealsafety.Allergy) []mealsafety.Allergy {
	seen := make(map[string]bool)
	out := []mealsafety.Allergy{}
	for _, list := range lists {
		for _, a := range list {
			key := mealsafety.NormalizeAllergy(a.AllergyType)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

// recentMeals fetches the recent main meal names of every slot in parallel.
// Failed slots are logged and left out.
func (s *Service) recentMeals(ctx context.Context, userID string) map[mealsafety.MealSlot][]string {
	recent := make(map[mealsafety.MealSlot][]string)
	if s.history == nil || userID == "" {
		return recent
	}

	names := make([][]string, len(mealsafety.MealSlots))
	var g errgroup.Group
	for i, slot := range mealsafety.MealSlots {
		i, slot := i, slot
		g.Go(func() error {
			list, err := s.history.GetRecentMealNames(ctx, userID, slot, s.recentWindowDays)
			if err != nil {
				s.log.Warn().Err(err).Str("user_id", userID).Str("meal_type", string(slot)).Msg("Failed to load recent meals")
				return nil
			}
			names[i] = list
			return nil
		})
	}
	_ = g.Wait()

	for i, slot := range mealsafety.MealSlots {
		if len(names[i]) > 0 {
			recent[slot] = names[i]
		}
	}
	return recent
}

func dietOf(profile *geminiservice.UserProfile) mealsafety.DietType {
	if profile == nil {
		return mealsafety.DietUnspecified
	}
	return mealsafety.NormalizeDietType(string(profile.DietType))
}
