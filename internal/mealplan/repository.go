package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"Glupulse_MealPlan/internal/database"
	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/metrics"
	"Glupulse_MealPlan/internal/utility"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Transactor runs fn inside one database transaction. database.Service implements it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(database.Querier) error) error
}

// HistoryEntry is one persisted slot of a served plan.
type HistoryEntry struct {
	MealPlanID        string          `json:"meal_plan_id"`
	MealType          string          `json:"meal_type"`
	PlanDate          string          `json:"plan_date"`
	Meal              mealsafety.Meal `json:"meal"`
	Source            string          `json:"source"`
	Reason            string          `json:"reason,omitempty"`
	ConstraintVersion string          `json:"constraint_version"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Repository adapts the sqlc queries to the lookups the Service consumes and caches
// recent meal names per user and slot.
type Repository struct {
	q       database.Querier
	tx      Transactor
	recent  *expirable.LRU[string, []string]
	metrics *metrics.MealPlanMetrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewRepository builds a Repository. cacheSize 0 disables the recent-meal cache.
func NewRepository(q database.Querier, tx Transactor, cacheSize int, cacheTTL time.Duration, m *metrics.MealPlanMetrics, logger zerolog.Logger) *Repository {
	r := &Repository{
		q:       q,
		tx:      tx,
		metrics: m,
		log:     logger,
		now:     time.Now,
	}
	if cacheSize > 0 {
		r.recent = expirable.NewLRU[string, []string](cacheSize, nil, cacheTTL)
	}
	return r
}

/* =================================================================================
								USER CONTEXT
=================================================================================*/

// GetUserAllergies implements mealsafety.AllergyLookup.
func (r *Repository) GetUserAllergies(ctx context.Context, userID string) ([]mealsafety.Allergy, error) {
	rows, err := r.q.ListUserAllergies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allergies: %w", err)
	}

	allergies := make([]mealsafety.Allergy, 0, len(rows))
	for _, row := range rows {
		allergies = append(allergies, mealsafety.Allergy{AllergyType: row.AllergyType})
	}
	return allergies, nil
}

// GetUserProfile returns nil, nil when the user has no profile yet.
func (r *Repository) GetUserProfile(ctx context.Context, userID string) (*geminiservice.UserProfile, error) {
	row, err := r.q.GetUserProfile(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &geminiservice.UserProfile{
		Age:           int(row.Age),
		Gender:        utility.TextOrEmpty(row.Gender),
		HeightValue:   utility.NumericToFloat(row.HeightValue),
		HeightUnit:    row.HeightUnit,
		WeightValue:   utility.NumericToFloat(row.WeightValue),
		WeightUnit:    row.WeightUnit,
		DietType:      mealsafety.NormalizeDietType(utility.TextOrEmpty(row.DietType)),
		ExerciseLevel: utility.TextOrEmpty(row.ExerciseLevel),
	}, nil
}

// GetMedicalCondition returns nil, nil when nothing is recorded.
func (r *Repository) GetMedicalCondition(ctx context.Context, userID string) (*geminiservice.MedicalCondition, error) {
	row, err := r.q.GetUserMedicalCondition(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical condition: %w", err)
	}

	return &geminiservice.MedicalCondition{
		DiabetesType:      utility.TextOrEmpty(row.DiabetesType),
		MedicalConditions: utility.TextOrEmpty(row.MedicalConditions),
	}, nil
}

func (r *Repository) ListCuisinePreferences(ctx context.Context, userID string) ([]string, error) {
	cuisines, err := r.q.ListUserCuisinePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cuisine preferences: %w", err)
	}
	if cuisines == nil {
		cuisines = []string{}
	}
	return cuisines, nil
}

/* =================================================================================
								MEAL HISTORY
=================================================================================*/

func recentKey(userID string, slot mealsafety.MealSlot, windowDays int) string {
	return fmt.Sprintf("%s|%s|%d", userID, slot, windowDays)
}

// GetRecentMealNames implements HistoryLookup. Rows that cannot be decoded are skipped.
func (r *Repository) GetRecentMealNames(ctx context.Context, userID string, slot mealsafety.MealSlot, windowDays int) ([]string, error) {
	key := recentKey(userID, slot, windowDays)
	if r.recent != nil {
		if names, ok := r.recent.Get(key); ok {
			return append([]string(nil), names...), nil
		}
	}

	rows, err := r.q.ListRecentMealPlans(ctx, database.ListRecentMealPlansParams{
		UserID:   userID,
		MealType: string(slot),
		PlanDate: utility.DateOf(r.now().AddDate(0, 0, -windowDays)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent %s meals: %w", slot, err)
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, row := range rows {
		var meal mealsafety.Meal
		if err := json.Unmarshal(row.Plan, &meal); err != nil {
			r.metrics.RecordUndecodableRow()
			r.log.Warn().Err(err).Str("user_id", userID).Str("meal_type", string(slot)).Msg("Skipping undecodable meal plan row")
			continue
		}
		name := strings.TrimSpace(meal.MainMealName)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}

	if r.recent != nil {
		r.recent.Add(key, names)
	}
	return append([]string(nil), names...), nil
}

// SavePlan stores every slot of a served plan as its own row in one transaction and
// returns the new row ids in slot order.
func (r *Repository) SavePlan(ctx context.Context, userID string, planDate time.Time, res Result) ([]string, error) {
	ids := make([]string, 0, len(mealsafety.MealSlots))

	err := r.tx.WithTx(ctx, func(q database.Querier) error {
		for _, slot := range mealsafety.MealSlots {
			meal := res.Plan.Slot(slot)
			if meal == nil {
				return fmt.Errorf("plan is missing %s", slot)
			}

			raw, err := json.Marshal(meal)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", slot, err)
			}

			id := uuid.New()
			if _, err := q.InsertMealPlan(ctx, database.InsertMealPlanParams{
				MealPlanID:        utility.UUIDToPgtype(id),
				UserID:            userID,
				MealType:          string(slot),
				PlanDate:          utility.DateOf(planDate),
				Plan:              raw,
				Source:            res.Source,
				Reason:            utility.NullableText(res.Reason),
				ConstraintVersion: mealsafety.ConstraintTableVersion,
			}); err != nil {
				return fmt.Errorf("failed to insert %s: %w", slot, err)
			}
			ids = append(ids, id.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(userID)
	return ids, nil
}

func (r *Repository) invalidate(userID string) {
	if r.recent == nil {
		return
	}
	prefix := userID + "|"
	for _, key := range r.recent.Keys() {
		if strings.HasPrefix(key, prefix) {
			r.recent.Remove(key)
		}
	}
}

// ListHistory returns the persisted slots of the last days, newest first.
func (r *Repository) ListHistory(ctx context.Context, userID string, days int) ([]HistoryEntry, error) {
	rows, err := r.q.ListMealPlansSince(ctx, database.ListMealPlansSinceParams{
		UserID:   userID,
		PlanDate: utility.DateOf(r.now().AddDate(0, 0, -days)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		var meal mealsafety.Meal
		if err := json.Unmarshal(row.Plan, &meal); err != nil {
			r.metrics.RecordUndecodableRow()
			r.log.Warn().Err(err).Str("user_id", userID).Msg("Skipping undecodable meal plan row")
			continue
		}

		id, err := utility.PgtypeUUIDToString(row.MealPlanID)
		if err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("Skipping meal plan row without id")
			continue
		}

		entries = append(entries, HistoryEntry{
			MealPlanID:        id,
			MealType:          row.MealType,
			PlanDate:          row.PlanDate.Time.Format("2006-01-02"),
			Meal:              meal,
			Source:            row.Source,
			Reason:            utility.TextOrEmpty(row.Reason),
			ConstraintVersion: row.ConstraintVersion,
			CreatedAt:         row.CreatedAt.Time,
		})
	}
	return entries, nil
}
