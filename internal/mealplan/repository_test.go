package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"Glupulse_MealPlan/internal/database"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/metrics"
	"Glupulse_MealPlan/internal/utility"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier is an in-memory database.Querier.
type fakeQuerier struct {
	profile     *database.UserProfile
	condition   *database.UserMedicalCondition
	allergies   []database.UserAllergy
	cuisines    []string
	recentRows  []database.ListRecentMealPlansRow
	planRows    []database.MealPlan
	err         error
	insertErrAt int

	recentCalls int
	recentArgs  []database.ListRecentMealPlansParams
	inserted    []database.InsertMealPlanParams
}

func (f *fakeQuerier) GetUserMedicalCondition(ctx context.Context, userID string) (database.UserMedicalCondition, error) {
	if f.err != nil {
		return database.UserMedicalCondition{}, f.err
	}
	if f.condition == nil {
		return database.UserMedicalCondition{}, pgx.ErrNoRows
	}
	return *f.condition, nil
}

func (f *fakeQuerier) GetUserProfile(ctx context.Context, userID string) (database.UserProfile, error) {
	if f.err != nil {
		return database.UserProfile{}, f.err
	}
	if f.profile == nil {
		return database.UserProfile{}, pgx.ErrNoRows
	}
	return *f.profile, nil
}

func (f *fakeQuerier) InsertMealPlan(ctx context.Context, arg database.InsertMealPlanParams) (database.MealPlan, error) {
	if f.insertErrAt > 0 && len(f.inserted)+1 == f.insertErrAt {
		return database.MealPlan{}, errors.New("unique violation")
	}
	f.inserted = append(f.inserted, arg)
	return database.MealPlan{MealPlanID: arg.MealPlanID, UserID: arg.UserID, MealType: arg.MealType}, nil
}

func (f *fakeQuerier) ListDietFoodCategories(ctx context.Context, principle string) ([]string, error) {
	return nil, f.err
}

func (f *fakeQuerier) ListMealPlansSince(ctx context.Context, arg database.ListMealPlansSinceParams) ([]database.MealPlan, error) {
	return f.planRows, f.err
}

func (f *fakeQuerier) ListRecentMealPlans(ctx context.Context, arg database.ListRecentMealPlansParams) ([]database.ListRecentMealPlansRow, error) {
	f.recentCalls++
	f.recentArgs = append(f.recentArgs, arg)
	return f.recentRows, f.err
}

func (f *fakeQuerier) ListUserAllergies(ctx context.Context, userID string) ([]database.UserAllergy, error) {
	return f.allergies, f.err
}

func (f *fakeQuerier) ListUserCuisinePreferences(ctx context.Context, userID string) ([]string, error) {
	return f.cuisines, f.err
}

func (f *fakeQuerier) SearchDietFoods(ctx context.Context, arg database.SearchDietFoodsParams) ([]database.DietFood, error) {
	return nil, f.err
}

// fakeTx runs fn against the same querier and reports whether it would have committed.
type fakeTx struct {
	q         *fakeQuerier
	committed bool
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(database.Querier) error) error {
	if err := fn(f.q); err != nil {
		return err
	}
	f.committed = true
	return nil
}

func newTestRepository(q *fakeQuerier, cacheSize int) (*Repository, *fakeTx, *metrics.MealPlanMetrics) {
	tx := &fakeTx{q: q}
	m := metrics.NewMealPlanMetrics(prometheus.NewRegistry())
	r := NewRepository(q, tx, cacheSize, time.Minute, m, zerolog.Nop())
	r.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return r, tx, m
}

func mealRow(t *testing.T, meal *mealsafety.Meal) []byte {
	t.Helper()
	raw, err := json.Marshal(meal)
	require.NoError(t, err)
	return raw
}

func TestRepository_GetUserAllergies(t *testing.T) {
	q := &fakeQuerier{allergies: []database.UserAllergy{{AllergyType: "peanuts"}, {AllergyType: "Dairy"}}}
	r, _, _ := newTestRepository(q, 0)

	got, err := r.GetUserAllergies(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []mealsafety.Allergy{{AllergyType: "peanuts"}, {AllergyType: "Dairy"}}, got)

	q.err = errors.New("db down")
	_, err = r.GetUserAllergies(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestRepository_GetUserProfile(t *testing.T) {
	q := &fakeQuerier{profile: &database.UserProfile{
		UserID:        "user-1",
		Age:           52,
		Gender:        pgtype.Text{String: "female", Valid: true},
		HeightValue:   utility.FloatToNumeric(160.5),
		HeightUnit:    "cm",
		WeightValue:   utility.FloatToNumeric(68),
		WeightUnit:    "kg",
		DietType:      pgtype.Text{String: " Vegetarian ", Valid: true},
		ExerciseLevel: pgtype.Text{String: "light", Valid: true},
	}}
	r, _, _ := newTestRepository(q, 0)

	p, err := r.GetUserProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 52, p.Age)
	assert.Equal(t, "female", p.Gender)
	assert.InDelta(t, 160.5, p.HeightValue, 1e-9)
	assert.InDelta(t, 68, p.WeightValue, 1e-9)
	assert.Equal(t, mealsafety.DietVegetarian, p.DietType)
	assert.Equal(t, "light", p.ExerciseLevel)
}

func TestRepository_MissingRowsAreNil(t *testing.T) {
	r, _, _ := newTestRepository(&fakeQuerier{}, 0)

	p, err := r.GetUserProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, p)

	mc, err := r.GetMedicalCondition(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, mc)

	cuisines, err := r.ListCuisinePreferences(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, cuisines)
}

func TestRepository_GetMedicalCondition(t *testing.T) {
	q := &fakeQuerier{condition: &database.UserMedicalCondition{
		DiabetesType:      pgtype.Text{String: "type2", Valid: true},
		MedicalConditions: pgtype.Text{String: `[{"name":"Hypertension"}]`, Valid: true},
	}}
	r, _, _ := newTestRepository(q, 0)

	mc, err := r.GetMedicalCondition(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, mc)
	assert.Equal(t, "type2", mc.DiabetesType)

	names, err := mc.DecodeConditions()
	require.NoError(t, err)
	assert.Equal(t, []string{"hypertension"}, names)
}

func TestRepository_GetRecentMealNames(t *testing.T) {
	q := &fakeQuerier{recentRows: []database.ListRecentMealPlansRow{
		{Plan: mealRow(t, meatMeal("Tea", "Grilled chicken salad", "150g", "Grill", 30))},
		{Plan: []byte(`{not json`)},
		{Plan: mealRow(t, meatMeal("Tea", "grilled chicken salad", "150g", "Grill", 30))},
		{Plan: mealRow(t, meatMeal("Tea", "Tempeh curry", "1 bowl", "Simmer", 30))},
	}}
	r, _, m := newTestRepository(q, 0)

	names, err := r.GetRecentMealNames(context.Background(), "user-1", mealsafety.SlotLunch, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grilled chicken salad", "Tempeh curry"}, names)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UndecodableMeals))

	require.Len(t, q.recentArgs, 1)
	assert.Equal(t, "lunch", q.recentArgs[0].MealType)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), q.recentArgs[0].PlanDate.Time)
}

func TestRepository_RecentMealsCachedUntilSave(t *testing.T) {
	q := &fakeQuerier{recentRows: []database.ListRecentMealPlansRow{
		{Plan: mealRow(t, meatMeal("Tea", "Tempeh curry", "1 bowl", "Simmer", 30))},
	}}
	r, _, _ := newTestRepository(q, 16)
	ctx := context.Background()

	_, err := r.GetRecentMealNames(ctx, "user-1", mealsafety.SlotDinner, 3)
	require.NoError(t, err)
	_, err = r.GetRecentMealNames(ctx, "user-1", mealsafety.SlotDinner, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, q.recentCalls)

	_, err = r.SavePlan(ctx, "user-1", time.Now(), Result{Plan: meatPlan(), Source: SourceGenerated})
	require.NoError(t, err)

	_, err = r.GetRecentMealNames(ctx, "user-1", mealsafety.SlotDinner, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, q.recentCalls)
}

func TestRepository_RecentMealsError(t *testing.T) {
	r, _, _ := newTestRepository(&fakeQuerier{err: errors.New("timeout")}, 16)

	_, err := r.GetRecentMealNames(context.Background(), "user-1", mealsafety.SlotBreakfast, 3)
	assert.Error(t, err)
}

func TestRepository_SavePlan(t *testing.T) {
	q := &fakeQuerier{}
	r, tx, _ := newTestRepository(q, 0)
	date := time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)

	res := Result{Plan: mealsafety.FallbackPlan(mealsafety.DietVegan), Source: SourceFallback, Reason: "service_unavailable"}
	ids, err := r.SavePlan(context.Background(), "user-1", date, res)
	require.NoError(t, err)
	assert.True(t, tx.committed)
	require.Len(t, ids, 4)
	require.Len(t, q.inserted, 4)

	for i, slot := range mealsafety.MealSlots {
		row := q.inserted[i]
		assert.Equal(t, string(slot), row.MealType)
		assert.Equal(t, "user-1", row.UserID)
		assert.Equal(t, SourceFallback, row.Source)
		assert.Equal(t, pgtype.Text{String: "service_unavailable", Valid: true}, row.Reason)
		assert.Equal(t, mealsafety.ConstraintTableVersion, row.ConstraintVersion)
		assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), row.PlanDate.Time)

		_, err := uuid.Parse(ids[i])
		assert.NoError(t, err)

		var meal mealsafety.Meal
		require.NoError(t, json.Unmarshal(row.Plan, &meal))
		assert.Equal(t, res.Plan.Slot(slot).MainMealName, meal.MainMealName)
	}
}

func TestRepository_SavePlanRollsBack(t *testing.T) {
	q := &fakeQuerier{insertErrAt: 3}
	r, tx, _ := newTestRepository(q, 0)

	ids, err := r.SavePlan(context.Background(), "user-1", time.Now(), Result{Plan: meatPlan(), Source: SourceGenerated})
	assert.Error(t, err)
	assert.Nil(t, ids)
	assert.False(t, tx.committed)

	_, err = r.SavePlan(context.Background(), "user-1", time.Now(), Result{Plan: mealsafety.MealPlan{}, Source: SourceGenerated})
	assert.Error(t, err)
}

func TestRepository_ListHistory(t *testing.T) {
	id := uuid.New()
	q := &fakeQuerier{planRows: []database.MealPlan{
		{
			MealPlanID:        utility.UUIDToPgtype(id),
			UserID:            "user-1",
			MealType:          "lunch",
			PlanDate:          utility.DateOf(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)),
			Plan:              mealRow(t, meatMeal("Tea", "Tempeh curry", "1 bowl", "Simmer", 30)),
			Source:            SourceGenerated,
			ConstraintVersion: mealsafety.ConstraintTableVersion,
		},
		{MealPlanID: utility.UUIDToPgtype(uuid.New()), MealType: "dinner", Plan: []byte(`[]`)},
	}}
	r, _, m := newTestRepository(q, 0)

	entries, err := r.ListHistory(context.Background(), "user-1", 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id.String(), entries[0].MealPlanID)
	assert.Equal(t, "2026-10-18", entries[0].PlanDate)
	assert.Equal(t, "Tempeh curry", entries[0].Meal.MainMealName)
	assert.Empty(t, entries[0].Reason)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.UndecodableMeals))
}
