package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	user "Glupulse_MealPlan/internal/User"
	"Glupulse_MealPlan/internal/admin"
	"Glupulse_MealPlan/internal/auth"
	"Glupulse_MealPlan/internal/database"
	"Glupulse_MealPlan/internal/foodcatalog"
	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealplan"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	status string
}

func (f fakeDB) Health(ctx context.Context) map[string]string {
	return map[string]string{"status": f.status}
}

func (fakeDB) Close() {}

func (fakeDB) Queries() *database.Queries { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(database.Querier) error) error {
	return nil
}

type emptyStore struct{}

func (emptyStore) GetUserProfile(ctx context.Context, userID string) (*geminiservice.UserProfile, error) {
	return nil, nil
}

func (emptyStore) GetMedicalCondition(ctx context.Context, userID string) (*geminiservice.MedicalCondition, error) {
	return nil, nil
}

func (emptyStore) GetUserAllergies(ctx context.Context, userID string) ([]mealsafety.Allergy, error) {
	return []mealsafety.Allergy{}, nil
}

func (emptyStore) ListCuisinePreferences(ctx context.Context, userID string) ([]string, error) {
	return []string{}, nil
}

func (emptyStore) SavePlan(ctx context.Context, userID string, planDate time.Time, res mealplan.Result) ([]string, error) {
	return []string{}, nil
}

func (emptyStore) ListHistory(ctx context.Context, userID string, days int) ([]mealplan.HistoryEntry, error) {
	return []mealplan.HistoryEntry{}, nil
}

func (emptyStore) SearchDietFoods(ctx context.Context, arg database.SearchDietFoodsParams) ([]database.DietFood, error) {
	return []database.DietFood{}, nil
}

func (emptyStore) ListDietFoodCategories(ctx context.Context, principle string) ([]string, error) {
	return []string{"Vegetables"}, nil
}

func newTestServer(t *testing.T, dbStatus string) (http.Handler, *auth.Authenticator) {
	t.Helper()
	authenticator, err := auth.NewAuthenticator("secret")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewMealPlanMetrics(reg)
	svc := mealplan.NewService(mealplan.Deps{Allergies: emptyStore{}, Metrics: m, Logger: zerolog.Nop()})

	s := New(0, Deps{
		DB:        fakeDB{status: dbStatus},
		Auth:      authenticator,
		MealPlans: user.NewMealPlanHandler(emptyStore{}, svc, nil),
		Foods:     user.NewFoodHandler(foodcatalog.NewCatalog(emptyStore{}, 0, zerolog.Nop()), emptyStore{}),
		Admin:     admin.NewHandler(nil, nil, nil, "admin-1"),
		Gatherer:  reg,
	})
	return s.RegisterRoutes(), authenticator
}

func do(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, "up")
	rec := do(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	h, _ = newTestServer(t, "down")
	rec = do(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, "up")
	rec := do(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "glupulse_mealplan_undecodable_history_rows_total")
}

func TestMealPlanRoutesRequireToken(t *testing.T) {
	h, _ := newTestServer(t, "up")
	rec := do(h, http.MethodGet, "/mealplan/fallback?diet_type=vegan", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateRouteServesFallbackWithoutModel(t *testing.T) {
	h, a := newTestServer(t, "up")
	token, err := a.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/mealplan/generate", token, `{"plan_date":"2026-10-19"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"fallback"`)
	assert.Contains(t, rec.Body.String(), `"reason":"service_unavailable"`)
}

func TestValidateRouteRejectsBadBody(t *testing.T) {
	h, a := newTestServer(t, "up")
	token, err := a.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/mealplan/validate", token, `{"diet_type": 12}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h, a := newTestServer(t, "up")
	token, err := a.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)
	rec := do(h, http.MethodGet, "/admin/references", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := a.GenerateAccessToken("admin-1", "", "", time.Minute)
	require.NoError(t, err)
	rec = do(h, http.MethodGet, "/admin/references", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFoodRoutes(t *testing.T) {
	h, a := newTestServer(t, "up")

	rec := do(h, http.MethodGet, "/foods?principle=lfv", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := a.GenerateAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)

	rec = do(h, http.MethodGet, "/foods?principle=lfv&status=allowed", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
	assert.Contains(t, rec.Body.String(), `"principle":"LFV"`)

	rec = do(h, http.MethodGet, "/foods/categories?diet_type=meat-based", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"categories":["Vegetables"]`)
}
