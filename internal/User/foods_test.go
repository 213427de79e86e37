package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"Glupulse_MealPlan/internal/foodcatalog"
	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealsafety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	foods      []foodcatalog.Food
	categories []string
	err        error

	queries    []foodcatalog.Query
	principles []string
}

func (f *fakeCatalog) Search(ctx context.Context, q foodcatalog.Query) ([]foodcatalog.Food, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return foodcatalog.ExcludeAllergens(f.foods, q.ExcludeAllergies), nil
}

func (f *fakeCatalog) Categories(ctx context.Context, principle string) ([]string, error) {
	f.principles = append(f.principles, principle)
	return f.categories, f.err
}

func catalogFoods() []foodcatalog.Food {
	return []foodcatalog.Food{
		{ID: 1, Principle: foodcatalog.PrincipleLCHF, Name: "Almonds", Category: "Nuts", Limitation: "OK", AllergenFlags: []string{"nuts"}},
		{ID: 2, Principle: foodcatalog.PrincipleLCHF, Name: "Spinach", Category: "Vegetables", Limitation: "OK", AllergenFlags: []string{}},
	}
}

type foodSearchResponse struct {
	Principle string             `json:"principle"`
	Count     int                `json:"count"`
	Foods     []foodcatalog.Food `json:"foods"`
}

func TestSearchFoodsHandler(t *testing.T) {
	catalog := &fakeCatalog{foods: catalogFoods()}
	h := NewFoodHandler(catalog, &fakeStore{})

	c, rec := newTestContext(http.MethodGet, "/foods?principle=lchf&name=spin&status=allowed&max_kcal=150.5&min_fiber=2&limit=20", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp foodSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, foodcatalog.PrincipleLCHF, resp.Principle)
	assert.Equal(t, 2, resp.Count)

	require.Len(t, catalog.queries, 1)
	q := catalog.queries[0]
	assert.Equal(t, foodcatalog.PrincipleLCHF, q.Principle)
	assert.Equal(t, "spin", q.Name)
	assert.Equal(t, foodcatalog.StatusAllowed, q.Status)
	assert.InDelta(t, 150.5, q.MaxEnergyKcal, 0.001)
	assert.InDelta(t, 2.0, q.MinFiberG, 0.001)
	assert.Equal(t, 20, q.Limit)
	assert.Nil(t, q.ExcludeAllergies)
}

func TestSearchFoodsHandler_ExcludesStoredAllergies(t *testing.T) {
	catalog := &fakeCatalog{foods: catalogFoods()}
	store := &fakeStore{allergies: []mealsafety.Allergy{{AllergyType: "Tree Nuts"}}}
	h := NewFoodHandler(catalog, store)

	c, rec := newTestContext(http.MethodGet, "/foods?diet_type=Meat-Based&exclude_allergies=true", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp foodSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, foodcatalog.PrincipleLCHF, resp.Principle)
	require.Len(t, resp.Foods, 1)
	assert.Equal(t, "Spinach", resp.Foods[0].Name)
	assert.Equal(t, store.allergies, catalog.queries[0].ExcludeAllergies)
}

func TestSearchFoodsHandler_UsesStoredDiet(t *testing.T) {
	catalog := &fakeCatalog{}
	h := NewFoodHandler(catalog, &fakeStore{profile: &geminiservice.UserProfile{DietType: "Vegetarian"}})

	c, rec := newTestContext(http.MethodGet, "/foods", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, foodcatalog.PrincipleLFV, catalog.queries[0].Principle)
}

func TestSearchFoodsHandler_AllergyLookupFails(t *testing.T) {
	catalog := &fakeCatalog{foods: catalogFoods()}
	h := NewFoodHandler(catalog, &fakeStore{allergyErr: errors.New("timeout")})

	c, rec := newTestContext(http.MethodGet, "/foods?principle=LCHF&exclude_allergies=true", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), mealsafety.UnableToValidateViolation)
	assert.Empty(t, catalog.queries)
}

func TestSearchFoodsHandler_BadRequests(t *testing.T) {
	cases := map[string]string{
		"unknown principle":      "/foods?principle=paleo",
		"diet without a catalog": "/foods?diet_type=all-inclusive-plus",
		"no stored diet":         "/foods",
		"bad status":             "/foods?principle=lfv&status=sometimes",
		"negative threshold":     "/foods?principle=lfv&min_protein=-3",
		"limit too large":        "/foods?principle=lfv&limit=500",
		"non numeric limit":      "/foods?principle=lfv&limit=many",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			catalog := &fakeCatalog{}
			h := NewFoodHandler(catalog, &fakeStore{})

			c, rec := newTestContext(http.MethodGet, target, "")
			require.NoError(t, h.SearchFoodsHandler(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, catalog.queries)
		})
	}
}

func TestSearchFoodsHandler_ProfileLoadFails(t *testing.T) {
	h := NewFoodHandler(&fakeCatalog{}, &fakeStore{loadErr: errors.New("db down")})

	c, rec := newTestContext(http.MethodGet, "/foods", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSearchFoodsHandler_CatalogErrors(t *testing.T) {
	h := NewFoodHandler(&fakeCatalog{err: fmt.Errorf("%w: bad", foodcatalog.ErrInvalidQuery)}, &fakeStore{})
	c, rec := newTestContext(http.MethodGet, "/foods?principle=lfv", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewFoodHandler(&fakeCatalog{err: errors.New("connection reset")}, &fakeStore{})
	c, rec = newTestContext(http.MethodGet, "/foods?principle=lfv", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSearchFoodsHandler_Unauthorized(t *testing.T) {
	h := NewFoodHandler(&fakeCatalog{}, &fakeStore{})

	c, rec := newTestContext(http.MethodGet, "/foods?principle=lfv", "")
	c.Set("user_id", "")
	require.NoError(t, h.SearchFoodsHandler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetFoodCategoriesHandler(t *testing.T) {
	catalog := &fakeCatalog{categories: []string{"Fruits", "Vegetables"}}
	h := NewFoodHandler(catalog, &fakeStore{})

	c, rec := newTestContext(http.MethodGet, "/foods/categories?principle=Low%20Fat%20Vegan", "")
	require.NoError(t, h.GetFoodCategoriesHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Principle  string   `json:"principle"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, foodcatalog.PrincipleLFV, resp.Principle)
	assert.Equal(t, []string{"Fruits", "Vegetables"}, resp.Categories)
	assert.Equal(t, []string{foodcatalog.PrincipleLFV}, catalog.principles)
}

func TestGetFoodCategoriesHandler_Failures(t *testing.T) {
	h := NewFoodHandler(&fakeCatalog{}, &fakeStore{})
	c, rec := newTestContext(http.MethodGet, "/foods/categories?principle=keto", "")
	require.NoError(t, h.GetFoodCategoriesHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewFoodHandler(&fakeCatalog{err: errors.New("timeout")}, &fakeStore{})
	c, rec = newTestContext(http.MethodGet, "/foods/categories?diet_type=vegan", "")
	require.NoError(t, h.GetFoodCategoriesHandler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
