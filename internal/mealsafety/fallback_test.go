package mealsafety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allDiets = []DietType{DietVegan, DietVegetarian, DietMeatBased, DietAllInclusive, DietUnspecified}

var closedSetAllergies = []string{
	"eggs", "nuts", "tree nuts", "peanuts", "dairy", "milk", "soy", "soya", "fish", "shellfish", "gluten", "wheat",
}

func TestFallbackPlan_PassesOwnDiet(t *testing.T) {
	for _, diet := range allDiets {
		plan := FallbackPlan(diet)
		assert.Empty(t, plan.MissingSlots(), "diet %q", diet)

		result := ValidateHardConstraints(plan, diet)
		assert.True(t, result.IsValid, "diet %q: %v", diet, result.Violations)
	}
}

func TestFallbackPlan_Selection(t *testing.T) {
	assert.Equal(t, "Cooked quinoa with steamed spinach and turmeric", FallbackPlan(DietVegan).Breakfast.MainMealName)
	assert.Equal(t, "Cooked quinoa with steamed spinach and turmeric", FallbackPlan(DietVegetarian).Breakfast.MainMealName)
	assert.Equal(t, "Grilled chicken breast with steamed spinach", FallbackPlan(DietMeatBased).Breakfast.MainMealName)
	assert.Equal(t, "Grilled chicken breast with steamed spinach", FallbackPlan(DietAllInclusive).Breakfast.MainMealName)
	assert.Equal(t, "Grilled chicken breast with steamed spinach", FallbackPlan("paleo").Breakfast.MainMealName)
}

func TestFallbackPlan_MixedCaseDietType(t *testing.T) {
	assert.Equal(t, "Cooked quinoa with steamed spinach and turmeric", FallbackPlan("Vegetarian").Breakfast.MainMealName)
	assert.Equal(t, "Steamed brown rice with mixed vegetables", SafeFallbackPlan("VEGAN", nil).Dinner.MainMealName)
	assert.True(t, DietType("Vegan").IsPlantOnly())
	assert.Equal(t, PrincipleLowFatVegan, Principle("Vegetarian"))
	assert.Equal(t, PrincipleLowCarbHighFat, Principle("All-Inclusive"))

	c, ok := LookupDietConstraint("VEGAN")
	require.True(t, ok)
	assert.Contains(t, c.Forbidden, "chicken")
}

func TestFallbackPlan_ReturnsFreshCopy(t *testing.T) {
	first := FallbackPlan(DietVegan)
	first.Lunch.MainMealName = "changed"
	first.Lunch.MainMealNutrients.Carbs = "0g"

	second := FallbackPlan(DietVegan)
	assert.Equal(t, "Cooked lentils with roasted vegetables", second.Lunch.MainMealName)
	assert.Equal(t, "50g", second.Lunch.MainMealNutrients.Carbs)
}

func TestReserveFallbackPlan_IsUniversallySafe(t *testing.T) {
	reserve := ReserveFallbackPlan()
	require.Empty(t, reserve.MissingSlots())

	for _, diet := range allDiets {
		assert.True(t, ValidateHardConstraints(reserve, diet).IsValid, "diet %q", diet)
	}
	for _, label := range closedSetAllergies {
		result := ValidateAllergens(reserve, []Allergy{{AllergyType: label}})
		assert.True(t, result.IsSafe, "allergy %q: %v", label, result.Violations)
	}
}

func TestSafeFallbackPlan_HonorsAllergies(t *testing.T) {
	for _, diet := range allDiets {
		for _, label := range closedSetAllergies {
			allergies := []Allergy{{AllergyType: label}}
			plan := SafeFallbackPlan(diet, allergies)

			assert.Empty(t, plan.MissingSlots())
			assert.True(t, ValidateHardConstraints(plan, diet).IsValid, "diet %q allergy %q", diet, label)
			result := ValidateAllergens(plan, allergies)
			assert.True(t, result.IsSafe, "diet %q allergy %q: %v", diet, label, result.Violations)
		}
	}
}

func TestSafeFallbackPlan_SwapsOnlyOffendingSlots(t *testing.T) {
	plan := SafeFallbackPlan(DietMeatBased, []Allergy{{AllergyType: "eggs"}})
	primary := FallbackPlan(DietMeatBased)
	reserve := ReserveFallbackPlan()

	assert.Equal(t, primary.Breakfast, plan.Breakfast)
	assert.Equal(t, primary.Lunch, plan.Lunch)
	assert.Equal(t, primary.Dinner, plan.Dinner)
	assert.Equal(t, reserve.Snacks, plan.Snacks)
}

func TestSafeFallbackPlan_NoAllergies(t *testing.T) {
	assert.Equal(t, FallbackPlan(DietVegan), SafeFallbackPlan(DietVegan, nil))
}

func TestCheckedFallbackPlan_ReportsUnresolvedFreeTextAllergy(t *testing.T) {
	plan, unresolved := CheckedFallbackPlan(DietVegan, []Allergy{{AllergyType: "celery"}})

	assert.Equal(t, ReserveFallbackPlan().Snacks, plan.Snacks)
	assert.Equal(t, []string{`snacks: Contains "celery" (celery allergy)`}, unresolved)
}

func TestCheckedFallbackPlan_ResolvedAllergies(t *testing.T) {
	plan, unresolved := CheckedFallbackPlan(DietMeatBased, []Allergy{{AllergyType: "eggs"}, {AllergyType: "Dairy"}})
	assert.Empty(t, unresolved)
	assert.True(t, ValidateAllergens(plan, []Allergy{{AllergyType: "eggs"}, {AllergyType: "Dairy"}}).IsSafe)

	_, unresolved = CheckedFallbackPlan(DietVegan, nil)
	assert.Empty(t, unresolved)
}
