package mealsafety

import (
	"context"
	"fmt"
)

// UnableToValidateViolation is reported when allergies could not be loaded.
const UnableToValidateViolation = "Unable to validate allergen safety"

// AllergyLookup loads the persisted allergy records of a user.
type AllergyLookup interface {
	GetUserAllergies(ctx context.Context, userID string) ([]Allergy, error)
}

// ValidateHardConstraints checks every present slot against the forbidden list of the diet type.
// Diet types without a row, or with an empty list, are always valid.
func ValidateHardConstraints(plan MealPlan, diet DietType) ConstraintResult {
	diet = NormalizeDietType(string(diet))
	forbidden := ForbiddenKeywords(diet)
	if len(forbidden) == 0 {
		return ConstraintResult{IsValid: true, Violations: []string{}}
	}

	violations := []string{}
	for _, slot := range MealSlots {
		meal := plan.Slot(slot)
		if meal == nil {
			continue
		}

		// one violation per slot is enough to reject it
		if keyword, found := FindKeyword(meal.ScanText(), forbidden); found {
			violations = append(violations,
				fmt.Sprintf("%s contains %q (forbidden for %s diet)", slot, keyword, diet))
		}
	}

	if len(violations) == 0 {
		return ConstraintResult{IsValid: true, Violations: violations}
	}

	corrected := FallbackPlan(diet)
	return ConstraintResult{
		IsValid:       false,
		Violations:    violations,
		CorrectedPlan: &corrected,
	}
}

// ValidateAllergens checks every present slot against the expanded keywords of each allergy.
// A slot collects at most one violation per allergy, but may collect several across allergies.
func ValidateAllergens(plan MealPlan, allergies []Allergy) AllergenResult {
	if len(allergies) == 0 {
		return AllergenResult{IsSafe: true, Violations: []string{}}
	}

	expanded := make([][]string, len(allergies))
	for i, a := range allergies {
		expanded[i] = ExpandAllergen(a.AllergyType)
	}

	violations := []string{}
	for _, slot := range MealSlots {
		meal := plan.Slot(slot)
		if meal == nil {
			continue
		}
		text := meal.ScanText()

		for i, a := range allergies {
			if keyword, found := FindKeyword(text, expanded[i]); found {
				violations = append(violations,
					fmt.Sprintf("%s: Contains %q (%s allergy)", slot, keyword, a.AllergyType))
			}
		}
	}

	return AllergenResult{IsSafe: len(violations) == 0, Violations: violations}
}

// ValidateUserAllergens loads the user's allergies and validates the plan against them.
// A failed lookup is reported as unsafe, never as a pass.
func ValidateUserAllergens(ctx context.Context, plan MealPlan, lookup AllergyLookup, userID string) (AllergenResult, error) {
	allergies, err := lookup.GetUserAllergies(ctx, userID)
	if err != nil {
		return AllergenResult{
			IsSafe:     false,
			Violations: []string{UnableToValidateViolation},
		}, fmt.Errorf("failed to load allergies for user %s: %w", userID, err)
	}
	return ValidateAllergens(plan, allergies), nil
}
