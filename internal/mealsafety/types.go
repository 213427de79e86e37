/*
Package mealsafety holds the deterministic safety layer for generated meal plans:
the diet-constraint table, allergen keyword expansion, the text scanner, both
validators and the static fallback plans.

Everything in this package is pure. The tables are built once at process start
and never mutated, so the functions are safe to call from concurrent requests.
*/
package mealsafety

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

/* =================================================================================
								DIET & MEAL ENUMS
=================================================================================*/

// DietType is the user-selected dietary pattern, always stored lower-case.
type DietType string

const (
	DietVegan        DietType = "vegan"
	DietVegetarian   DietType = "vegetarian"
	DietMeatBased    DietType = "meat-based"
	DietAllInclusive DietType = "all-inclusive"
	DietUnspecified  DietType = ""
)

// NormalizeDietType lower-cases and trims the raw diet type coming from a profile or request.
func NormalizeDietType(raw string) DietType {
	return DietType(strings.ToLower(strings.TrimSpace(raw)))
}

// IsPlantOnly reports whether the diet type is served the plant-only fallback.
func (d DietType) IsPlantOnly() bool {
	n := NormalizeDietType(string(d))
	return n == DietVegan || n == DietVegetarian
}

// MealSlot names one of the four required entries of a daily plan.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnacks    MealSlot = "snacks"
)

// MealSlots is the fixed scan order used by every validator.
var MealSlots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnacks}

/* =================================================================================
								PLAN STRUCTURE
=================================================================================*/

// Quantity is a numeric meal field. Models sometimes answer "45g" instead of 45,
// so both JSON numbers and numeric strings are accepted.
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("invalid quantity %s: %w", data, err)
		}
		*q = Quantity(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Keep the leading numeric part: "45g" -> 45, "1.5 cups" -> 1.5
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	for end > 0 && s[end-1] == '.' {
		end--
	}
	if end == 0 {
		*q = 0
		return nil
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	*q = Quantity(f)
	return nil
}

// Nutrients is the display breakdown of the main meal (e.g. "45g").
type Nutrients struct {
	Carbs   string `json:"carbs"`
	Protein string `json:"protein"`
	Fat     string `json:"fat"`
	Fiber   string `json:"fiber"`
}

// Meal is one slot of a daily plan. Only PreMealName, MainMealName,
// MainMealPortionSize and Preparation take part in safety scanning.
type Meal struct {
	PreMealName            string     `json:"preMealName"`
	PreMealTime            string     `json:"preMealTime"`
	PreMealCalories        Quantity   `json:"preMealCalories"`
	MainMealName           string     `json:"mainMealName"`
	MainMealPortionSize    string     `json:"mainMealPortionSize"`
	MainMealTime           string     `json:"mainMealTime"`
	MainMealCalories       Quantity   `json:"mainMealCalories"`
	TotalCalories          Quantity   `json:"totalCalories"`
	MainMealNutrients      *Nutrients `json:"mainMealNutrients,omitempty"`
	Carbs                  Quantity   `json:"carbs"`
	Protein                Quantity   `json:"protein"`
	Fat                    Quantity   `json:"fat"`
	Fiber                  Quantity   `json:"fiber"`
	Preparation            string     `json:"preparation"`
	PreparationTime        Quantity   `json:"preparationTime"`
	DifficultyLevel        string     `json:"difficultyLevel,omitempty"`
	GlycemicImpact         string     `json:"glycemicImpact,omitempty"`
	DiabetesManagementTips string     `json:"diabetesManagementTips,omitempty"`
}

// ScanText joins the scanned fields into one lower-case string.
func (m *Meal) ScanText() string {
	return strings.ToLower(strings.Join([]string{
		m.PreMealName,
		m.MainMealName,
		m.MainMealPortionSize,
		m.Preparation,
	}, " "))
}

// MealPlan is a full day. A nil slot means the model left it out.
type MealPlan struct {
	Breakfast *Meal `json:"breakfast"`
	Lunch     *Meal `json:"lunch"`
	Dinner    *Meal `json:"dinner"`
	Snacks    *Meal `json:"snacks"`
}

// Slot returns the meal stored in the given slot, or nil.
func (p *MealPlan) Slot(slot MealSlot) *Meal {
	if p == nil {
		return nil
	}
	switch slot {
	case SlotBreakfast:
		return p.Breakfast
	case SlotLunch:
		return p.Lunch
	case SlotDinner:
		return p.Dinner
	case SlotSnacks:
		return p.Snacks
	}
	return nil
}

// SetSlot replaces the meal stored in the given slot.
func (p *MealPlan) SetSlot(slot MealSlot, meal *Meal) {
	switch slot {
	case SlotBreakfast:
		p.Breakfast = meal
	case SlotLunch:
		p.Lunch = meal
	case SlotDinner:
		p.Dinner = meal
	case SlotSnacks:
		p.Snacks = meal
	}
}

// Clone returns a deep copy so static plans are never shared with callers.
func (p MealPlan) Clone() MealPlan {
	var out MealPlan
	for _, slot := range MealSlots {
		meal := p.Slot(slot)
		if meal == nil {
			continue
		}
		cp := *meal
		if meal.MainMealNutrients != nil {
			n := *meal.MainMealNutrients
			cp.MainMealNutrients = &n
		}
		out.SetSlot(slot, &cp)
	}
	return out
}

// MissingSlots lists the slots that are absent or lack a pre-meal / main-meal name.
func (p *MealPlan) MissingSlots() []string {
	var missing []string
	for _, slot := range MealSlots {
		meal := p.Slot(slot)
		if meal == nil {
			missing = append(missing, string(slot))
			continue
		}
		if strings.TrimSpace(meal.MainMealName) == "" || strings.TrimSpace(meal.PreMealName) == "" {
			missing = append(missing, string(slot))
		}
	}
	return missing
}

// Allergy is one declared allergy category, e.g. "dairy" or "sesame".
type Allergy struct {
	AllergyType string `json:"allergy_type"`
}

/* =================================================================================
								VALIDATION RESULTS
=================================================================================*/

// ConstraintResult is the outcome of the diet-type hard-constraint check.
type ConstraintResult struct {
	IsValid       bool      `json:"isValid"`
	Violations    []string  `json:"violations"`
	CorrectedPlan *MealPlan `json:"correctedPlan,omitempty"`
}

// AllergenResult is the outcome of the allergen check.
type AllergenResult struct {
	IsSafe     bool     `json:"isSafe"`
	Violations []string `json:"violations"`
}
