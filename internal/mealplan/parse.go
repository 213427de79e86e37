package mealplan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"Glupulse_MealPlan/internal/mealsafety"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON returns the JSON object inside a model response: a fenced ```json block
// first, otherwise the first balanced top-level {...} span.
func ExtractJSON(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced JSON object", ErrMalformedResponse)
}

// ParseMealPlan extracts and decodes a plan, then requires all four slots with
// their pre-meal and main-meal names.
func ParseMealPlan(text string) (mealsafety.MealPlan, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return mealsafety.MealPlan{}, err
	}

	var plan mealsafety.MealPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return mealsafety.MealPlan{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if missing := plan.MissingSlots(); len(missing) > 0 {
		return mealsafety.MealPlan{}, fmt.Errorf("%w: incomplete slots %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return plan, nil
}
