package mealsafety

// Fallback plans are pre-authored and vetted by the tests in fallback_test.go:
// each must pass ValidateHardConstraints for every diet type it is served to.

var plantOnlyFallback = MealPlan{
	Breakfast: &Meal{
		PreMealName:            "Fresh cucumber slices with lemon",
		PreMealTime:            "7:00 AM",
		PreMealCalories:        20,
		MainMealName:           "Cooked quinoa with steamed spinach and turmeric",
		MainMealPortionSize:    "1 cup cooked quinoa with 1 cup steamed spinach",
		MainMealTime:           "7:30 AM",
		MainMealCalories:       250,
		TotalCalories:          270,
		MainMealNutrients:      &Nutrients{Carbs: "45g", Protein: "10g", Fat: "4g", Fiber: "6g"},
		Carbs:                  45,
		Protein:                10,
		Fat:                    4,
		Fiber:                  6,
		Preparation:            "Cook quinoa, steam spinach, season with turmeric and herbs",
		PreparationTime:        15,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Medium",
		DiabetesManagementTips: "Quinoa provides complete protein and fiber for blood sugar control",
	},
	Lunch: &Meal{
		PreMealName:            "Fresh lettuce leaves",
		PreMealTime:            "12:30 PM",
		PreMealCalories:        15,
		MainMealName:           "Cooked lentils with roasted vegetables",
		MainMealPortionSize:    "1 cup cooked moong dal with mixed roasted vegetables (zucchini, bell peppers, broccoli)",
		MainMealTime:           "1:00 PM",
		MainMealCalories:       320,
		TotalCalories:          335,
		MainMealNutrients:      &Nutrients{Carbs: "50g", Protein: "18g", Fat: "2g", Fiber: "12g"},
		Carbs:                  50,
		Protein:                18,
		Fat:                    2,
		Fiber:                  12,
		Preparation:            "Cook lentils, roast vegetables with minimal water and herbs",
		PreparationTime:        25,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Lentils provide plant protein and fiber for stable glucose",
	},
	Dinner: &Meal{
		PreMealName:            "Tomato and cucumber salad",
		PreMealTime:            "7:00 PM",
		PreMealCalories:        25,
		MainMealName:           "Steamed brown rice with mixed vegetables",
		MainMealPortionSize:    "1 cup steamed brown rice with 1.5 cups mixed steamed vegetables",
		MainMealTime:           "7:30 PM",
		MainMealCalories:       300,
		TotalCalories:          325,
		MainMealNutrients:      &Nutrients{Carbs: "60g", Protein: "8g", Fat: "2g", Fiber: "8g"},
		Carbs:                  60,
		Protein:                8,
		Fat:                    2,
		Fiber:                  8,
		Preparation:            "Steam brown rice, steam vegetables, season with herbs",
		PreparationTime:        20,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Medium",
		DiabetesManagementTips: "Brown rice with vegetables provides complex carbs and fiber",
	},
	Snacks: &Meal{
		PreMealName:            "Celery sticks",
		PreMealTime:            "4:00 PM",
		PreMealCalories:        10,
		MainMealName:           "Raw almonds with cucumber",
		MainMealPortionSize:    "10 raw almonds with 1/2 cucumber",
		MainMealTime:           "4:30 PM",
		MainMealCalories:       120,
		TotalCalories:          130,
		MainMealNutrients:      &Nutrients{Carbs: "8g", Protein: "6g", Fat: "10g", Fiber: "4g"},
		Carbs:                  8,
		Protein:                6,
		Fat:                    10,
		Fiber:                  4,
		Preparation:            "Slice cucumber, count almonds, arrange on plate",
		PreparationTime:        5,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Healthy fats and protein to maintain blood sugar stability",
	},
}

var omnivoreFallback = MealPlan{
	Breakfast: &Meal{
		PreMealName:            "Fresh cucumber slices with lemon",
		PreMealTime:            "7:00 AM",
		PreMealCalories:        20,
		MainMealName:           "Grilled chicken breast with steamed spinach",
		MainMealPortionSize:    "4 oz grilled chicken with 1 cup steamed spinach",
		MainMealTime:           "7:30 AM",
		MainMealCalories:       250,
		TotalCalories:          270,
		MainMealNutrients:      &Nutrients{Carbs: "4g", Protein: "35g", Fat: "8g", Fiber: "3g"},
		Carbs:                  4,
		Protein:                35,
		Fat:                    8,
		Fiber:                  3,
		Preparation:            "Grill chicken, steam spinach, season with herbs",
		PreparationTime:        15,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "High protein, low carb meal for stable blood sugar",
	},
	Lunch: &Meal{
		PreMealName:            "Fresh lettuce leaves",
		PreMealTime:            "12:30 PM",
		PreMealCalories:        15,
		MainMealName:           "Baked fish with roasted vegetables",
		MainMealPortionSize:    "5 oz fish with mixed roasted vegetables",
		MainMealTime:           "1:00 PM",
		MainMealCalories:       320,
		TotalCalories:          335,
		MainMealNutrients:      &Nutrients{Carbs: "12g", Protein: "40g", Fat: "10g", Fiber: "5g"},
		Carbs:                  12,
		Protein:                40,
		Fat:                    10,
		Fiber:                  5,
		Preparation:            "Bake fish, roast vegetables with herbs",
		PreparationTime:        25,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Lean protein with fiber-rich vegetables",
	},
	Dinner: &Meal{
		PreMealName:            "Tomato and cucumber salad",
		PreMealTime:            "7:00 PM",
		PreMealCalories:        25,
		MainMealName:           "Grilled lean beef with green beans",
		MainMealPortionSize:    "4 oz lean beef with 1.5 cups steamed green beans",
		MainMealTime:           "7:30 PM",
		MainMealCalories:       300,
		TotalCalories:          325,
		MainMealNutrients:      &Nutrients{Carbs: "8g", Protein: "35g", Fat: "12g", Fiber: "4g"},
		Carbs:                  8,
		Protein:                35,
		Fat:                    12,
		Fiber:                  4,
		Preparation:            "Grill beef, steam green beans, season with herbs",
		PreparationTime:        20,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "High-quality protein with low-glycemic vegetables",
	},
	Snacks: &Meal{
		PreMealName:            "Celery sticks",
		PreMealTime:            "4:00 PM",
		PreMealCalories:        10,
		MainMealName:           "Hard-boiled eggs with cucumber",
		MainMealPortionSize:    "2 hard-boiled eggs with 1/2 cucumber",
		MainMealTime:           "4:30 PM",
		MainMealCalories:       120,
		TotalCalories:          130,
		MainMealNutrients:      &Nutrients{Carbs: "4g", Protein: "12g", Fat: "8g", Fiber: "2g"},
		Carbs:                  4,
		Protein:                12,
		Fat:                    8,
		Fiber:                  2,
		Preparation:            "Boil eggs, slice cucumber, arrange on plate",
		PreparationTime:        5,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Protein-rich snack to maintain blood sugar stability",
	},
}

// reserveFallback is plant-only and free of every closed-set allergen keyword.
// SafeFallbackPlan swaps its slots in when a primary fallback slot conflicts with an allergy.
var reserveFallback = MealPlan{
	Breakfast: &Meal{
		PreMealName:            "Fresh papaya cubes",
		PreMealTime:            "7:00 AM",
		PreMealCalories:        30,
		MainMealName:           "Foxtail millet porridge with apple and cinnamon",
		MainMealPortionSize:    "1 cup cooked foxtail millet with 1/2 diced apple",
		MainMealTime:           "7:30 AM",
		MainMealCalories:       230,
		TotalCalories:          260,
		MainMealNutrients:      &Nutrients{Carbs: "44g", Protein: "6g", Fat: "2g", Fiber: "7g"},
		Carbs:                  44,
		Protein:                6,
		Fat:                    2,
		Fiber:                  7,
		Preparation:            "Simmer millet in water, stir in diced apple and cinnamon",
		PreparationTime:        20,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Millet releases glucose slowly and keeps mornings steady",
	},
	Lunch: &Meal{
		PreMealName:            "Sliced cucumber with lemon",
		PreMealTime:            "12:30 PM",
		PreMealCalories:        15,
		MainMealName:           "Chickpea and spinach stew with brown rice",
		MainMealPortionSize:    "1 cup chickpea stew with 1/2 cup steamed brown rice",
		MainMealTime:           "1:00 PM",
		MainMealCalories:       340,
		TotalCalories:          355,
		MainMealNutrients:      &Nutrients{Carbs: "55g", Protein: "15g", Fat: "4g", Fiber: "13g"},
		Carbs:                  55,
		Protein:                15,
		Fat:                    4,
		Fiber:                  13,
		Preparation:            "Simmer chickpeas with tomatoes, spinach and spices; steam rice separately",
		PreparationTime:        30,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Chickpeas pair fiber with plant protein to blunt glucose spikes",
	},
	Dinner: &Meal{
		PreMealName:            "Green salad with lemon",
		PreMealTime:            "7:00 PM",
		PreMealCalories:        25,
		MainMealName:           "Roasted sweet potato with sauteed greens and black beans",
		MainMealPortionSize:    "1 small sweet potato with 1 cup greens and 1/2 cup black beans",
		MainMealTime:           "7:30 PM",
		MainMealCalories:       310,
		TotalCalories:          335,
		MainMealNutrients:      &Nutrients{Carbs: "52g", Protein: "12g", Fat: "2g", Fiber: "14g"},
		Carbs:                  52,
		Protein:                12,
		Fat:                    2,
		Fiber:                  14,
		Preparation:            "Roast sweet potato, saute greens in a splash of water, warm the beans",
		PreparationTime:        35,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Medium",
		DiabetesManagementTips: "Beans and greens add fiber that slows starch absorption",
	},
	Snacks: &Meal{
		PreMealName:            "Celery sticks",
		PreMealTime:            "4:00 PM",
		PreMealCalories:        10,
		MainMealName:           "Roasted pumpkin seeds with apple slices",
		MainMealPortionSize:    "2 tbsp roasted pumpkin seeds with 1 small apple",
		MainMealTime:           "4:30 PM",
		MainMealCalories:       130,
		TotalCalories:          140,
		MainMealNutrients:      &Nutrients{Carbs: "18g", Protein: "5g", Fat: "6g", Fiber: "4g"},
		Carbs:                  18,
		Protein:                5,
		Fat:                    6,
		Fiber:                  4,
		Preparation:            "Dry roast the seeds, slice the apple, arrange on plate",
		PreparationTime:        10,
		DifficultyLevel:        "easy",
		GlycemicImpact:         "Low",
		DiabetesManagementTips: "Seeds supply magnesium and healthy fats for steady energy",
	},
}

// FallbackPlan selects the static plan for a diet type: plant-only for vegan and
// vegetarian, omnivorous for everything else. The result is a fresh copy.
func FallbackPlan(diet DietType) MealPlan {
	if diet.IsPlantOnly() {
		return plantOnlyFallback.Clone()
	}
	return omnivoreFallback.Clone()
}

// ReserveFallbackPlan returns the allergen-free plant-only reserve plan.
func ReserveFallbackPlan() MealPlan {
	return reserveFallback.Clone()
}

// SafeFallbackPlan is FallbackPlan with every slot that conflicts with the allergies
// replaced by the reserve slot. The reserve is plant-only, so swapping never breaks
// the diet constraint.
func SafeFallbackPlan(diet DietType, allergies []Allergy) MealPlan {
	plan := FallbackPlan(diet)
	if len(allergies) == 0 {
		return plan
	}

	reserve := ReserveFallbackPlan()
	for _, slot := range MealSlots {
		single := MealPlan{}
		single.SetSlot(slot, plan.Slot(slot))
		if ValidateAllergens(single, allergies).IsSafe {
			continue
		}
		plan.SetSlot(slot, reserve.Slot(slot))
	}
	return plan
}

// CheckedFallbackPlan is SafeFallbackPlan plus the allergen violations still left in the
// result. The reserve plan is only kept clean of the closed-set allergens, so a free-text
// allergy that names a reserve ingredient ("celery") can survive the swap.
func CheckedFallbackPlan(diet DietType, allergies []Allergy) (MealPlan, []string) {
	plan := SafeFallbackPlan(diet, allergies)
	if len(allergies) == 0 {
		return plan, nil
	}
	return plan, ValidateAllergens(plan, allergies).Violations
}
