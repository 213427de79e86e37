package geminiservice

import (
	"fmt"
	"math"
	"strings"

	"Glupulse_MealPlan/internal/mealsafety"
)

/* =================================================================================
							BODY METRICS
=================================================================================*/

// HeightCM converts the stored height to centimetres. Unknown units are taken as cm.
func (p UserProfile) HeightCM() float64 {
	switch strings.ToLower(strings.TrimSpace(p.HeightUnit)) {
	case "m":
		return p.HeightValue * 100
	case "in", "inch", "inches":
		return p.HeightValue * 2.54
	case "ft", "feet":
		return p.HeightValue * 30.48
	default:
		return p.HeightValue
	}
}

// WeightKG converts the stored weight to kilograms. Unknown units are taken as kg.
func (p UserProfile) WeightKG() float64 {
	switch strings.ToLower(strings.TrimSpace(p.WeightUnit)) {
	case "lb", "lbs", "pound", "pounds":
		return p.WeightValue * 0.45359237
	default:
		return p.WeightValue
	}
}

// CalculateBMI returns weight / height^2, or 0 when either metric is missing.
func CalculateBMI(p UserProfile) float64 {
	heightM := p.HeightCM() / 100
	weight := p.WeightKG()
	if heightM <= 0 || weight <= 0 {
		return 0
	}
	return weight / (heightM * heightM)
}

const (
	BMIUnknown     = "Unknown"
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal weight"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMICategory buckets a BMI value using the WHO adult cut-offs.
func BMICategory(bmi float64) string {
	switch {
	case bmi <= 0:
		return BMIUnknown
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// activityMultipliers is the single source of truth for exercise levels.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"high":      1.725,
	"very-high": 1.9,
	"very high": 1.9,
}

// DailyCalories estimates the calorie target with the Harris-Benedict equation,
// the activity multiplier, and a BMI-driven deficit (-500 above 25) or surplus (+300 below 18.5).
func DailyCalories(p UserProfile, bmi float64) int {
	weight := p.WeightKG()
	height := p.HeightCM()
	age := float64(p.Age)

	var bmr float64
	if strings.EqualFold(strings.TrimSpace(p.Gender), "male") {
		bmr = 88.362 + 13.397*weight + 4.799*height - 5.677*age
	} else {
		bmr = 447.593 + 9.247*weight + 3.098*height - 4.33*age
	}

	multiplier, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(p.ExerciseLevel))]
	if !ok {
		multiplier = activityMultipliers["sedentary"]
	}

	calories := bmr * multiplier
	switch {
	case bmi > 25:
		calories -= 500
	case bmi > 0 && bmi < 18.5:
		calories += 300
	}

	return int(math.Round(calories))
}

/* =================================================================================
							GUIDELINE TABLES
=================================================================================*/

// allergenExclusions is keyed by the closed-set categories of mealsafety.
var allergenExclusions = map[string]string{
	"eggs":      "All eggs, egg-based dishes (omelettes, frittatas, quiche), mayonnaise, custards, meringues, pasta containing eggs, caesar dressing, hollandaise sauce, and any foods prepared with eggs.",
	"dairy":     "All milk, cheese, paneer, ghee, curd, yogurt, butter, cream, ice cream, whey, casein, lactose, and any foods containing milk proteins.",
	"nuts":      "Almonds, walnuts, cashews, pistachios, hazelnuts, pecans, brazil nuts, macadamia nuts, pine nuts, and all nut-based products including nut butters, nut oils and nut flours.",
	"peanuts":   "Peanuts, peanut butter, peanut oil, groundnuts, and foods processed in facilities with peanuts. Check all Asian cuisine ingredients carefully.",
	"soy":       "Soybeans, soy sauce, tofu, tempeh, edamame, soy milk, miso, soy lecithin, and foods containing soy derivatives.",
	"fish":      "All fish varieties, fish sauce, fish oil, worcestershire sauce, and foods cooked with fish.",
	"shellfish": "Shrimp, prawns, crab, lobster, oysters, mussels, clams, scallops, and all crustaceans and mollusks.",
	"gluten":    "Wheat, barley, rye, oats (unless certified gluten-free), bread, pasta, flour-based products, and wheat-based seasonings.",
}

var conditionGuidelines = map[string]string{
	"hypertension":           "Hypertension management: Limit sodium to <2300mg/day, emphasize potassium-rich foods (spinach, avocado), avoid processed meats and canned foods",
	"high blood pressure":    "Hypertension management: Limit sodium to <2300mg/day, emphasize potassium-rich foods (spinach, avocado), avoid processed meats and canned foods",
	"kidney disease":         "Kidney disease management: Limit protein to 0.8g/kg body weight, restrict high-phosphorus foods, control potassium intake",
	"chronic kidney disease": "Kidney disease management: Limit protein to 0.8g/kg body weight, restrict high-phosphorus foods, control potassium intake",
	"heart disease":          "Heart disease management: Emphasize omega-3 sources, limit saturated fats, increase soluble fiber",
	"cardiovascular disease": "Heart disease management: Emphasize omega-3 sources, limit saturated fats, increase soluble fiber",
	"fatty liver":            "Fatty liver management: Avoid refined sugars and simple carbohydrates, emphasize vegetables and lean proteins, limit fructose",
	"nafld":                  "Fatty liver management: Avoid refined sugars and simple carbohydrates, emphasize vegetables and lean proteins, limit fructose",
	"thyroid":                "Thyroid management: Include iodine-rich foods, limit raw cruciferous vegetables, maintain consistent meal timing",
	"hypothyroidism":         "Thyroid management: Include iodine-rich foods, limit raw cruciferous vegetables, maintain consistent meal timing",
	"celiac":                 "Celiac disease management: Strict gluten-free diet, avoid wheat, barley, rye, and cross-contamination",
	"celiac disease":         "Celiac disease management: Strict gluten-free diet, avoid wheat, barley, rye, and cross-contamination",
}

var diabetesGuidelines = map[string]string{
	"type1":       "Type 1 diabetes: Carbohydrate counting essential, consistent meal timing, balance with insulin doses, prevent hypoglycemia with appropriate snacks",
	"type 1":      "Type 1 diabetes: Carbohydrate counting essential, consistent meal timing, balance with insulin doses, prevent hypoglycemia with appropriate snacks",
	"type2":       "Type 2 diabetes: Focus on insulin sensitivity, weight management, low glycemic index foods, portion control, meal timing",
	"type 2":      "Type 2 diabetes: Focus on insulin sensitivity, weight management, low glycemic index foods, portion control, meal timing",
	"gestational": "Gestational diabetes: Controlled carbohydrate distribution, frequent small meals, avoid ketosis, adequate nutrition for fetal development",
}

const defaultDiabetesGuideline = "Diabetes management: Stable blood glucose, low glycemic foods, balanced macronutrients, consistent meal timing"

/* =================================================================================
							PROMPT SECTIONS
=================================================================================*/

func formatProfile(p UserProfile, bmi float64, diabetesType string, cuisines []string) string {
	gender := orDefault(p.Gender, "Not specified")
	diet := orDefault(string(p.DietType), "Not specified")
	exercise := orDefault(p.ExerciseLevel, "Not specified")
	cuisine := "Continental"
	if len(cuisines) > 0 {
		cuisine = strings.Join(cuisines, ", ")
	}

	return fmt.Sprintf(
		"- Age: %d years (%s)\n"+
			"- BMI: %.1f (%s)\n"+
			"- Height: %g%s, Weight: %g%s\n"+
			"- Diabetes: %s\n"+
			"- Diet Type: %s\n"+
			"- Exercise Level: %s\n"+
			"- Cuisine Preference: %s",
		p.Age, gender,
		bmi, BMICategory(bmi),
		p.HeightValue, p.HeightUnit, p.WeightValue, p.WeightUnit,
		orDefault(diabetesType, "unspecified"),
		diet,
		exercise,
		cuisine,
	)
}

// formatDietRestrictions lists the forbidden table entries verbatim so the model
// sees the exact words the validator will reject.
func formatDietRestrictions(diet mealsafety.DietType) string {
	forbidden := mealsafety.ForbiddenKeywords(diet)
	switch {
	case len(forbidden) > 0:
		return fmt.Sprintf(
			"%s DIET - ZERO ANIMAL PRODUCTS ALLOWED (%s principles):\n"+
				"- FORBIDDEN INGREDIENTS: %s\n"+
				"- FORBIDDEN: cooking oils (olive oil, coconut oil, sunflower oil, etc.)\n"+
				"- ONLY ALLOWED: Vegetables, fruits, lentils/dals, grains, millets, seeds\n"+
				"MANDATORY DIET CHECK: Before suggesting ANY ingredient, verify it contains NO animal products whatsoever.",
			strings.ToUpper(string(diet)), mealsafety.Principle(diet), strings.Join(forbidden, ", "),
		)
	case diet == mealsafety.DietMeatBased || diet == mealsafety.DietAllInclusive:
		return fmt.Sprintf("MEAT-BASED DIET: Include meat, poultry, seafood, eggs following %s principles", mealsafety.Principle(diet))
	default:
		return "BALANCED OMNIVOROUS DIET: Include variety of protein sources"
	}
}

func formatAllergies(allergies []mealsafety.Allergy) string {
	var forbidden, details []string
	for _, a := range allergies {
		label := strings.TrimSpace(a.AllergyType)
		if label == "" {
			continue
		}
		forbidden = append(forbidden, "- FORBIDDEN ALLERGEN: "+strings.ToUpper(label))

		if canonical, ok := mealsafety.CanonicalAllergen(label); ok {
			details = append(details, "- NEVER INCLUDE: "+allergenExclusions[canonical])
		} else {
			details = append(details, fmt.Sprintf("- NEVER INCLUDE: %s and all foods containing or prepared with %s. Ensure cross-contamination prevention.", label, label))
		}
	}

	if len(forbidden) == 0 {
		return "No known food allergies - all foods may be considered"
	}

	return "THIS USER HAS LIFE-THREATENING ALLERGIES - ABSOLUTE PROHIBITION:\n" +
		strings.Join(forbidden, "\n") +
		"\n\nDETAILED SAFETY EXCLUSIONS:\n" +
		strings.Join(details, "\n") +
		"\n\nMANDATORY SAFETY CHECK: Before suggesting ANY ingredient or meal, verify it does NOT contain or use any of the above allergens, including hidden ingredients and cooking methods."
}

func formatConditions(conditions []string) string {
	if len(conditions) == 0 {
		return "No specific medical conditions requiring dietary modifications"
	}

	lines := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if g, ok := conditionGuidelines[c]; ok {
			lines = append(lines, g)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s management: Select foods that support %s treatment and avoid those that may worsen symptoms", c, c))
	}
	return strings.Join(lines, ". ")
}

// bmiGuidance returns the weight management line and the macro targets.
func bmiGuidance(bmi, weightKG float64) (string, string) {
	if weightKG <= 0 {
		weightKG = 70
	}

	switch BMICategory(bmi) {
	case BMIUnderweight:
		return fmt.Sprintf("Underweight management (BMI %.1f): Increase caloric density with healthy fats, frequent nutrient-dense meals", bmi),
			fmt.Sprintf("Protein: %.0fg, Carbs: 45-50%% calories, Fat: 30-35%% calories", weightKG*1.2)
	case BMIOverweight:
		return fmt.Sprintf("Overweight management (BMI %.1f): Create moderate calorie deficit, emphasize protein satiety, reduce refined carbohydrates", bmi),
			fmt.Sprintf("Protein: %.0fg, Carbs: 30-35%% calories, Fat: 25-30%% calories", weightKG*1.2)
	case BMIObese:
		return fmt.Sprintf("Obesity management (BMI %.1f): Significant calorie restriction, high protein to preserve muscle, very low carbohydrate approach", bmi),
			fmt.Sprintf("Protein: %.0fg, Carbs: 20-25%% calories, Fat: 30-35%% calories", weightKG*1.6)
	case BMINormal:
		return fmt.Sprintf("Normal weight maintenance (BMI %.1f): Maintain current weight with balanced nutrition, focus on diabetes management", bmi),
			fmt.Sprintf("Protein: %.0fg, Carbs: 40-45%% calories, Fat: 25-30%% calories", weightKG)
	default:
		return "Body metrics unavailable: use standard diabetes-friendly portions",
			fmt.Sprintf("Protein: %.0fg, Carbs: 40-45%% calories, Fat: 25-30%% calories", weightKG)
	}
}

// ageGenderGuidance returns the age/gender considerations and the portion adjustments.
func ageGenderGuidance(age int, gender string, bmi float64) (string, string) {
	var considerations string
	var portions []string

	switch {
	case age >= 65:
		considerations = fmt.Sprintf("Senior nutrition (%d years): Higher protein needs (1.2g/kg), emphasize calcium and vitamin D, ensure adequate B12 and folate", age)
		portions = append(portions, "Senior portions: Reduce overall portion sizes by 10-15%, increase meal frequency to 5-6 smaller meals.")
	case age >= 50:
		considerations = fmt.Sprintf("Middle-age nutrition (%d years): Focus on bone health, heart-protective nutrients, maintain muscle mass", age)
		portions = append(portions, "Middle-age portions: Standard portions with emphasis on protein quality.")
	case age >= 18:
		considerations = fmt.Sprintf("Adult nutrition (%d years): Standard nutritional requirements with diabetes optimization", age)
		portions = append(portions, "Adult portions: Standard serving sizes based on BMI and activity level.")
	default:
		considerations = fmt.Sprintf("Young adult nutrition (%d years): Higher energy needs, focus on establishing healthy habits", age)
		portions = append(portions, "Young adult portions: Slightly larger portions to support growth and development.")
	}

	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "female":
		considerations += ". Female considerations: Iron-rich foods, hormonal blood sugar impacts, possible increased calcium needs"
		portions = append(portions, "Female adjustments: Slightly smaller portions, focus on iron-rich foods.")
	case "male":
		considerations += ". Male considerations: Higher protein for muscle maintenance, cardiovascular health monitoring"
		portions = append(portions, "Male adjustments: Larger protein portions, increased overall serving sizes.")
	}

	switch BMICategory(bmi) {
	case BMIUnderweight:
		portions = append(portions, fmt.Sprintf("Underweight BMI (%.1f): Increase all portion sizes by 20-25%%.", bmi))
	case BMIOverweight:
		portions = append(portions, fmt.Sprintf("Overweight BMI (%.1f): Reduce portion sizes by 15-20%%, increase vegetable portions.", bmi))
	case BMIObese:
		portions = append(portions, fmt.Sprintf("Obese BMI (%.1f): Reduce portion sizes by 25-30%%, focus on high-volume, low-calorie foods.", bmi))
	case BMINormal:
		portions = append(portions, fmt.Sprintf("Normal BMI (%.1f): Standard portion sizes appropriate for diabetes management.", bmi))
	}

	return considerations, strings.Join(portions, " ")
}

func diabetesGuidance(diabetesType string) string {
	if g, ok := diabetesGuidelines[strings.ToLower(strings.TrimSpace(diabetesType))]; ok {
		return g
	}
	return defaultDiabetesGuideline
}

func dietaryApproach(diet mealsafety.DietType) string {
	switch diet {
	case mealsafety.DietVegan:
		return "Vegan requirements: No animal products, focus on plant proteins, B12 consideration, iron absorption optimization. Follow Low Fat Vegan (LFV) principles: fat should not exceed 5% of total calories."
	case mealsafety.DietVegetarian:
		return "Vegetarian requirements: No meat, poultry, fish, eggs, or dairy products. Focus on plant proteins, B12 consideration, iron absorption optimization. Follow Low Fat Vegan (LFV) principles: fat should not exceed 5% of total calories."
	case mealsafety.DietMeatBased, mealsafety.DietAllInclusive:
		return "Meat-based diet: Include variety of protein sources including meat, poultry, fish, and eggs. Follow Low Carb High Fat (LCHF) principles: carbohydrates should not exceed 20% of total calories."
	default:
		return "Omnivorous diet: Include variety of protein sources based on preferences and health needs"
	}
}

func formatAvoidance(recent map[mealsafety.MealSlot][]string, windowDays int) string {
	var lines []string
	for _, slot := range mealsafety.MealSlots {
		names := recent[slot]
		if len(names) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("Recent %s meals (avoid these): %s", slot, strings.Join(names, ", ")))
	}
	if len(lines) == 0 {
		return ""
	}

	if windowDays <= 0 {
		windowDays = 3
	}
	return "\n=== AVOID REPEATING THESE RECENT MEALS ===\n" +
		strings.Join(lines, "\n") +
		fmt.Sprintf("\nCreate completely different meal options that haven't been used in the last %d days.\n", windowDays)
}

// formatPreferredFoods lists catalog foods that suit the diet and are already free of the
// user's allergens.
func formatPreferredFoods(foods []string, diet mealsafety.DietType) string {
	if len(foods) == 0 {
		return ""
	}
	return fmt.Sprintf("\n=== PREFERRED INGREDIENTS (%s CATALOG) ===\n"+
		"Build meals mainly from these foods: %s\n",
		mealsafety.Principle(diet), strings.Join(foods, ", "))
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

/* =================================================================================
							PROMPT ASSEMBLY
=================================================================================*/

// BuildMealPlanPrompt renders UserPromptTemplate for one user and day.
// A medical condition list that fails to decode contributes no condition guidance.
func BuildMealPlanPrompt(pc PromptContext) string {
	p := pc.Profile
	p.DietType = mealsafety.NormalizeDietType(string(p.DietType))
	bmi := CalculateBMI(p)
	calories := DailyCalories(p, bmi)

	var diabetesType string
	var conditions []string
	if pc.MedicalCondition != nil {
		diabetesType = pc.MedicalCondition.DiabetesType
		conditions, _ = pc.MedicalCondition.DecodeConditions()
	}

	bmiLine, macroLine := bmiGuidance(bmi, p.WeightKG())
	ageGender, portions := ageGenderGuidance(p.Age, p.Gender, bmi)

	var planDate string
	if pc.PlanDate != nil {
		planDate = fmt.Sprintf("\nGenerate this meal plan specifically for %s.\n", pc.PlanDate.Format("Monday, January 2, 2006"))
	}

	return fmt.Sprintf(
		UserPromptTemplate,
		formatProfile(p, bmi, diabetesType, pc.CuisinePreferences),
		calories,
		formatDietRestrictions(p.DietType),
		formatAllergies(pc.Allergies),
		portions,
		formatConditions(conditions),
		bmiLine,
		macroLine,
		ageGender,
		diabetesGuidance(diabetesType),
		dietaryApproach(p.DietType),
		formatPreferredFoods(pc.PreferredFoods, p.DietType),
		formatAvoidance(pc.RecentMeals, pc.RecentWindowDays),
		planDate,
		calories,
	)
}
