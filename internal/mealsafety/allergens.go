package mealsafety

import "strings"

// allergenKeywords maps a canonical allergy category to its detection keywords:
// dish names, derived ingredients and hidden sources.
var allergenKeywords = map[string][]string{
	"eggs": {
		"egg", "eggs", "omelet", "omelette", "custard", "mayonnaise", "meringue", "frittata", "quiche",
	},
	"nuts": {
		"nuts", "nut", "almond", "almonds", "walnut", "walnuts", "cashew", "cashews", "pistachio", "pistachios",
		"hazelnut", "hazelnuts", "pecan", "pecans", "brazil nut", "macadamia", "pine nut",
	},
	"peanuts": {
		"peanut", "peanuts", "peanut butter", "groundnut",
	},
	"dairy": {
		"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "ice cream", "whey", "casein", "lactose",
		"paneer", "ghee", "curd",
	},
	"soy": {
		"soy", "soya", "tofu", "tempeh", "edamame", "soy sauce", "miso",
	},
	"fish": {
		"fish", "salmon", "tuna", "cod", "sardine", "mackerel", "trout", "bass", "halibut",
	},
	"shellfish": {
		"shellfish", "shrimp", "prawn", "crab", "lobster", "oyster", "mussel", "clam", "scallop",
	},
	"gluten": {
		"wheat", "bread", "pasta", "flour", "gluten", "barley", "rye", "oats",
	},
}

// allergenAliases folds user-facing labels onto the canonical categories above.
var allergenAliases = map[string]string{
	"egg":       "eggs",
	"eggs":      "eggs",
	"nuts":      "nuts",
	"tree nuts": "nuts",
	"tree-nuts": "nuts",
	"tree nut":  "nuts",
	"peanuts":   "peanuts",
	"peanut":    "peanuts",
	"dairy":     "dairy",
	"milk":      "dairy",
	"soy":       "soy",
	"soya":      "soy",
	"fish":      "fish",
	"shellfish": "shellfish",
	"gluten":    "gluten",
	"wheat":     "gluten",
}

// NormalizeAllergy lower-cases and trims an allergy label.
func NormalizeAllergy(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// CanonicalAllergen maps a label onto its closed-set category ("milk" -> "dairy").
func CanonicalAllergen(label string) (string, bool) {
	canonical, ok := allergenAliases[NormalizeAllergy(label)]
	return canonical, ok
}

// IsKnownAllergen reports whether the label belongs to the curated closed set.
func IsKnownAllergen(label string) bool {
	_, ok := CanonicalAllergen(label)
	return ok
}

// ExpandAllergen returns the detection keywords for one allergy label.
// Unknown labels fall back to the normalized label itself; blank labels expand to nothing.
func ExpandAllergen(label string) []string {
	normalized := NormalizeAllergy(label)
	if normalized == "" {
		return nil
	}

	if canonical, ok := CanonicalAllergen(normalized); ok {
		return append([]string(nil), allergenKeywords[canonical]...)
	}
	return []string{normalized}
}
