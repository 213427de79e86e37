package mealsafety

// ConstraintTableVersion changes whenever a forbidden list or principle label changes.
// It is logged at startup and stored with every persisted plan.
const ConstraintTableVersion = "2"

const (
	PrincipleLowFatVegan      = "Low Fat Vegan"
	PrincipleLowCarbHighFat   = "Low Carb High Fat"
	PrincipleBalancedOmnivore = "Balanced Omnivore"
)

// DietConstraint is one row of the constraint table.
type DietConstraint struct {
	Forbidden []string
	Principle string
}

// plantOnlyForbidden is shared by vegan and vegetarian; both follow LFV, which excludes dairy and eggs.
var plantOnlyForbidden = []string{
	// Meat & poultry
	"chicken", "mutton", "lamb", "beef", "pork", "bacon", "ham", "turkey", "duck", "goat", "venison", "meat", "poultry",
	// Seafood
	"fish", "salmon", "tuna", "prawn", "shrimp", "crab", "lobster", "shellfish", "cod", "mackerel", "seafood",
	// Eggs
	"egg", "eggs", "egg white", "egg yolk", "omelette", "scrambled egg", "boiled egg", "fried egg",
	// Dairy
	"milk", "cheese", "paneer", "yogurt", "curd", "ghee", "butter", "cream", "cottage cheese", "dairy",
	// Other animal products
	"honey", "gelatin", "lard", "tallow",
}

var dietConstraints = map[DietType]DietConstraint{
	DietVegan: {
		Forbidden: plantOnlyForbidden,
		Principle: PrincipleLowFatVegan,
	},
	DietVegetarian: {
		Forbidden: plantOnlyForbidden,
		Principle: PrincipleLowFatVegan,
	},
	DietMeatBased: {
		Forbidden: nil,
		Principle: PrincipleLowCarbHighFat,
	},
}

// LookupDietConstraint returns a copy of the table row for the diet type, matched
// case-insensitively. ok is false for diet types without an entry; those are unconstrained.
func LookupDietConstraint(diet DietType) (DietConstraint, bool) {
	c, ok := dietConstraints[NormalizeDietType(string(diet))]
	if !ok {
		return DietConstraint{}, false
	}
	return DietConstraint{
		Forbidden: append([]string(nil), c.Forbidden...),
		Principle: c.Principle,
	}, true
}

// ForbiddenKeywords returns the forbidden list for the diet type (empty when unconstrained).
func ForbiddenKeywords(diet DietType) []string {
	c, _ := LookupDietConstraint(diet)
	return c.Forbidden
}

// Principle returns the dietary principle label used for prompts and reference documents.
// all-inclusive has no constraint row but is planned with the meat-based principle.
func Principle(diet DietType) string {
	diet = NormalizeDietType(string(diet))
	if c, ok := dietConstraints[diet]; ok {
		return c.Principle
	}
	if diet == DietAllInclusive {
		return PrincipleLowCarbHighFat
	}
	return PrincipleBalancedOmnivore
}
