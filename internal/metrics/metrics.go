package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Violation kinds.
const (
	KindDietConstraint = "diet_constraint"
	KindAllergen       = "allergen"

	// KindUnresolvedAllergen counts allergen matches left in a served fallback plan.
	KindUnresolvedAllergen = "fallback_allergen"
)

// MealPlanMetrics counts generation outcomes. A nil *MealPlanMetrics records nothing.
type MealPlanMetrics struct {
	Generations      *prometheus.CounterVec
	Violations       *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
	UndecodableMeals prometheus.Counter
}

// NewMealPlanMetrics registers the collectors on reg (prometheus.DefaultRegisterer in main,
// a fresh registry in tests).
func NewMealPlanMetrics(reg prometheus.Registerer) *MealPlanMetrics {
	factory := promauto.With(reg)

	return &MealPlanMetrics{
		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "glupulse",
				Subsystem: "mealplan",
				Name:      "generations_total",
				Help:      "Meal plan requests by served source and fallback reason",
			},
			[]string{"source", "reason"},
		),
		Violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "glupulse",
				Subsystem: "mealplan",
				Name:      "safety_violations_total",
				Help:      "Violations found in generated meal plans",
			},
			[]string{"kind"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "glupulse",
				Subsystem: "mealplan",
				Name:      "generation_duration_seconds",
				Help:      "Time from prompt to served plan",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"source"},
		),
		UndecodableMeals: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "glupulse",
				Subsystem: "mealplan",
				Name:      "undecodable_history_rows_total",
				Help:      "Stored meal plan rows skipped because the plan could not be decoded",
			},
		),
	}
}

func (m *MealPlanMetrics) RecordGeneration(source, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.Generations.WithLabelValues(source, reason).Inc()
	m.Duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *MealPlanMetrics) RecordViolations(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Violations.WithLabelValues(kind).Add(float64(n))
}

func (m *MealPlanMetrics) RecordUndecodableRow() {
	if m == nil {
		return
	}
	m.UndecodableMeals.Inc()
}
