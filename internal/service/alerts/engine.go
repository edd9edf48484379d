package alerts

import (
	"time"

	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/domain/models"
	"github.com/agrovista/fermops/internal/service/analytics"
)

// maxAlerts caps the generated list. Truncation is by rule evaluation
// order, never by severity; an earlier info alert can crowd out a later
// danger alert. Observed behavior of the product, kept as-is.
const maxAlerts = 8

// trailingWindowDays is the aggregation window for the financial rules.
const trailingWindowDays = 30

// Input carries one tenant's operational snapshot plus the evaluation date.
// A zero Today means the current local date.
type Input struct {
	Today    time.Time
	Snapshot models.Snapshot
}

// Rule is one independently evaluatable alert rule. Rules receive the
// pre-aggregated evaluation state and return zero or more alerts in the
// order their subjects appear in the input collections.
type Rule struct {
	ID       string
	Evaluate func(ev Evaluation) []models.SmartAlert
}

// Evaluation is the shared state every rule evaluates against: the
// normalized evaluation date, the raw snapshot, and the 30-day financial
// aggregates.
type Evaluation struct {
	Today     time.Time
	Snapshot  models.Snapshot
	Revenue30 float64
	Cost30    float64
	Profit30  analytics.ProfitBreakdown
}

// Engine composes the fixed, ordered rule set over a tenant snapshot.
// Generation is a pure single pass with no I/O: identical input and date
// always produce the identical alert list.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine builds an engine over the default rule set.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rules: defaultRules(), logger: logger}
}

// Generate evaluates every rule in order and returns at most maxAlerts
// alerts. Malformed rows are skipped by the rule they would have affected;
// generation itself never fails.
func (e *Engine) Generate(in Input) []models.SmartAlert {
	today := in.Today
	if today.IsZero() {
		today = time.Now()
	}

	ev := newEvaluation(analytics.DateOnly(today), in.Snapshot)

	alerts := make([]models.SmartAlert, 0)
	for _, rule := range e.rules {
		alerts = append(alerts, rule.Evaluate(ev)...)
	}

	capped := capAlerts(alerts)
	e.logger.Debug("smart alerts generated",
		zap.Int("evaluated", len(alerts)),
		zap.Int("returned", len(capped)))
	return capped
}

// capAlerts applies the bounded-list policy: the first maxAlerts alerts in
// evaluation order survive, the rest are dropped.
func capAlerts(alerts []models.SmartAlert) []models.SmartAlert {
	if len(alerts) <= maxAlerts {
		return alerts
	}
	return alerts[:maxAlerts]
}

func newEvaluation(today time.Time, snap models.Snapshot) Evaluation {
	windowStart := today.AddDate(0, 0, -trailingWindowDays)

	var revenue, cost float64
	for _, sale := range snap.Sales {
		date, ok := analytics.ParseDateOnly(sale.Date)
		if !ok || date.Before(windowStart) || date.After(today) {
			continue
		}
		revenue += sale.Revenue()
	}
	for _, expense := range snap.Expenses {
		date, ok := analytics.ParseDateOnly(expense.Date)
		if !ok || date.Before(windowStart) || date.After(today) {
			continue
		}
		cost += expense.AmountLei
	}

	return Evaluation{
		Today:     today,
		Snapshot:  snap,
		Revenue30: revenue,
		Cost30:    cost,
		Profit30:  analytics.CalculateProfit(revenue, cost),
	}
}
