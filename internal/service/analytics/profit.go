package analytics

import "math"

// ProfitBreakdown is the profit/margin record consumed by dashboards and by
// the alert rule engine.
type ProfitBreakdown struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	Margin  float64 `json:"margin"`
}

// CalculateProfit turns a revenue/cost pair into a profit breakdown. The
// function is total: NaN and infinite inputs are sanitized to zero, and the
// margin is defined as 0 whenever revenue is not positive, so no division
// artifact can leak out. It holds no state and is safe to call at arbitrary
// volume.
func CalculateProfit(revenue, cost float64) ProfitBreakdown {
	revenue = sanitize(revenue)
	cost = sanitize(cost)

	profit := revenue - cost

	var margin float64
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	return ProfitBreakdown{
		Revenue: revenue,
		Cost:    cost,
		Profit:  profit,
		Margin:  margin,
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
