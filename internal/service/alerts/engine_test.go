package alerts

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovista/fermops/internal/domain/models"
)

var testToday = time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

func generate(snap models.Snapshot) []models.SmartAlert {
	return NewEngine(nil).Generate(Input{Today: testToday, Snapshot: snap})
}

func keys(alerts []models.SmartAlert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.AlertKey)
	}
	return out
}

func TestGenerateEmptySnapshot(t *testing.T) {
	got := generate(models.Snapshot{})
	assert.Empty(t, got)
}

func TestCostOverIncomeRule(t *testing.T) {
	snap := models.Snapshot{
		Sales:    []models.SaleRecord{{Date: "2026-05-10", QuantityKg: 100, PricePerKg: 3}}, // 300 lei
		Expenses: []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Equal(t, "cost_over_income:30d", got[0].AlertKey)
	assert.Equal(t, models.SeverityDanger, got[0].Severity)
	assert.Contains(t, got[0].Message, "500")
	assert.Contains(t, got[0].Message, "300")
}

func TestCostOverIncomeNeedsNonzeroSums(t *testing.T) {
	// Expenses equal to income, and the all-zero case, both stay silent.
	snap := models.Snapshot{
		Sales:    []models.SaleRecord{{Date: "2026-05-10", QuantityKg: 100, PricePerKg: 5}},
		Expenses: []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
	}
	assert.Empty(t, generate(snap))
	assert.Empty(t, generate(models.Snapshot{}))
}

func TestNegativeMarginFiresAlongsideCostOverIncome(t *testing.T) {
	snap := models.Snapshot{
		Sales:    []models.SaleRecord{{Date: "2026-05-10", QuantityKg: 70, PricePerKg: 5}}, // 350 lei
		Expenses: []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
	}

	got := generate(snap)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"cost_over_income:30d", "negative_margin:30d"}, keys(got))
}

func TestNegativeMarginRequiresRevenue(t *testing.T) {
	// Costs with zero revenue trip cost-over-income only: margin is defined
	// as 0 without revenue, never negative.
	snap := models.Snapshot{
		Expenses: []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Equal(t, "cost_over_income:30d", got[0].AlertKey)
}

func TestTrailingWindowBounds(t *testing.T) {
	snap := models.Snapshot{
		Expenses: []models.ExpenseRecord{
			{Date: "2026-04-14", AmountLei: 999}, // 31 days back, outside
			{Date: "2026-04-15", AmountLei: 100}, // window start, inside
			{Date: "2026-05-15", AmountLei: 50},  // today, inside
			{Date: "not-a-date", AmountLei: 777}, // malformed, skipped
		},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "150", "only in-window rows are summed")
}

func TestNoHarvestRule(t *testing.T) {
	snap := models.Snapshot{
		Parcels: []models.Parcel{{ID: "p1", Name: "Via Veche"}},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Equal(t, "no_harvest:p1", got[0].AlertKey)
	assert.Equal(t, models.SeverityWarning, got[0].Severity)
	assert.Contains(t, got[0].Message, "Via Veche")
}

func TestStaleHarvestRule(t *testing.T) {
	tests := []struct {
		name     string
		lastDate string
		wantKey  string
	}{
		{name: "recent harvest is quiet", lastDate: "2026-05-10", wantKey: ""},
		{name: "13 days is still quiet", lastDate: "2026-05-02", wantKey: ""},
		{name: "exactly 14 days fires", lastDate: "2026-05-01", wantKey: "stale_harvest:p1"},
		{name: "long overdue fires", lastDate: "2026-03-01", wantKey: "stale_harvest:p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := models.Snapshot{
				Parcels: []models.Parcel{{ID: "p1"}},
				Harvests: []models.HarvestRecord{
					{Date: "2026-01-05", ParcelID: "p1"},
					{Date: tt.lastDate, ParcelID: "p1"},
				},
			}

			got := generate(snap)
			if tt.wantKey == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantKey, got[0].AlertKey)
		})
	}
}

func TestParcelTriggersAtMostOneHarvestAlert(t *testing.T) {
	snap := models.Snapshot{
		Parcels:  []models.Parcel{{ID: "p1"}},
		Harvests: []models.HarvestRecord{{Date: "2026-01-01", ParcelID: "p1"}},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Equal(t, "stale_harvest:p1", got[0].AlertKey, "existing records rule out no-harvest")
}

func TestHarvestRulesSkipMalformedRows(t *testing.T) {
	snap := models.Snapshot{
		Parcels: []models.Parcel{
			{ID: ""}, // missing id, skipped entirely
			{ID: "p2"},
		},
		Harvests: []models.HarvestRecord{
			{Date: "garbage", ParcelID: "p2"}, // row exists but has no usable date
		},
	}

	got := generate(snap)
	assert.Empty(t, got, "records without dates block no-harvest and cannot go stale")
}

func TestLateActivityRule(t *testing.T) {
	snap := models.Snapshot{
		Activities: []models.ActivityRecord{
			{ID: "a1", ApplicationDate: "2026-05-12"},                      // 3 days, no operator -> fires
			{ID: "a2", ApplicationDate: "2026-05-13"},                      // 2 days -> quiet
			{ID: "a3", ApplicationDate: "2026-05-01", Operator: "Ion"},     // operator set -> quiet
			{ID: "a4", ApplicationDate: "2026-05-01", Operator: "   "},     // blank operator -> fires
			{ID: "a5", ApplicationDate: "bad-date"},                        // skipped
			{ID: "", ApplicationDate: "2026-05-01"},                        // missing id, skipped
		},
	}

	got := generate(snap)

	assert.Equal(t, []string{"late_activity:a1", "late_activity:a4"}, keys(got))
	for _, a := range got {
		assert.Equal(t, models.SeverityWarning, a.Severity)
	}
}

func TestPauseActiveRule(t *testing.T) {
	snap := models.Snapshot{
		Activities: []models.ActivityRecord{
			{ID: "a1", ApplicationDate: "2026-05-13", PauseDays: 7, Product: "Cupru", Operator: "Ion"},
			{ID: "a2", ApplicationDate: "2026-05-01", PauseDays: 7, Operator: "Ion"}, // expired
			{ID: "a3", ApplicationDate: "2026-05-08", PauseDays: 7, Operator: "Ion"}, // ends today, not active
		},
	}

	got := generate(snap)

	require.Len(t, got, 1)
	assert.Equal(t, "pauza_activa:a1", got[0].AlertKey)
	assert.Equal(t, models.SeverityInfo, got[0].Severity)
	assert.Contains(t, got[0].Message, "5 more day(s)", "applied 2 days ago with 7-day pause")
}

func TestActivityEmitsLateThenPause(t *testing.T) {
	snap := models.Snapshot{
		Activities: []models.ActivityRecord{
			{ID: "a1", ApplicationDate: "2026-05-12", PauseDays: 10},
		},
	}

	got := generate(snap)

	assert.Equal(t, []string{"late_activity:a1", "pauza_activa:a1"}, keys(got))
}

func TestGenerateCapsAtEightInEvaluationOrder(t *testing.T) {
	snap := models.Snapshot{
		Expenses: []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
	}
	for i := 0; i < 12; i++ {
		snap.Parcels = append(snap.Parcels, models.Parcel{ID: fmt.Sprintf("p%02d", i)})
	}

	got := generate(snap)

	require.Len(t, got, 8, "never more than eight alerts")
	want := []string{
		"cost_over_income:30d",
		"no_harvest:p00", "no_harvest:p01", "no_harvest:p02", "no_harvest:p03",
		"no_harvest:p04", "no_harvest:p05", "no_harvest:p06",
	}
	assert.Equal(t, want, keys(got), "truncation keeps evaluation order, not severity")
}

func TestGenerateIsDeterministic(t *testing.T) {
	snap := models.Snapshot{
		Sales:      []models.SaleRecord{{Date: "2026-05-10", QuantityKg: 10, PricePerKg: 2}},
		Expenses:   []models.ExpenseRecord{{Date: "2026-05-12", AmountLei: 500}},
		Parcels:    []models.Parcel{{ID: "p1"}},
		Activities: []models.ActivityRecord{{ID: "a1", ApplicationDate: "2026-05-13", PauseDays: 7, Operator: "Ion"}},
	}

	first := generate(snap)
	second := generate(snap)
	assert.Equal(t, first, second)
}

func TestGenerateDefaultsTodayToNow(t *testing.T) {
	snap := models.Snapshot{Parcels: []models.Parcel{{ID: "p1"}}}
	got := NewEngine(nil).Generate(Input{Snapshot: snap})

	require.Len(t, got, 1)
	assert.Equal(t, "no_harvest:p1", got[0].AlertKey)
}
