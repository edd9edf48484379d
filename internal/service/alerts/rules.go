package alerts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agrovista/fermops/internal/domain/models"
	"github.com/agrovista/fermops/internal/service/analytics"
)

// Evaluation sequence is fixed: financial rules over the trailing window
// first, then per-parcel harvest gaps in parcel order, then per-activity
// checks in activity order. Alert keys are namespaced by rule and subject
// so they stay stable across recomputation and dismissals remain valid for
// the rest of the day.
func defaultRules() []Rule {
	return []Rule{
		{ID: "cost-over-income", Evaluate: evaluateCostOverIncome},
		{ID: "negative-margin", Evaluate: evaluateNegativeMargin},
		{ID: "harvest-gaps", Evaluate: evaluateHarvestGaps},
		{ID: "activity-checks", Evaluate: evaluateActivities},
	}
}

const staleHarvestDays = 14

func evaluateCostOverIncome(ev Evaluation) []models.SmartAlert {
	if ev.Cost30 <= ev.Revenue30 {
		return nil
	}
	if ev.Cost30 == 0 && ev.Revenue30 == 0 {
		return nil
	}

	return []models.SmartAlert{{
		ID:       "cost-over-income",
		AlertKey: "cost_over_income:30d",
		Severity: models.SeverityDanger,
		Title:    "Costs exceed income",
		Message:  fmt.Sprintf("Last 30 days: %.0f lei spent against %.0f lei earned.", ev.Cost30, ev.Revenue30),
	}}
}

func evaluateNegativeMargin(ev Evaluation) []models.SmartAlert {
	if ev.Profit30.Margin >= 0 || ev.Revenue30 <= 0 {
		return nil
	}

	return []models.SmartAlert{{
		ID:       "negative-margin",
		AlertKey: "negative_margin:30d",
		Severity: models.SeverityDanger,
		Title:    "Negative profit margin",
		Message:  fmt.Sprintf("Margin over the last 30 days is %.1f%%. Review pricing and expenses.", ev.Profit30.Margin),
	}}
}

// evaluateHarvestGaps emits at most one alert per parcel: no-harvest when
// the parcel has no harvest rows at all, stale-harvest when its latest
// harvest is 14 or more days old.
func evaluateHarvestGaps(ev Evaluation) []models.SmartAlert {
	var out []models.SmartAlert

	for _, parcel := range ev.Snapshot.Parcels {
		if parcel.ID == "" {
			continue
		}

		var hasRecords bool
		var latest time.Time
		for _, harvest := range ev.Snapshot.Harvests {
			if harvest.ParcelID != parcel.ID {
				continue
			}
			hasRecords = true
			date, ok := analytics.ParseDateOnly(harvest.Date)
			if !ok {
				continue
			}
			if date.After(latest) {
				latest = date
			}
		}

		name := parcel.Name
		if name == "" {
			name = parcel.ID
		}

		if !hasRecords {
			out = append(out, models.SmartAlert{
				ID:       "no-harvest-" + parcel.ID,
				AlertKey: "no_harvest:" + parcel.ID,
				Severity: models.SeverityWarning,
				Title:    "No harvests recorded",
				Message:  fmt.Sprintf("Parcel %s has no harvest records yet.", name),
			})
			continue
		}

		if latest.IsZero() {
			// Rows exist but none carries a usable date.
			continue
		}

		if days := analytics.DaysBetween(latest, ev.Today); days >= staleHarvestDays {
			out = append(out, models.SmartAlert{
				ID:       "stale-harvest-" + parcel.ID,
				AlertKey: "stale_harvest:" + parcel.ID,
				Severity: models.SeverityWarning,
				Title:    "Harvest overdue",
				Message:  fmt.Sprintf("No harvest on parcel %s for %d days.", name, days),
			})
		}
	}

	return out
}

// evaluateActivities walks treatment applications in input order. Each
// activity can emit a late-activity warning (applied more than two days ago
// with no operator confirmed) followed by a re-entry pause notice while its
// interval is still running.
func evaluateActivities(ev Evaluation) []models.SmartAlert {
	var out []models.SmartAlert

	for _, activity := range ev.Snapshot.Activities {
		if activity.ID == "" {
			continue
		}

		applied, ok := analytics.ParseDateOnly(activity.ApplicationDate)
		if !ok {
			continue
		}

		subject := activity.Product
		if subject == "" {
			subject = activity.ActivityType
		}
		if subject == "" {
			subject = activity.ID
		}

		daysSince := analytics.DaysBetween(applied, ev.Today)
		if daysSince > 2 && strings.TrimSpace(activity.Operator) == "" {
			out = append(out, models.SmartAlert{
				ID:       "late-activity-" + activity.ID,
				AlertKey: "late_activity:" + activity.ID,
				Severity: models.SeverityWarning,
				Title:    "Activity without operator",
				Message:  fmt.Sprintf("%s was applied %d days ago and nobody confirmed it.", subject, daysSince),
			})
		}

		if activity.PauseDays > 0 && !math.IsInf(activity.PauseDays, 1) {
			pauseEnd := applied.AddDate(0, 0, int(activity.PauseDays))
			if ev.Today.Before(pauseEnd) {
				remaining := analytics.DaysBetween(ev.Today, pauseEnd)
				out = append(out, models.SmartAlert{
					ID:       "pause-active-" + activity.ID,
					AlertKey: "pauza_activa:" + activity.ID,
					Severity: models.SeverityInfo,
					Title:    "Re-entry pause active",
					Message:  fmt.Sprintf("%s: %d more day(s) before harvesting is allowed.", subject, remaining),
				})
			}
		}
	}

	return out
}
