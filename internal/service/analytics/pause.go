package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/agrovista/fermops/internal/domain/models"
)

// PauseStatus summarizes re-entry compliance for one parcel: the longest
// still-active interval across its treatments and the products that are
// still active.
type PauseStatus struct {
	RemainingDays int      `json:"remaining_days"`
	Products      []string `json:"products"`
}

// ActivityRemainingDays computes how many days remain before the re-entry
// interval of a treatment application expires. Zero means expired or
// inactive; the result is never negative. Unparseable application dates and
// non-positive or non-finite pause lengths contribute nothing.
func ActivityRemainingDays(activity models.ActivityRecord, today time.Time) int {
	if math.IsNaN(activity.PauseDays) || math.IsInf(activity.PauseDays, 0) || activity.PauseDays <= 0 {
		return 0
	}

	applied, ok := ParseDateOnly(activity.ApplicationDate)
	if !ok {
		return 0
	}

	daysSince := DaysBetween(applied, DateOnly(today))
	if daysSince < 0 {
		daysSince = 0
	}

	remaining := int(activity.PauseDays) - daysSince
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ParcelPauseStatus aggregates the remaining re-entry days over a parcel's
// treatment applications. The parcel-level remaining is the maximum across
// activities, not a sum: the parcel stays blocked as long as any single
// interval is still running. Products of still-active treatments are
// collected trimmed and deduplicated.
func ParcelPauseStatus(activities []models.ActivityRecord, today time.Time) PauseStatus {
	status := PauseStatus{Products: make([]string, 0)}
	seen := make(map[string]struct{})

	for _, activity := range activities {
		remaining := ActivityRemainingDays(activity, today)
		if remaining == 0 {
			continue
		}

		if remaining > status.RemainingDays {
			status.RemainingDays = remaining
		}

		product := strings.TrimSpace(activity.Product)
		if product == "" {
			continue
		}
		if _, dup := seen[product]; dup {
			continue
		}
		seen[product] = struct{}{}
		status.Products = append(status.Products, product)
	}

	return status
}
