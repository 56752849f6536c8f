package jobs

import (
	"time"

	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/models"
)

// NextOccurrence rolls a requested schedule time forward so it is never in
// the past at creation. One-shot schedules that already passed move to the
// same clock time tomorrow; recurring ones advance by their own period.
func NextOccurrence(requested time.Time, frequency string, now time.Time) time.Time {
	requested = requested.UTC()
	now = now.UTC()

	if requested.After(now) {
		return requested
	}

	for !requested.After(now) {
		switch frequency {
		case models.FrequencyWeekly:
			requested = requested.AddDate(0, 0, 7)
		case models.FrequencyMonthly:
			requested = requested.AddDate(0, 0, 30)
		default:
			requested = requested.AddDate(0, 0, 1)
		}
	}
	return requested
}
