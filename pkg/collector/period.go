package collector

import (
	"fmt"
	"time"

	"github.com/caaosorio/expenses/pkg/api"
)

// originDays is how far back "from_origin" reaches (about four years).
const originDays = 1461

// PeriodStart computes the lower-bound instant for a period, anchored at
// now. The result is truncated to the start of its civil day: the mail
// backends search with day granularity, so the truncation reproduces the
// window each period actually covers.
func PeriodStart(period api.Period, now time.Time) (time.Time, error) {
	var ref time.Time

	switch period {
	case api.PeriodDaily:
		ref = now
	case api.PeriodWeekly:
		ref = now.AddDate(0, 0, -7)
	case api.PeriodPartialWeekly:
		// Back to the most recent Monday.
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		ref = now.AddDate(0, 0, -daysSinceMonday)
	case api.PeriodMonthly:
		ref = now.AddDate(0, 0, -30)
	case api.PeriodFromOrigin:
		ref = now.AddDate(0, 0, -originDays)
	default:
		return time.Time{}, fmt.Errorf("unknown period %q", period)
	}

	return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()), nil
}
