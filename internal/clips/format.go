package clips

import (
	"fmt"
	"time"
)

// RelativeDate labels a creation time for listings: "Today", "Yesterday",
// "N days ago" within a week, otherwise a short date such as "Mar 4".
func RelativeDate(t, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Local().Format("Jan 2")
	}
}
