package ranking

import (
	"strconv"
	"strings"

	"github.com/spigell/bewatu/internal/network"
)

// JustNowHours and UnparsedAgeHours are tunable: the first keeps brand-new
// posts away from a zero age, the second sinks anything unreadable.
const (
	JustNowHours     = 0.01
	UnparsedAgeHours = 9999.0
)

// ParseAge converts a relative timestamp such as "3 hours ago" into hours.
// It never fails: "Just now" maps to JustNowHours and anything it does not
// understand maps to UnparsedAgeHours.
func ParseAge(timestamp string) float64 {
	if timestamp == network.JustNow {
		return JustNowHours
	}

	parts := strings.Fields(timestamp)
	if len(parts) < 2 {
		return UnparsedAgeHours
	}

	value, err := strconv.Atoi(parts[0])
	if err != nil || value < 0 {
		return UnparsedAgeHours
	}

	unit := strings.ToLower(parts[1])
	switch {
	case strings.HasPrefix(unit, "minute"):
		return float64(value) / 60
	case strings.HasPrefix(unit, "hour"):
		return float64(value)
	case strings.HasPrefix(unit, "day"):
		return float64(value) * 24
	default:
		return UnparsedAgeHours
	}
}
