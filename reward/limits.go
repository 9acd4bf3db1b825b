package reward

// Decision is the outcome of a limit check for one prospective completion.
type Decision int

const (
	Allowed Decision = iota
	TotalLimitReached
	DailyLimitReached
)

func (d Decision) String() string {
	switch d {
	case TotalLimitReached:
		return "Total limit reached"
	case DailyLimitReached:
		return "Daily limit reached"
	default:
		return "Allowed"
	}
}

// Evaluate decides whether a new completion is permitted given the task's
// caps and the user's existing log counts. A limit of 0 disables that axis.
// The total cap is checked before the daily cap.
func Evaluate(dailyLimit, totalLimit int, totalCount, dailyCount int64) Decision {
	if totalLimit > 0 && totalCount >= int64(totalLimit) {
		return TotalLimitReached
	}
	if dailyLimit > 0 && dailyCount >= int64(dailyLimit) {
		return DailyLimitReached
	}
	return Allowed
}
