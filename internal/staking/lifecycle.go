package staking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chukwumela909/project-bolt/pkg/types"
)

// BonusWindowDays is the no-withdrawal grace period, counted from the start
// of the current lock term, during which the yield bump applies.
const BonusWindowDays = 60

const stakeDateLayout = "2006-01-02"

// ParseStakeDate parses the calendar date of a backend timestamp.
// The backend sends either "2024-01-01" or "2024-01-01 10:11:12"; anything
// after the date (space or ISO 'T' separated) is discarded.
func ParseStakeDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	d, err := time.Parse(stakeDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	return d, nil
}

// calendarDay truncates t to its calendar date in its own location and
// re-anchors it at UTC midnight so day differences are exact integers.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysRemainingRaw returns the signed number of days until the lock term
// ends: stakedAt's date + lockPeriodDays minus now's date. Negative once the
// term is over.
func DaysRemainingRaw(stakedAt string, lockPeriodDays int, now time.Time) (int, error) {
	start, err := ParseStakeDate(stakedAt)
	if err != nil {
		return 0, err
	}
	due := start.AddDate(0, 0, lockPeriodDays)
	diff := due.Sub(calendarDay(now)).Hours() / 24
	return int(math.Ceil(diff)), nil
}

// DaysRemaining is DaysRemainingRaw clamped to zero for display.
func DaysRemaining(stakedAt string, lockPeriodDays int, now time.Time) (int, error) {
	days, err := DaysRemainingRaw(stakedAt, lockPeriodDays, now)
	if err != nil {
		return 0, err
	}
	return max(days, 0), nil
}

// BonusWindowRemaining returns how many days of the bonus window are left.
// daysRemaining must be the raw signed value.
func BonusWindowRemaining(lockPeriodDays, daysRemaining int) int {
	elapsed := lockPeriodDays - daysRemaining
	return max(BonusWindowDays-elapsed, 0)
}

// Countdown holds the derived day-granularity facts of one stake.
type Countdown struct {
	DaysRemaining      int
	RawDaysRemaining   int
	BonusDaysRemaining int
	Matured            bool
}

// ComputeCountdown derives the countdown of a stake at now.
func ComputeCountdown(s types.StakeRecord, now time.Time) (Countdown, error) {
	raw, err := DaysRemainingRaw(s.StakedAt, s.LockPeriodDays, now)
	if err != nil {
		return Countdown{}, fmt.Errorf("stake %s: %w", s.ID, err)
	}
	return Countdown{
		DaysRemaining:      max(raw, 0),
		RawDaysRemaining:   raw,
		BonusDaysRemaining: BonusWindowRemaining(s.LockPeriodDays, raw),
		Matured:            raw <= 0,
	}, nil
}
