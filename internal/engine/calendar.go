// Package engine implements the points accounting core: lazy per-user
// day/week rollover, the weighted scoring function, capped multi-level
// referral crediting, and incremental top-K leaderboard and percentile
// histogram maintenance.
package engine

import "time"

// MsPerDay is the length of a calendar day in milliseconds.
const MsPerDay int64 = 86_400_000

// DaysPerWeek groups day ids into week ids.
const DaysPerWeek int64 = 7

// DayID converts a wall-clock millisecond timestamp into a calendar day index.
func DayID(nowMs int64) int64 {
	return nowMs / MsPerDay
}

// WeekID returns the week index for a day index.
func WeekID(dayID int64) int64 {
	return dayID / DaysPerWeek
}

// Clock is the wall-clock collaborator: a monotonic millisecond time source.
type Clock interface {
	NowMs() int64
}

// SystemClock reads the operating system clock.
type SystemClock struct{}

func (SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}
