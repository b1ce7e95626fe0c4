package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/logger"
)

// Read views observe committed state only; they share the engine read lock
// and never trigger rollover.

// CurrentDay reads the clock and returns today's day index.
func (e *Engine) CurrentDay() int64 {
	return DayID(e.clock.NowMs())
}

// CurrentWeek reads the clock and returns the observing week index.
func (e *Engine) CurrentWeek() int64 {
	return WeekID(DayID(e.clock.NowMs()))
}

// WeekPoints returns the snapshotted week_points_total for (user, week).
// Weeks absent from the in-memory store (they predate this process) are
// served from the durable mirror; a mirror read failure reads as 0.
func (e *Engine) WeekPoints(user common.Address, week int64) int64 {
	e.mu.RLock()
	if e.mirror == nil || e.st.HasWeek(week) {
		defer e.mu.RUnlock()
		return e.st.WeekPoints(week, user)
	}
	e.mu.RUnlock()

	points, err := e.mirror.LoadWeekPoints(context.Background(), week, user)
	if err != nil {
		logger.Warn("week points mirror read failed", "user", user.Hex(), "week", week, "error", err)
		return 0
	}
	return points
}

// TotalPoints returns a user's all-time points (0 for unknown users).
func (e *Engine) TotalPoints(user common.Address) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if u, ok := e.st.Get(user); ok {
		return u.AllTimePoints
	}
	return 0
}

// TopK returns the week's exact leaderboard as (user, points) entries in
// rank order.
func (e *Engine) TopK(week int64) []model.LeaderboardEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, ok := e.st.Board(week)
	if !ok {
		return nil
	}
	entries := make([]model.LeaderboardEntry, b.Len())
	for i := range entries {
		entries[i] = model.LeaderboardEntry{
			Rank:   i + 1,
			User:   b.Users[i].Hex(),
			Points: b.Points[i],
		}
	}
	return entries
}

// Rank returns the user's 1-based rank within the week's top-K; ok is false
// when the user is outside the board.
func (e *Engine) Rank(user common.Address, week int64) (rank int, points int64, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	b, found := e.st.Board(week)
	if !found {
		return 0, 0, false
	}
	return b.Rank(user)
}

// PercentileBps approximates the user's standing in a week from the bucket
// histogram: floor(10000 * users_in_strictly_lower_buckets / total).
func (e *Engine) PercentileBps(user common.Address, week int64) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h, ok := e.st.Hist(week)
	if !ok {
		return 0
	}
	bucket := h.BucketFor(e.st.WeekPoints(week, user))
	return h.PercentileBps(bucket)
}

// UserView returns the public projection of a record; ok is false for
// addresses that never had activity.
func (e *Engine) UserView(user common.Address) (model.UserView, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	u, ok := e.st.Get(user)
	if !ok {
		return model.UserView{}, false
	}
	return model.UserView{
		User:               u.Address.Hex(),
		Day:                u.DayID,
		Week:               u.WeekID,
		Tier:               u.Tier,
		SevenDaySum:        u.RingSum,
		WeekPointsOwn:      u.WeekPointsOwn,
		WeekReferralEarned: u.WeekReferralEarned,
		WeekPointsTotal:    u.WeekPointsTotal,
		AllTimePoints:      u.AllTimePoints,
	}, true
}
