package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
)

// RolloverResult describes what Advance did to a record.
type RolloverResult struct {
	WeekReset    bool
	DayFinalized bool
	// FinalizedDay is the day id whose accumulators were scored (the
	// record's previous day), valid when DayFinalized.
	FinalizedDay int64
	DayPoints    int64
	TierChanged  bool
	OldTier      int
	NewTier      int
}

// Advance synchronizes a user record to the current day and week. It is the
// pure state transition of the rollover engine: every write path calls it
// before applying its delta, so finalization runs at most once per day per
// user no matter how many hook calls land that day.
//
// 顺序严格遵循：先周重置，再日终结算，最后才允许调用方追加新的累计值。
// 推荐人 credit 的传播与榜单/直方图写入属于引擎级联，不在这里做。
func Advance(u *model.UserState, nowDay int64, p *model.Params) RolloverResult {
	var res RolloverResult
	nowWeek := WeekID(nowDay)

	// 1. Week boundary: weekly aggregates restart from zero. The user is not
	// yet placed in the new week's histogram.
	if u.WeekID != nowWeek {
		u.WeekPointsOwn = 0
		u.WeekReferralEarned = 0
		u.WeekPointsTotal = 0
		u.WeekID = nowWeek
		u.WeekBucketIdx = 0
		u.WeekBucketFor = nowWeek
		u.WeekCounted = false
		res.WeekReset = true
	}

	// 2. Day boundary (including the very first write: the sentinel day
	// counts as "never finalized"). Score the accumulators collected during
	// the previous day over its full window.
	if u.DayID != nowDay {
		finalized := u.DayID
		points := DayPoints(u, p.Weights)

		// Ring buffer: the finalized day's slot is day_id mod 7, so a slot is
		// overwritten exactly 7 days later. Evict the old value, then insert.
		// The sentinel day normalizes to slot 6 and inserts 0, which is inert.
		slot := int(((finalized % model.RingDays) + model.RingDays) % model.RingDays)
		evicted := u.Ring[slot]
		u.Ring[slot] = points
		u.RingSum -= evicted
		if u.RingSum < 0 {
			// Guard against underflow from any prior inconsistency.
			u.RingSum = 0
		}
		u.RingSum += points

		u.WeekPointsOwn += points
		u.AllTimePoints += points
		u.WeekPointsTotal = u.WeekPointsOwn + u.WeekReferralEarned

		oldTier := u.Tier
		u.Tier = p.TierFor(u.RingSum)
		if u.Tier != oldTier {
			res.TierChanged = true
			res.OldTier = oldTier
			res.NewTier = u.Tier
		}

		resetDailyAccumulators(u)
		u.DayID = nowDay

		res.DayFinalized = true
		res.FinalizedDay = finalized
		res.DayPoints = points
	}

	return res
}

func resetDailyAccumulators(u *model.UserState) {
	u.Volume = 0
	u.MakerQuality = 0
	u.PosPnl = 0
	u.FundingAbs = 0
	u.OptionTaker = 0
	u.OptionMaker = 0
	u.BorrowInterest = 0
	u.LendQuality = 0
	u.LiquidationVol = 0
	u.RunCounterpartyVol = 0
	u.PeakCounterpartyVol = 0
	u.LastCounterparty = common.Address{}
	u.MintedToday = 0
	u.RealizedLossToday = 0
}
