package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// RingDays is the size of the rolling daily-points window.
const RingDays = 7

// DayNever 哨兵值：该账户从未结算过任何一天。
// 第一次活动写入之前 rollover 必须先跑一次，保证积分永远按完整的一天计算。
const DayNever int64 = -1

// UserState is the durable per-identity record. Created lazily on first
// activity, never deleted. All monetary fields are 1e6-scaled USD.
type UserState struct {
	Address common.Address `json:"address"`

	// Calendar position the record is synchronized to.
	DayID  int64 `json:"day_id"`
	WeekID int64 `json:"week_id"`

	// Raw activity accumulators for the in-progress day. Zeroed on day
	// finalization.
	Volume          int64 `json:"volume"`
	MakerQuality    int64 `json:"maker_quality"`
	PosPnl          int64 `json:"pos_pnl"`
	FundingAbs      int64 `json:"funding_abs"`
	OptionTaker     int64 `json:"option_taker"`
	OptionMaker     int64 `json:"option_maker"`
	BorrowInterest  int64 `json:"borrow_interest"` // interest x utilization
	LendQuality     int64 `json:"lend_quality"`
	LiquidationVol  int64 `json:"liquidation_vol"`

	// Anti-abuse counters: the longest same-counterparty volume run of the
	// day versus total volume drives the wash-trading penalty.
	RunCounterpartyVol  int64          `json:"run_counterparty_vol"`
	PeakCounterpartyVol int64          `json:"peak_counterparty_vol"`
	LastCounterparty    common.Address `json:"last_counterparty"`

	// Faucet state.
	MintedToday       int64 `json:"minted_today"`
	CooldownUntilDay  int64 `json:"cooldown_until_day"`
	RealizedLossToday int64 `json:"realized_loss_today"`

	// Ring holds the last 7 finalized days' points, indexed day_id mod 7;
	// a slot is overwritten exactly 7 days later. RingSum always equals the
	// sum of the slots.
	Ring    [RingDays]int64 `json:"ring"`
	RingSum int64           `json:"ring_sum"`

	Tier int `json:"tier"`

	// Weekly aggregates. WeekPointsTotal == WeekPointsOwn + WeekReferralEarned.
	WeekPointsOwn      int64 `json:"week_points_own"`
	WeekReferralEarned int64 `json:"week_referral_earned"`
	WeekPointsTotal    int64 `json:"week_points_total"`

	// Histogram placement for exact decrement-then-increment on updates.
	// WeekCounted is false until the first finalization of the week places
	// the user in a bucket.
	WeekBucketIdx int   `json:"week_bucket_idx"`
	WeekBucketFor int64 `json:"week_bucket_for"`
	WeekCounted   bool  `json:"week_counted"`

	AllTimePoints int64 `json:"all_time_points"`
}

// NewUserState returns a fresh record positioned at the sentinel day so the
// first rollover runs before the first activity is scored.
func NewUserState(addr common.Address) *UserState {
	return &UserState{
		Address: addr,
		DayID:   DayNever,
		WeekID:  -1,
	}
}

