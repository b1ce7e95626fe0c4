package model

import "fmt"

// Fixed-point scales shared by every component.
const (
	// WeightScale is the denominator for factor weights (1e6-scaled).
	WeightScale = 1_000_000
	// UsdScale is the fixed-point scale of all monetary inputs (1e6 = 1 USD).
	UsdScale = 1_000_000
	// BpsDenom is the basis-point denominator.
	BpsDenom = 10_000
)

// FactorWeights 积分公式的七个因子权重 (1e6-scaled)。
// Volume 权重同时作用于期权 taker/maker 权利金。
type FactorWeights struct {
	Volume      int64 `json:"volume" mapstructure:"volume"`
	Maker       int64 `json:"maker" mapstructure:"maker"`
	Pnl         int64 `json:"pnl" mapstructure:"pnl"`
	Funding     int64 `json:"funding" mapstructure:"funding"`
	Borrow      int64 `json:"borrow" mapstructure:"borrow"`
	Lend        int64 `json:"lend" mapstructure:"lend"`
	Liquidation int64 `json:"liquidation" mapstructure:"liquidation"`
}

// ReferralParams controls multi-level referral crediting.
type ReferralParams struct {
	L1Bps int64 `json:"l1_bps" mapstructure:"l1_bps"`
	L2Bps int64 `json:"l2_bps" mapstructure:"l2_bps"`
	L3Bps int64 `json:"l3_bps" mapstructure:"l3_bps"`
	// WeekCapBps caps an ancestor's cumulative weekly referral earnings at
	// floor(week_points_own * WeekCapBps / 10000).
	WeekCapBps int64 `json:"week_cap_bps" mapstructure:"week_cap_bps"`
}

// FaucetParams gates the token faucet.
type FaucetParams struct {
	DayMintCap int64 `json:"day_mint_cap" mapstructure:"day_mint_cap"` // 1e6-scaled tokens per user per day
	// TierLossBudgets is indexed by tier; length defines the tier count and
	// must match len(TierThresholds).
	TierLossBudgets []int64 `json:"tier_loss_budgets" mapstructure:"tier_loss_budgets"`
	CooldownDays    int64   `json:"cooldown_days" mapstructure:"cooldown_days"`
}

// Params is the complete engine parameter set. Admin mutation replaces the
// whole value atomically; nothing ever patches a field in place.
type Params struct {
	Weights  FactorWeights  `json:"weights" mapstructure:"weights"`
	Referral ReferralParams `json:"referral" mapstructure:"referral"`
	Faucet   FaucetParams   `json:"faucet" mapstructure:"faucet"`
	// TierThresholds over the 7-day rolling point sum, non-decreasing,
	// index 0 must be 0 so the baseline tier is always reachable.
	TierThresholds []int64 `json:"tier_thresholds" mapstructure:"tier_thresholds"`
	// LeaderboardK is the exact top-K size per week.
	LeaderboardK int `json:"leaderboard_k" mapstructure:"leaderboard_k"`
	// HistBucketEdges are strictly increasing bucket lower-edges.
	HistBucketEdges []int64 `json:"hist_bucket_edges" mapstructure:"hist_bucket_edges"`
}

// Validate rejects parameter sets that would corrupt engine invariants.
func (p *Params) Validate() error {
	if len(p.TierThresholds) == 0 {
		return fmt.Errorf("tier_thresholds must not be empty")
	}
	if p.TierThresholds[0] != 0 {
		return fmt.Errorf("tier_thresholds[0] must be 0, got %d", p.TierThresholds[0])
	}
	for i := 1; i < len(p.TierThresholds); i++ {
		if p.TierThresholds[i] < p.TierThresholds[i-1] {
			return fmt.Errorf("tier_thresholds must be non-decreasing at index %d", i)
		}
	}
	if len(p.Faucet.TierLossBudgets) != len(p.TierThresholds) {
		return fmt.Errorf("tier_loss_budgets length %d != tier count %d",
			len(p.Faucet.TierLossBudgets), len(p.TierThresholds))
	}
	if p.Faucet.CooldownDays < 0 || p.Faucet.DayMintCap < 0 {
		return fmt.Errorf("faucet params must be non-negative")
	}
	for _, b := range []int64{p.Referral.L1Bps, p.Referral.L2Bps, p.Referral.L3Bps, p.Referral.WeekCapBps} {
		if b < 0 {
			return fmt.Errorf("referral bps must be non-negative")
		}
	}
	if p.LeaderboardK < 1 {
		return fmt.Errorf("leaderboard_k must be >= 1, got %d", p.LeaderboardK)
	}
	if len(p.HistBucketEdges) == 0 {
		return fmt.Errorf("hist_bucket_edges must not be empty")
	}
	for i := 1; i < len(p.HistBucketEdges); i++ {
		if p.HistBucketEdges[i] <= p.HistBucketEdges[i-1] {
			return fmt.Errorf("hist_bucket_edges must be strictly increasing at index %d", i)
		}
	}
	return nil
}

// TierFor returns the highest tier whose threshold is <= the 7-day sum.
func (p *Params) TierFor(sevenDaySum int64) int {
	tier := 0
	for i, th := range p.TierThresholds {
		if th <= sevenDaySum {
			tier = i
		}
	}
	return tier
}
