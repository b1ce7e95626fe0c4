package engine

import (
	"math/big"

	"github.com/unxversal/pointgate/internal/model"
)

// WashPenalty 单日对手方集中度惩罚：当单一对手方的最大连续成交量
// 超过当日总量的 60% 时扣除的固定积分。
const (
	WashPenalty          int64 = 5_000
	washConcentrationNum int64 = 6
	washConcentrationDen int64 = 10
)

var weightScaleBig = big.NewInt(model.WeightScale)

// DayPoints computes a user's points for one finalized day from its raw
// accumulators and the configured factor weights.
//
//	points = wV*sqrt(volume) + wM*maker + wP*pnl + wF*funding
//	       + wV*(opt_taker + opt_maker) + wB*borrow + wL*lend + wQ*liq
//
// Each term is floor-divided by WeightScale individually. Volume passes
// through an integer square root for diminishing returns; everything else is
// linear. Intermediate products run through big.Int so a 1e6-scaled notional
// times a 1e6-scaled weight can never overflow, and every division truncates
// toward zero.
func DayPoints(u *model.UserState, w model.FactorWeights) int64 {
	sum := new(big.Int)

	addTerm(sum, w.Volume, Isqrt(u.Volume))
	addTerm(sum, w.Maker, u.MakerQuality)
	addTerm(sum, w.Pnl, u.PosPnl)
	addTerm(sum, w.Funding, u.FundingAbs)
	addTerm(sum, w.Volume, u.OptionTaker+u.OptionMaker)
	addTerm(sum, w.Borrow, u.BorrowInterest)
	addTerm(sum, w.Lend, u.LendQuality)
	addTerm(sum, w.Liquidation, u.LiquidationVol)

	points := sum.Int64()

	// Anti-abuse: a single counterparty dominating the day's volume looks
	// like wash trading between two self-controlled accounts.
	if washy(u.PeakCounterpartyVol, u.Volume) {
		points -= WashPenalty
	}
	if points < 0 {
		points = 0
	}
	return points
}

func addTerm(sum *big.Int, weight, value int64) {
	if weight == 0 || value == 0 {
		return
	}
	term := new(big.Int).Mul(big.NewInt(weight), big.NewInt(value))
	term.Quo(term, weightScaleBig)
	sum.Add(sum, term)
}

// washy reports whether peak/total strictly exceeds 60%, in integers.
func washy(peak, total int64) bool {
	if total <= 0 {
		return false
	}
	lhs := new(big.Int).Mul(big.NewInt(peak), big.NewInt(washConcentrationDen))
	rhs := new(big.Int).Mul(big.NewInt(total), big.NewInt(washConcentrationNum))
	return lhs.Cmp(rhs) > 0
}

// Isqrt returns floor(sqrt(n)) for non-negative n via Newton's method.
// Converges for every non-negative int64 input; negative inputs yield 0.
func Isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
