package engine

import (
	"testing"

	"github.com/unxversal/pointgate/internal/model"
)

func TestIsqrt(t *testing.T) {
	cases := []struct {
		in, want int64
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{99, 9},
		{100, 10},
		{1_000_000_000, 31622},
		{-5, 0},
	}
	for _, c := range cases {
		if got := Isqrt(c.in); got != c.want {
			t.Fatalf("Isqrt(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDayPointsVolumeOnly(t *testing.T) {
	// 1e6 USD of volume at weight 0.23:
	// floor(sqrt(1_000_000_000) * 230000 / 1e6) = floor(31622 * 0.23) = 7273
	u := &model.UserState{Volume: 1_000_000_000}
	w := model.FactorWeights{Volume: 230_000}

	if got := DayPoints(u, w); got != 7273 {
		t.Fatalf("day points = %d, want 7273", got)
	}
}

func TestDayPointsLinearFactors(t *testing.T) {
	u := &model.UserState{
		PosPnl:         2_000,
		FundingAbs:     1_000,
		BorrowInterest: 500,
		LendQuality:    400,
		LiquidationVol: 300,
		MakerQuality:   100,
	}
	w := model.FactorWeights{
		Maker:       1_000_000,
		Pnl:         500_000,
		Funding:     1_000_000,
		Borrow:      1_000_000,
		Lend:        1_000_000,
		Liquidation: 1_000_000,
	}
	// 100 + 1000 + 1000 + 500 + 400 + 300 = 3300
	if got := DayPoints(u, w); got != 3300 {
		t.Fatalf("day points = %d, want 3300", got)
	}
}

func TestDayPointsOptionPremiumSharesVolumeWeight(t *testing.T) {
	u := &model.UserState{OptionTaker: 600, OptionMaker: 400}
	w := model.FactorWeights{Volume: 500_000}
	// (600+400) * 0.5 = 500; volume itself is zero so no sqrt term.
	if got := DayPoints(u, w); got != 500 {
		t.Fatalf("day points = %d, want 500", got)
	}
}

func TestWashTradePenalty(t *testing.T) {
	w := model.FactorWeights{Pnl: 1_000_000}

	// 61% concentration: penalty applies.
	u := &model.UserState{PosPnl: 6_000, Volume: 100, PeakCounterpartyVol: 61}
	if got := DayPoints(u, w); got != 1_000 {
		t.Fatalf("penalized points = %d, want 1000", got)
	}

	// Exactly 60% does not exceed the threshold.
	u = &model.UserState{PosPnl: 6_000, Volume: 100, PeakCounterpartyVol: 60}
	if got := DayPoints(u, w); got != 6_000 {
		t.Fatalf("unpenalized points = %d, want 6000", got)
	}

	// Penalty floors at zero, never goes negative.
	u = &model.UserState{PosPnl: 10, Volume: 100, PeakCounterpartyVol: 90}
	if got := DayPoints(u, w); got != 0 {
		t.Fatalf("floored points = %d, want 0", got)
	}
}

func TestDayPointsZeroActivity(t *testing.T) {
	u := &model.UserState{}
	w := model.FactorWeights{Volume: 230_000, Pnl: 500_000}
	if got := DayPoints(u, w); got != 0 {
		t.Fatalf("zero activity scored %d points", got)
	}
}
