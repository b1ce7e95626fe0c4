package engine

import (
	"sync"
	"testing"

	"github.com/unxversal/pointgate/internal/model"
)

func TestSetWeightsSwapsAtomically(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	user := addr(1)

	e.RealizedPnl(user, 1_000, 0) // day 700 under pnl weight 1.0

	if err := e.SetWeights(model.FactorWeights{Pnl: 500_000}); err != nil {
		t.Fatal(err)
	}

	// Finalization after the swap scores with the new weight.
	clock.setDay(701)
	e.Funding(user, 0)
	u, _ := e.st.Get(user)
	if u.WeekPointsOwn != 500 {
		t.Fatalf("week own = %d, want 500 under halved weight", u.WeekPointsOwn)
	}
}

func TestConcurrentSettersKeepBothSections(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// Two writers hammer different sections. Read-copy-update outside the
	// lock would let the later store carry the other section's stale copy;
	// serialized setters must end with both writers' final values installed.
	const rounds = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := int64(1); i <= rounds; i++ {
			if err := e.SetWeights(model.FactorWeights{Pnl: i}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := int64(1); i <= rounds; i++ {
			r := testParams().Referral
			r.L1Bps = i
			if err := e.SetReferralParams(r); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	p := e.Params()
	if p.Weights.Pnl != rounds {
		t.Fatalf("weights writer lost: pnl=%d, want %d", p.Weights.Pnl, int64(rounds))
	}
	if p.Referral.L1Bps != rounds {
		t.Fatalf("referral writer lost: l1_bps=%d, want %d", p.Referral.L1Bps, int64(rounds))
	}
}

func TestSetTierThresholdsValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// Thresholds must start at 0.
	if err := e.SetTierThresholds([]int64{10, 20, 30}, nil); err == nil {
		t.Fatal("thresholds[0] != 0 accepted")
	}
	// Non-decreasing.
	if err := e.SetTierThresholds([]int64{0, 50, 40}, nil); err == nil {
		t.Fatal("decreasing thresholds accepted")
	}
	// Changing the tier count without budgets breaks the length pairing.
	if err := e.SetTierThresholds([]int64{0, 10}, nil); err == nil {
		t.Fatal("tier count change without budgets accepted")
	}
	// With matching budgets it goes through.
	if err := e.SetTierThresholds([]int64{0, 10}, []int64{100, 200}); err != nil {
		t.Fatalf("valid tier update rejected: %v", err)
	}
	if got := len(e.Params().TierThresholds); got != 2 {
		t.Fatalf("tier count = %d, want 2", got)
	}
}

func TestSetLeaderboardParamsKeepsExistingWeeks(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	e.RealizedPnl(addr(1), 1_000, 0)
	clock.setDay(701)
	e.Funding(addr(1), 0) // materializes week 100's board with K=3

	if err := e.SetLeaderboardParams(1, []int64{0, 50}); err != nil {
		t.Fatal(err)
	}

	b, ok := e.st.Board(100)
	if !ok || b.K != 3 {
		t.Fatalf("existing week board K changed: %+v", b)
	}

	// A week materialized after the swap uses the new K.
	clock.setDay(707)
	e.RealizedPnl(addr(1), 1, 0)
	clock.setDay(708)
	e.Funding(addr(1), 0)
	b, ok = e.st.Board(101)
	if !ok || b.K != 1 {
		t.Fatalf("new week board K = %+v, want K=1", b)
	}
}

func TestReplaceParamsRejectsInvalid(t *testing.T) {
	e, _, _ := newTestEngine(t)

	p := testParams()
	p.LeaderboardK = 0
	if err := e.ReplaceParams(p); err == nil {
		t.Fatal("K=0 accepted")
	}

	p = testParams()
	p.HistBucketEdges = []int64{0, 100, 100}
	if err := e.ReplaceParams(p); err == nil {
		t.Fatal("non-increasing edges accepted")
	}

	// The installed params are untouched after rejections.
	if e.Params().LeaderboardK != 3 {
		t.Fatalf("params mutated by rejected update: K=%d", e.Params().LeaderboardK)
	}
}
