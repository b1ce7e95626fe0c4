package engine

import (
	"github.com/unxversal/pointgate/internal/model"
)

// Admin parameter surface. Each setter copies the current value under the
// engine lock, swaps one section, validates, and installs the whole Params
// atomically. Concurrent setters serialize; a running operation sees either
// the old or the new set, never a partially applied mix.

func (e *Engine) SetWeights(w model.FactorWeights) error {
	return e.mutateParams(func(p *model.Params) {
		p.Weights = w
	})
}

func (e *Engine) SetReferralParams(r model.ReferralParams) error {
	return e.mutateParams(func(p *model.Params) {
		p.Referral = r
	})
}

func (e *Engine) SetFaucetParams(f model.FaucetParams) error {
	return e.mutateParams(func(p *model.Params) {
		p.Faucet = f
	})
}

// SetTierThresholds replaces the thresholds and, when budgets is non-nil,
// the per-tier loss budgets in the same swap. Changing the tier count
// requires both, since validation pins their lengths together.
func (e *Engine) SetTierThresholds(thresholds, budgets []int64) error {
	return e.mutateParams(func(p *model.Params) {
		p.TierThresholds = thresholds
		if budgets != nil {
			p.Faucet.TierLossBudgets = budgets
		}
	})
}

// SetLeaderboardParams replaces K and the histogram edges. Weeks already
// materialized keep the shape they were created with; the new values apply
// from the next untouched week on.
func (e *Engine) SetLeaderboardParams(k int, edges []int64) error {
	return e.mutateParams(func(p *model.Params) {
		p.LeaderboardK = k
		p.HistBucketEdges = edges
	})
}
