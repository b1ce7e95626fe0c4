package engine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/apperrors"
	"github.com/unxversal/pointgate/internal/pkg/metrics"
)

// FaucetClaim gates a mint request by cooldown, per-day cap and the current
// tier's realized-loss budget, then delegates the actual mint to the faucet
// collaborator. Gate 顺序参考风控检查的惯例：先便宜的本地检查，最后才调外部服务。
// Any rejection aborts with no state change beyond the rollover itself.
func (e *Engine) FaucetClaim(ctx context.Context, user common.Address, amount int64) (minted int64, err error) {
	if amount <= 0 {
		return 0, apperrors.NewInvalidRequest("claim amount must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	p := e.Params()
	today := u.DayID

	// 1. Cooldown
	if today < u.CooldownUntilDay {
		metrics.FaucetRejects.WithLabelValues("cooldown").Inc()
		return 0, apperrors.NewFaucetReject(fmt.Sprintf(
			"faucet cooldown active until day %d", u.CooldownUntilDay))
	}

	// 2. Daily mint cap
	if u.MintedToday+amount > p.Faucet.DayMintCap {
		metrics.FaucetRejects.WithLabelValues("day_cap").Inc()
		return 0, apperrors.NewFaucetReject(fmt.Sprintf(
			"daily mint cap exceeded: minted %d + claim %d > cap %d",
			u.MintedToday, amount, p.Faucet.DayMintCap))
	}

	// 3. Tier loss budget
	budget := p.Faucet.TierLossBudgets[clampTier(u.Tier, len(p.Faucet.TierLossBudgets))]
	if u.RealizedLossToday >= budget {
		metrics.FaucetRejects.WithLabelValues("loss_budget").Inc()
		return 0, apperrors.NewFaucetReject(fmt.Sprintf(
			"realized loss %d has consumed tier %d budget %d",
			u.RealizedLossToday, u.Tier, budget))
	}

	// 4. Delegate the mint before mutating any faucet state: the collaborator
	// result is fully applied or the whole claim fails.
	if e.faucet != nil {
		if err := e.faucet.Mint(ctx, user, amount); err != nil {
			metrics.FaucetRejects.WithLabelValues("mint_failed").Inc()
			return 0, apperrors.Wrap(err)
		}
	}

	u.MintedToday += amount
	if u.RealizedLossToday >= budget {
		u.CooldownUntilDay = today + p.Faucet.CooldownDays
	}
	e.saveUser(u)

	e.appendEvent(model.EngineEvent{
		Type:   model.EventFaucetClaim,
		User:   user.Hex(),
		Day:    today,
		Week:   u.WeekID,
		Points: 0,
	}, map[string]any{"amount": amount, "minted_today": u.MintedToday})

	return u.MintedToday, nil
}
