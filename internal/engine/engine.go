package engine

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/logger"
	"github.com/unxversal/pointgate/internal/pkg/metrics"
)

// FaucetService is the external token faucet collaborator. It enforces its
// own supply/address caps; the engine only gates whether to call it.
type FaucetService interface {
	Mint(ctx context.Context, user common.Address, amount int64) error
}

// Notifier receives engine signals after they commit. Implementations must
// not block.
type Notifier interface {
	NotifyDayFinalized(ev model.DayFinalizedEvent)
	NotifyTierChange(ev model.TierChangeEvent)
}

// Mirror receives write-behind copies of committed state (Postgres/Redis
// repositories). Failures are logged and never abort an operation.
// LoadWeekPoints is the one read path: it serves snapshot queries for weeks
// that predate this process and were never rebuilt in memory.
type Mirror interface {
	SaveWeekPoints(ctx context.Context, week int64, user common.Address, total int64) error
	LoadWeekPoints(ctx context.Context, week int64, user common.Address) (int64, error)
	SaveUserState(ctx context.Context, u *model.UserState) error
	SaveReferral(ctx context.Context, child, parent common.Address) error
	AppendEvent(ctx context.Context, ev model.EngineEvent) error
}

// Engine 是积分引擎本体。所有写操作（hook、绑定、faucet、admin）都在引擎锁
// 内作为一个原子单元执行：rollover 级联要么全部生效，要么完全不发生。
// 读视图共享读锁，只能观察到已提交的状态。
type Engine struct {
	mu     sync.RWMutex
	params atomic.Pointer[model.Params]

	st       *Store
	clock    Clock
	faucet   FaucetService
	notifier Notifier
	mirror   Mirror
}

func New(p model.Params, clock Clock, faucet FaucetService, notifier Notifier, mirror Mirror) *Engine {
	e := &Engine{
		st:       NewStore(),
		clock:    clock,
		faucet:   faucet,
		notifier: notifier,
		mirror:   mirror,
	}
	e.params.Store(&p)
	return e
}

// Params returns the current parameter value. The pointer is never mutated;
// admin updates swap in a whole new value.
func (e *Engine) Params() *model.Params {
	return e.params.Load()
}

// ReplaceParams validates and atomically installs a new parameter set. It
// takes the engine lock, so a swap never lands in the middle of a running
// cascade and concurrent replacements serialize.
func (e *Engine) ReplaceParams(p model.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replaceParamsLocked(p)
}

func (e *Engine) replaceParamsLocked(p model.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params.Store(&p)
	e.appendEvent(model.EngineEvent{
		Type: model.EventParamsUpdated,
		Day:  DayID(e.clock.NowMs()),
	}, map[string]any{"leaderboard_k": p.LeaderboardK})
	return nil
}

// mutateParams read-copy-updates the current value under the engine lock.
// 分段 setter 必须走这里：两个并发更新各改一段时，后写的不能带着旧的另一段
// 覆盖先写的。
func (e *Engine) mutateParams(mut func(*model.Params)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := *e.params.Load()
	mut(&p)
	return e.replaceParamsLocked(p)
}

// ─── Hook entry points ───────────────────────────────────────────────

// TradeFill accumulates perp/futures/dex taker volume and maker quality,
// and feeds the same-counterparty concentration counters.
func (e *Engine) TradeFill(user, counterparty common.Address, notional int64, isMaker bool, makerImproveBps int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	u.Volume += notional
	if isMaker && makerImproveBps > 0 {
		u.MakerQuality += mulBps(notional, makerImproveBps)
	}

	// 同一对手方的连续成交量：换了对手方就重新起算。
	if u.LastCounterparty == counterparty {
		u.RunCounterpartyVol += notional
	} else {
		u.LastCounterparty = counterparty
		u.RunCounterpartyVol = notional
	}
	if u.RunCounterpartyVol > u.PeakCounterpartyVol {
		u.PeakCounterpartyVol = u.RunCounterpartyVol
	}

	e.saveUser(u)
}

// RealizedPnl accumulates positive realized P&L for scoring and realized
// loss for the faucet budget. Crossing the tier loss budget arms the faucet
// cooldown immediately.
func (e *Engine) RealizedPnl(user common.Address, gain, loss int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	if gain > 0 {
		u.PosPnl += gain
	}
	if loss > 0 {
		u.RealizedLossToday += loss
		p := e.Params()
		budget := p.Faucet.TierLossBudgets[clampTier(u.Tier, len(p.Faucet.TierLossBudgets))]
		if u.RealizedLossToday >= budget {
			u.CooldownUntilDay = u.DayID + p.Faucet.CooldownDays
		}
	}
	e.saveUser(u)
}

// Funding accumulates the magnitude of a signed funding payment.
func (e *Engine) Funding(user common.Address, amount int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	if amount < 0 {
		amount = -amount
	}
	u.FundingAbs += amount
	e.saveUser(u)
}

// OptionFill credits the premium to both sides of an option trade.
func (e *Engine) OptionFill(buyer, maker common.Address, premium int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.rollLocked(buyer)
	b.OptionTaker += premium
	e.saveUser(b)

	m := e.rollLocked(maker)
	m.OptionMaker += premium
	e.saveUser(m)
}

// BorrowOpen accumulates utilization-weighted estimated interest.
func (e *Engine) BorrowOpen(user common.Address, borrowed, utilBps, estInterest int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	u.BorrowInterest += mulBps(estInterest, utilBps)
	e.saveUser(u)
}

// InterestRepay accumulates interest actually paid.
func (e *Engine) InterestRepay(user common.Address, interestPaid int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	u.BorrowInterest += interestPaid
	e.saveUser(u)
}

// SupplyEvent rewards supplying liquidity above the utilization kink; below
// or at the kink it is a no-op (after rollover).
func (e *Engine) SupplyEvent(user common.Address, deltaSupplied, utilBps, kinkBps int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	if utilBps > kinkBps && deltaSupplied > 0 {
		u.LendQuality += mulBps(deltaSupplied, utilBps-kinkBps)
	}
	e.saveUser(u)
}

// Liquidation accumulates debt repaid by a liquidator.
func (e *Engine) Liquidation(user common.Address, debtRepaid int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.rollLocked(user)
	u.LiquidationVol += debtRepaid
	e.saveUser(u)
}

// ─── Rollover cascade ────────────────────────────────────────────────

// rollLocked loads (or creates) the record and synchronizes it to now,
// running the full finalization cascade when a boundary was crossed.
func (e *Engine) rollLocked(addr common.Address) *model.UserState {
	u := e.st.GetOrCreate(addr)
	e.advanceLocked(u)
	return u
}

// advanceLocked runs Advance and, on day finalization, the cascade: referral
// propagation first, then the user's own snapshot/board/histogram commit,
// then notifications. Re-entrant through referral ancestors; terminates
// because Advance finalizes at most once per day per user.
func (e *Engine) advanceLocked(u *model.UserState) {
	nowDay := DayID(e.clock.NowMs())
	p := e.Params()

	res := Advance(u, nowDay, p)
	if !res.DayFinalized {
		return
	}
	metrics.DayFinalizations.Inc()

	e.propagateLocked(u.Address, res.DayPoints, nowDay, p)
	e.commitWeekTotalLocked(u, p)

	e.appendEvent(model.EngineEvent{
		Type:   model.EventDayFinalized,
		User:   u.Address.Hex(),
		Day:    res.FinalizedDay,
		Week:   u.WeekID,
		Points: res.DayPoints,
	}, nil)

	if e.notifier != nil {
		e.notifier.NotifyDayFinalized(model.DayFinalizedEvent{
			User:            u.Address.Hex(),
			Day:             res.FinalizedDay,
			Week:            u.WeekID,
			DayPoints:       res.DayPoints,
			WeekPointsTotal: u.WeekPointsTotal,
			SevenDaySum:     u.RingSum,
		})
		if res.TierChanged {
			metrics.TierChanges.Inc()
			e.notifier.NotifyTierChange(model.TierChangeEvent{
				User:    u.Address.Hex(),
				Day:     nowDay,
				OldTier: res.OldTier,
				NewTier: res.NewTier,
			})
		}
	} else if res.TierChanged {
		metrics.TierChanges.Inc()
	}
}

// commitWeekTotalLocked pushes a user's current week_points_total into the
// per-week snapshot, the leaderboard and the histogram, and reseats the
// tracked bucket. The caller passes the params snapshot its cascade started
// with; one atomic unit of work never observes two config values.
func (e *Engine) commitWeekTotalLocked(u *model.UserState, p *model.Params) {
	week := u.WeekID

	e.st.SetWeekPoints(week, u.Address, u.WeekPointsTotal)
	e.st.BoardFor(week, p.LeaderboardK).Update(u.Address, u.WeekPointsTotal)

	h := e.st.HistFor(week, p.HistBucketEdges)
	hasOld := u.WeekCounted && u.WeekBucketFor == week
	u.WeekBucketIdx = h.Move(u.WeekBucketIdx, hasOld, u.WeekPointsTotal)
	u.WeekBucketFor = week
	u.WeekCounted = true

	if e.mirror != nil {
		if err := e.mirror.SaveWeekPoints(context.Background(), week, u.Address, u.WeekPointsTotal); err != nil {
			logger.Warn("week points mirror write failed", "user", u.Address.Hex(), "week", week, "error", err)
		}
	}
}

func (e *Engine) saveUser(u *model.UserState) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.SaveUserState(context.Background(), u); err != nil {
		logger.Warn("user state mirror write failed", "user", u.Address.Hex(), "error", err)
	}
}

func (e *Engine) appendEvent(ev model.EngineEvent, detail map[string]any) {
	if e.mirror == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now().UTC()
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err == nil {
			ev.Detail = string(raw)
		}
	}
	if err := e.mirror.AppendEvent(context.Background(), ev); err != nil {
		logger.Warn("event log append failed", "type", ev.Type, "error", err)
	}
}

// mulBps floors value * bps / 10000. The wide path only engages when the
// direct product would overflow (~9e14 USD at 10000 bps).
func mulBps(value, bps int64) int64 {
	if value <= 0 || bps <= 0 {
		return 0
	}
	if value <= (1<<62)/bps {
		return value * bps / model.BpsDenom
	}
	prod := new(big.Int).Mul(big.NewInt(value), big.NewInt(bps))
	return prod.Quo(prod, big.NewInt(model.BpsDenom)).Int64()
}

func clampTier(tier, n int) int {
	if tier < 0 {
		return 0
	}
	if tier >= n {
		return n - 1
	}
	return tier
}
