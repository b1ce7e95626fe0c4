package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/apperrors"
	"github.com/unxversal/pointgate/internal/pkg/logger"
	"github.com/unxversal/pointgate/internal/pkg/metrics"
)

// referral propagation walks at most this many ancestors.
const maxReferralDepth = 3

// BindReferral sets the immutable child -> parent edge. Self-reference and
// 2/3-hop cycles are rejected; longer cycles are not checked because the walk
// depth matches the payout depth, deeper structure is never visited.
func (e *Engine) BindReferral(child, parent common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if child == parent {
		return apperrors.NewReferralReject("self referral is not allowed")
	}
	if _, ok := e.st.Parent(child); ok {
		return apperrors.NewReferralReject("referral parent already bound")
	}
	if gp, ok := e.st.Parent(parent); ok {
		if gp == child {
			return apperrors.NewReferralReject("2-hop referral cycle rejected")
		}
		if ggp, ok := e.st.Parent(gp); ok && ggp == child {
			return apperrors.NewReferralReject("3-hop referral cycle rejected")
		}
	}

	e.st.SetParent(child, parent)
	if e.mirror != nil {
		if err := e.mirror.SaveReferral(context.Background(), child, parent); err != nil {
			logger.Warn("referral mirror write failed", "child", child.Hex(), "error", err)
		}
	}
	e.appendEvent(model.EngineEvent{
		Type: model.EventReferralBound,
		User: child.Hex(),
		Day:  DayID(e.clock.NowMs()),
	}, map[string]any{"parent": parent.Hex()})
	return nil
}

// ParentOf exposes the bound edge for read views.
func (e *Engine) ParentOf(child common.Address) (common.Address, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.Parent(child)
}

// propagateLocked credits a share of freshly finalized day points to up to
// three ancestors. Each ancestor is first synchronized to now (it may itself
// finalize a pending day), then credited subject to its weekly cap:
// cumulative referral earnings never exceed
// floor(week_points_own * week_cap_bps / 10000).
func (e *Engine) propagateLocked(child common.Address, dayPoints, nowDay int64, p *model.Params) {
	if dayPoints <= 0 {
		return
	}
	levels := [maxReferralDepth]int64{p.Referral.L1Bps, p.Referral.L2Bps, p.Referral.L3Bps}

	cur := child
	for lvl := 0; lvl < maxReferralDepth; lvl++ {
		parent, ok := e.st.Parent(cur)
		if !ok {
			return
		}
		cur = parent

		anc := e.st.GetOrCreate(parent)
		// 推荐人本周没有交易时，对齐到当前周后 own=0，因此 cap=0，
		// credit 会被整段截断 —— 这是有意的。
		e.advanceLocked(anc)

		raw := mulBps(dayPoints, levels[lvl])
		if raw <= 0 {
			metrics.ReferralCredits.WithLabelValues("zero").Inc()
			continue
		}

		cap := mulBps(anc.WeekPointsOwn, p.Referral.WeekCapBps)
		room := cap - anc.WeekReferralEarned
		if room < 0 {
			room = 0
		}
		credit := raw
		if credit > room {
			credit = room
			metrics.ReferralCredits.WithLabelValues("truncated").Inc()
		} else {
			metrics.ReferralCredits.WithLabelValues("applied").Inc()
		}
		if credit == 0 {
			continue
		}

		anc.WeekReferralEarned += credit
		anc.WeekPointsTotal = anc.WeekPointsOwn + anc.WeekReferralEarned
		e.commitWeekTotalLocked(anc, p)

		e.appendEvent(model.EngineEvent{
			Type:   model.EventReferralCredit,
			User:   parent.Hex(),
			Day:    nowDay,
			Week:   anc.WeekID,
			Points: credit,
		}, map[string]any{"child": child.Hex(), "level": lvl + 1})
	}
}
