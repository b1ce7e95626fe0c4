package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
)

// Startup restore from a durable mirror. Must run before the server accepts
// traffic; it rebuilds the current-week board and histogram from the restored
// week totals. Older weeks are served from the mirrors directly.

// Restore seeds one user record from its mirrored snapshot.
func (e *Engine) Restore(u *model.UserState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := *u
	e.st.Put(&cp)

	if !cp.WeekCounted {
		return
	}
	p := e.Params()
	week := cp.WeekBucketFor
	e.st.SetWeekPoints(week, cp.Address, cp.WeekPointsTotal)
	e.st.BoardFor(week, p.LeaderboardK).Update(cp.Address, cp.WeekPointsTotal)
	// 内存里的直方图是新建的，所以重新插入而不是搬桶
	h := e.st.HistFor(week, p.HistBucketEdges)
	cp.WeekBucketIdx = h.Move(cp.WeekBucketIdx, false, cp.WeekPointsTotal)
}

// RestoreParent seeds one referral edge from the mirror.
func (e *Engine) RestoreParent(child, parent common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.SetParent(child, parent)
}
