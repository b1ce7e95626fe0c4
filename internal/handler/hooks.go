package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/metrics"
)

// HookHandler receives activity events from the upstream matching engines
// (perps, options, lending, liquidation). Every hook is fire-and-forget from
// the caller's side: a 200 means the activity is accumulated into today's
// window.
type HookHandler struct {
	eng *engine.Engine
}

func NewHookHandler(eng *engine.Engine) *HookHandler {
	return &HookHandler{eng: eng}
}

func hookOK(c *gin.Context, hook string) {
	metrics.HooksTotal.WithLabelValues(hook, "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func hookErr(c *gin.Context, hook string, err error) {
	metrics.HooksTotal.WithLabelValues(hook, "rejected").Inc()
	c.Error(err)
}

func (h *HookHandler) TradeFill(c *gin.Context) {
	var req model.TradeFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "trade", err)
		return
	}
	counterparty, err := parseAddress("counterparty", req.Counterparty)
	if err != nil {
		hookErr(c, "trade", err)
		return
	}
	notional, err := parseNonNegAmount("notional", req.Notional)
	if err != nil {
		hookErr(c, "trade", err)
		return
	}

	h.eng.TradeFill(user, counterparty, notional, req.IsMaker, req.MakerImproveBps)
	hookOK(c, "trade")
}

func (h *HookHandler) Pnl(c *gin.Context) {
	var req model.PnlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "pnl", err)
		return
	}
	gain, err := parseOptionalAmount("gain", req.Gain)
	if err != nil {
		hookErr(c, "pnl", err)
		return
	}
	loss, err := parseOptionalAmount("loss", req.Loss)
	if err != nil {
		hookErr(c, "pnl", err)
		return
	}

	h.eng.RealizedPnl(user, gain, loss)
	hookOK(c, "pnl")
}

func (h *HookHandler) Funding(c *gin.Context) {
	var req model.FundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "funding", err)
		return
	}
	// 资金费是有符号的，收付都算活跃度
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		hookErr(c, "funding", err)
		return
	}

	h.eng.Funding(user, amount)
	hookOK(c, "funding")
}

func (h *HookHandler) OptionFill(c *gin.Context) {
	var req model.OptionFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, err := parseAddress("buyer", req.Buyer)
	if err != nil {
		hookErr(c, "option", err)
		return
	}
	maker, err := parseAddress("maker", req.Maker)
	if err != nil {
		hookErr(c, "option", err)
		return
	}
	premium, err := parseNonNegAmount("premium", req.Premium)
	if err != nil {
		hookErr(c, "option", err)
		return
	}

	h.eng.OptionFill(buyer, maker, premium)
	hookOK(c, "option")
}

func (h *HookHandler) Borrow(c *gin.Context) {
	var req model.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "borrow", err)
		return
	}
	borrowed, err := parseNonNegAmount("borrowed", req.Borrowed)
	if err != nil {
		hookErr(c, "borrow", err)
		return
	}
	estInterest, err := parseOptionalAmount("est_interest", req.EstInterest)
	if err != nil {
		hookErr(c, "borrow", err)
		return
	}

	h.eng.BorrowOpen(user, borrowed, req.UtilBps, estInterest)
	hookOK(c, "borrow")
}

func (h *HookHandler) Repay(c *gin.Context) {
	var req model.RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "repay", err)
		return
	}
	interestPaid, err := parseNonNegAmount("interest_paid", req.InterestPaid)
	if err != nil {
		hookErr(c, "repay", err)
		return
	}

	h.eng.InterestRepay(user, interestPaid)
	hookOK(c, "repay")
}

func (h *HookHandler) Supply(c *gin.Context) {
	var req model.SupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "supply", err)
		return
	}
	delta, err := parseNonNegAmount("delta_supplied", req.DeltaSupplied)
	if err != nil {
		hookErr(c, "supply", err)
		return
	}

	h.eng.SupplyEvent(user, delta, req.UtilBps, req.KinkBps)
	hookOK(c, "supply")
}

func (h *HookHandler) Liquidation(c *gin.Context) {
	var req model.LiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		hookErr(c, "liquidation", err)
		return
	}
	debtRepaid, err := parseNonNegAmount("debt_repaid", req.DebtRepaid)
	if err != nil {
		hookErr(c, "liquidation", err)
		return
	}

	h.eng.Liquidation(user, debtRepaid)
	hookOK(c, "liquidation")
}
