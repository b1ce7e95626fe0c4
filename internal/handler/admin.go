package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/logger"
)

// AdminHandler exposes parameter replacement. Every mutation swaps a whole
// parameter group atomically; in-flight reads keep the old snapshot and the
// next operation sees the new one.
type AdminHandler struct {
	eng *engine.Engine
}

func NewAdminHandler(eng *engine.Engine) *AdminHandler {
	return &AdminHandler{eng: eng}
}

func (h *AdminHandler) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.Params())
}

func (h *AdminHandler) SetWeights(c *gin.Context) {
	var req model.FactorWeights
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.eng.SetWeights(req); err != nil {
		c.Error(err)
		return
	}
	logger.Info("factor weights replaced", "weights", req)
	c.JSON(http.StatusOK, h.eng.Params())
}

func (h *AdminHandler) SetReferral(c *gin.Context) {
	var req model.ReferralParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.eng.SetReferralParams(req); err != nil {
		c.Error(err)
		return
	}
	logger.Info("referral params replaced", "params", req)
	c.JSON(http.StatusOK, h.eng.Params())
}

func (h *AdminHandler) SetFaucet(c *gin.Context) {
	var req model.FaucetParams
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.eng.SetFaucetParams(req); err != nil {
		c.Error(err)
		return
	}
	logger.Info("faucet params replaced", "params", req)
	c.JSON(http.StatusOK, h.eng.Params())
}

type tierUpdateRequest struct {
	// 段位门槛与亏损预算长度必须一致，所以放在同一个请求里整体替换。
	// budgets 省略时沿用当前值（此时段位数量不能变）。
	Thresholds []int64 `json:"thresholds" binding:"required"`
	Budgets    []int64 `json:"budgets"`
}

func (h *AdminHandler) SetTiers(c *gin.Context) {
	var req tierUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.eng.SetTierThresholds(req.Thresholds, req.Budgets); err != nil {
		c.Error(err)
		return
	}
	logger.Info("tier thresholds replaced", "thresholds", req.Thresholds)
	c.JSON(http.StatusOK, h.eng.Params())
}

type leaderboardUpdateRequest struct {
	K     int     `json:"k" binding:"required"`
	Edges []int64 `json:"edges" binding:"required"`
}

// SetLeaderboard replaces K and the histogram bucket edges. Existing weeks
// keep the structures they were created with; only future weeks pick up the
// new values.
func (h *AdminHandler) SetLeaderboard(c *gin.Context) {
	var req leaderboardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.eng.SetLeaderboardParams(req.K, req.Edges); err != nil {
		c.Error(err)
		return
	}
	logger.Info("leaderboard params replaced", "k", req.K)
	c.JSON(http.StatusOK, h.eng.Params())
}
