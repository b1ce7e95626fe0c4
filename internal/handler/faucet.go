package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/model"
)

type FaucetHandler struct {
	eng *engine.Engine
}

func NewFaucetHandler(eng *engine.Engine) *FaucetHandler {
	return &FaucetHandler{eng: eng}
}

// Claim 领水。引擎按 冷却期 -> 日限额 -> 亏损预算 的顺序过闸，任何一道
// 不过整个请求原子拒绝。
func (h *FaucetHandler) Claim(c *gin.Context) {
	var req model.FaucetClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := parseAddress("user", req.User)
	if err != nil {
		c.Error(err)
		return
	}
	amount, err := parseNonNegAmount("amount", req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	mintedToday, err := h.eng.FaucetClaim(c.Request.Context(), user, amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.FaucetClaimResponse{
		User:        user.Hex(),
		Minted:      formatAmount(amount),
		MintedToday: formatAmount(mintedToday),
	})
}
