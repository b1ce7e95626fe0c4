package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/model"
)

type ReferralHandler struct {
	eng *engine.Engine
}

func NewReferralHandler(eng *engine.Engine) *ReferralHandler {
	return &ReferralHandler{eng: eng}
}

// Bind 绑定推荐关系。绑定一次且永久：重复绑定、自荐、2/3 步环都会被
// 整体拒绝，不产生任何状态变化。
func (h *ReferralHandler) Bind(c *gin.Context) {
	var req model.BindReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	child, err := parseAddress("user", req.User)
	if err != nil {
		c.Error(err)
		return
	}
	parent, err := parseAddress("parent", req.Parent)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.eng.BindReferral(child, parent); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.ReferralView{
		User:   child.Hex(),
		Parent: parent.Hex(),
		Bound:  true,
	})
}

// Show returns the bound parent, if any.
func (h *ReferralHandler) Show(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}

	view := model.ReferralView{User: user.Hex()}
	if parent, ok := h.eng.ParentOf(user); ok {
		view.Parent = parent.Hex()
		view.Bound = true
	}
	c.JSON(http.StatusOK, view)
}
