package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/engine"
	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/apperrors"
)

// ViewHandler serves read-only projections: points, leaderboard, rank,
// percentile. Views observe committed state and never trigger a rollover, so
// a user's numbers may lag until their next write.
type ViewHandler struct {
	eng *engine.Engine
}

func NewViewHandler(eng *engine.Engine) *ViewHandler {
	return &ViewHandler{eng: eng}
}

// weekParam 读取 ?week= 查询参数，缺省为当前观测周。
func (h *ViewHandler) weekParam(c *gin.Context) (int64, error) {
	raw := c.Query("week")
	if raw == "" {
		return h.eng.CurrentWeek(), nil
	}
	week, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || week < 0 {
		return 0, apperrors.NewInvalidRequest("week must be a non-negative integer")
	}
	return week, nil
}

func (h *ViewHandler) WeekPoints(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}
	week, err := h.weekParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.WeekPointsResponse{
		User:   user.Hex(),
		Week:   week,
		Points: h.eng.WeekPoints(user, week),
	})
}

func (h *ViewHandler) TotalPoints(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.TotalPointsResponse{
		User:   user.Hex(),
		Points: h.eng.TotalPoints(user),
	})
}

func (h *ViewHandler) Leaderboard(c *gin.Context) {
	week, err := h.weekParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	entries := h.eng.TopK(week)
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, model.LeaderboardResponse{Week: week, Entries: entries})
}

func (h *ViewHandler) Rank(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}
	week, err := h.weekParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	rank, points, ok := h.eng.Rank(user, week)
	if !ok {
		// 不在榜内不是错误，rank=0 表示 outside top-K
		c.JSON(http.StatusOK, model.RankResponse{User: user.Hex(), Week: week})
		return
	}
	c.JSON(http.StatusOK, model.RankResponse{
		User:   user.Hex(),
		Week:   week,
		Rank:   rank,
		Points: points,
	})
}

func (h *ViewHandler) Percentile(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}
	week, err := h.weekParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.PercentileResponse{
		User:          user.Hex(),
		Week:          week,
		PercentileBps: h.eng.PercentileBps(user, week),
	})
}

func (h *ViewHandler) User(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}

	view, ok := h.eng.UserView(user)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrNotFound, "user has no recorded activity", nil))
		return
	}
	c.JSON(http.StatusOK, view)
}
