package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/repository"
)

// EventHandler serves the persisted engine event log. Only registered when
// the Postgres event store is configured.
type EventHandler struct {
	repo *repository.EventRepo
}

func NewEventHandler(repo *repository.EventRepo) *EventHandler {
	return &EventHandler{repo: repo}
}

func (h *EventHandler) ListByUser(c *gin.Context) {
	user, err := parseAddress("user", c.Param("user"))
	if err != nil {
		c.Error(err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.repo.ListByUser(c.Request.Context(), user.Hex(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Hex(), "events": events})
}
