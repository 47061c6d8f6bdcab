package handler

import (
	"net/http"
	"strconv"

	"github.com/fruverhq/fruver-pos/internal/audit"
	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/gin-gonic/gin"
)

const defaultLimit = 100

type AuditHandler struct {
	repo audit.Repository
}

func NewAuditHandler(repo audit.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

func (h *AuditHandler) List(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	items, err := h.repo.FindAll(c.Request.Context(), limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
