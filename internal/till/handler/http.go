package handler

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/auth"
	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/till"
	"github.com/fruverhq/fruver-pos/internal/till/dto"
	"github.com/gin-gonic/gin"
)

type TillHandler struct {
	uc till.UseCase
}

func NewTillHandler(uc till.UseCase) *TillHandler {
	return &TillHandler{uc: uc}
}

type openTillRequest struct {
	OpeningBalance float64 `json:"opening_balance"`
}

func (h *TillHandler) Open(c *gin.Context) {
	var req openTillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	openedBy := ""
	if id := auth.IdentityFrom(c); id != nil {
		openedBy = id.UserID
	}
	t, err := h.uc.OpenTill(c.Request.Context(), &dto.OpenTillInput{
		OpenedBy:       openedBy,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TillHandler) Get(c *gin.Context) {
	out, err := h.uc.GetTill(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TillHandler) List(c *gin.Context) {
	items, err := h.uc.ListTills(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type closeTillRequest struct {
	// counted_cash is the legacy alias older clients still send.
	CountedTotal *float64 `json:"counted_total"`
	CountedCash  *float64 `json:"counted_cash"`
	Observations string   `json:"observations"`
}

func (h *TillHandler) Close(c *gin.Context) {
	var req closeTillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	approvedBy := ""
	if id := auth.IdentityFrom(c); id != nil {
		approvedBy = id.UserID
	}
	out, err := h.uc.CloseTill(c.Request.Context(), &dto.CloseTillInput{
		TillID:       c.Param("id"),
		CountedTotal: req.CountedTotal,
		CountedCash:  req.CountedCash,
		Observations: req.Observations,
		ApprovedBy:   approvedBy,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type updateTotalsRequest struct {
	Totals map[model.PaymentMethod]float64 `json:"totals" binding:"required"`
}

func (h *TillHandler) UpdateTotals(c *gin.Context) {
	var req updateTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.uc.UpdateTotals(c.Request.Context(), &dto.UpdateTotalsInput{
		TillID: c.Param("id"),
		Totals: req.Totals,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
