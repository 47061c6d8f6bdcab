package handler

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/sale"
	"github.com/fruverhq/fruver-pos/internal/sale/dto"
	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	uc sale.UseCase

	// faultsEnabled exposes the diagnostic fail-after headers. Wired true only
	// outside production with the injection flag set.
	faultsEnabled bool
}

func NewSaleHandler(uc sale.UseCase, faultsEnabled bool) *SaleHandler {
	return &SaleHandler{uc: uc, faultsEnabled: faultsEnabled}
}

type commitItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type commitSaleRequest struct {
	TillID string              `json:"till_id" binding:"required"`
	Method model.PaymentMethod `json:"method" binding:"required"`
	Items  []commitItemRequest `json:"items" binding:"required"`
	Note   string              `json:"note"`
}

func (h *SaleHandler) Commit(c *gin.Context) {
	var req commitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.CommitItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, dto.CommitItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ctx := c.Request.Context()
	if h.faultsEnabled {
		var points []string
		if c.GetHeader("x-fail-after-sale") != "" {
			points = append(points, sale.PointAfterSaleCreate)
		}
		if c.GetHeader("x-fail-after-till-apply") != "" {
			points = append(points, sale.PointAfterTillApply)
		}
		if len(points) > 0 {
			ctx = sale.WithFaults(ctx, points...)
		}
	}

	s, err := h.uc.CommitSale(ctx, &dto.CommitSaleInput{
		TillID: req.TillID,
		Method: req.Method,
		Items:  items,
		Note:   req.Note,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SaleHandler) Void(c *gin.Context) {
	s, err := h.uc.VoidSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) List(c *gin.Context) {
	tillID := c.Query("tillId")
	if tillID == "" {
		tillID = c.Query("till_id")
	}
	items, err := h.uc.ListSales(c.Request.Context(), &dto.SaleFilters{
		TillID: tillID,
		Status: c.Query("status"),
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
