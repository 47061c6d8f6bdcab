package handler

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/fruverhq/fruver-pos/internal/product"
	"github.com/fruverhq/fruver-pos/internal/product/dto"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	uc product.UseCase
}

func NewProductHandler(uc product.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type createProductRequest struct {
	Name  string  `json:"name" binding:"required"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.uc.CreateProduct(c.Request.Context(), &dto.CreateProductInput{
		Name:  req.Name,
		SKU:   req.SKU,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.uc.ListProducts(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"is_active"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		ID:       c.Param("id"),
		Name:     req.Name,
		SKU:      req.SKU,
		Price:    req.Price,
		IsActive: req.IsActive,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type adjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		ProductID: c.Param("id"),
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
