package handler

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/user"
	"github.com/fruverhq/fruver-pos/internal/user/dto"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	uc user.UseCase
}

func NewUserHandler(uc user.UseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

type createUserRequest struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required"`
	Password string     `json:"password" binding:"required"`
	Role     model.Role `json:"role" binding:"required"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.uc.CreateUser(c.Request.Context(), &dto.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) List(c *gin.Context) {
	items, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateUserRequest struct {
	Name     string     `json:"name" binding:"required"`
	Role     model.Role `json:"role" binding:"required"`
	IsActive bool       `json:"is_active"`
	Password string     `json:"password"`
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.uc.UpdateUser(c.Request.Context(), &dto.UpdateUserInput{
		ID:       c.Param("id"),
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.uc.DeactivateUser(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
